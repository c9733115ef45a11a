// Package clipboard places rendered tree output on the system clipboard.
package clipboard

import (
	atottoclipboard "github.com/atotto/clipboard"
)

// Copier sends rendered text to a clipboard destination.
type Copier interface {
	Copy(renderedText string) error
}

// Service is the system clipboard destination backed by the atotto driver.
type Service struct{}

// NewService returns the system clipboard destination.
func NewService() *Service {
	return &Service{}
}

// Copy replaces the current clipboard contents with renderedText.
func (service *Service) Copy(renderedText string) error {
	return atottoclipboard.WriteAll(renderedText)
}

var _ Copier = (*Service)(nil)
