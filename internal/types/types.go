// Package types defines every cross‑package data structure used by the twig CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeSymlink   = "symlink"
	NodeTypeTruncated = "truncated"

	SortKeyName     = "name"
	SortKeySize     = "size"
	SortKeyModified = "modified"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	// UnlimitedDepth disables the depth cutoff during traversal.
	// Every negative value is treated the same way.
	UnlimitedDepth = -1
	// UnlimitedFiles disables the emitted-file cutoff during traversal.
	// Every negative value is treated the same way.
	UnlimitedFiles = -1
)

// TreeNode represents a single filesystem entry in the rendered tree.
// The snapshot is taken once at traversal time and never refreshed.
type TreeNode struct {
	XMLName      xml.Name    `json:"-" xml:"node"`
	Path         string      `json:"path" xml:"path"`
	Name         string      `json:"name" xml:"name"`
	Type         string      `json:"type" xml:"type"`
	Size         string      `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes    int64       `json:"-" xml:"-"`
	LastModified string      `json:"lastModified,omitempty" xml:"lastModified,omitempty"`
	Permissions  string      `json:"permissions,omitempty" xml:"permissions,omitempty"`
	Unreadable   bool        `json:"unreadable,omitempty" xml:"unreadable,omitempty"`
	// LinksToDirectory marks a symlink whose resolved target is a directory.
	LinksToDirectory bool `json:"linksToDirectory,omitempty" xml:"linksToDirectory,omitempty"`
	Children     []*TreeNode `json:"children,omitempty" xml:"children>node,omitempty"`
}

// TraversalOptions captures every recognized traversal and display option.
// A value is built once per invocation and treated as immutable afterwards.
type TraversalOptions struct {
	// MaxDepth limits recursion; any negative value disables the limit.
	MaxDepth int
	// MaxFiles limits the number of emitted file entries; any negative value disables the limit.
	MaxFiles        int
	DirsOnly        bool
	FilesOnly       bool
	ShowHidden      bool
	FollowLinks     bool
	IgnorePatterns  []string
	SortKey         string
	ReverseSort     bool
	ShowSize        bool
	ShowPermissions bool
	FullPath        bool
}

// IsSupportedSortKey reports whether the provided sort key is recognized.
func IsSupportedSortKey(sortKey string) bool {
	switch sortKey {
	case SortKeyName, SortKeySize, SortKeyModified:
		return true
	default:
		return false
	}
}

// IsSupportedFormat reports whether the provided output format is recognized.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatRaw, FormatJSON, FormatXML:
		return true
	default:
		return false
	}
}
