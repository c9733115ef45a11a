// Package output renders collected tree data in raw, JSON, and XML formats.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/twig/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix  = "/"
	unreadableMarker = " [unreadable]"

	jsonIndent = "  "
	xmlIndent  = "  "
)

// RenderOptions controls how the raw renderer annotates each line.
type RenderOptions struct {
	ShowSize        bool
	ShowPermissions bool
	FullPath        bool
	IncludeSummary  bool
	DirsOnly        bool
}

// RenderTreeJSON renders the tree as indented JSON.
func RenderTreeJSON(node *types.TreeNode) (string, error) {
	marshalled, marshalError := json.MarshalIndent(node, "", jsonIndent)
	if marshalError != nil {
		return "", fmt.Errorf("marshalling tree to JSON: %w", marshalError)
	}
	return string(marshalled), nil
}

// RenderTreeXML renders the tree as indented XML with a document header.
func RenderTreeXML(node *types.TreeNode) (string, error) {
	marshalled, marshalError := xml.MarshalIndent(node, "", xmlIndent)
	if marshalError != nil {
		return "", fmt.Errorf("marshalling tree to XML: %w", marshalError)
	}
	return xml.Header + string(marshalled), nil
}

// RenderTreeRaw renders the tree with ASCII connector glyphs, followed by an
// optional summary block. Directory and file counts come from the traversal.
func RenderTreeRaw(node *types.TreeNode, options RenderOptions, directoryCount int, fileCount int) string {
	var builder strings.Builder
	WriteTreeRaw(&builder, node, options)
	if options.IncludeSummary {
		builder.WriteString("\n")
		builder.WriteString(FormatSummaryLine(directoryCount, fileCount, options.DirsOnly))
		builder.WriteString("\n")
	}
	return builder.String()
}

// WriteTreeRaw renders a directory tree to the provided writer.
func WriteTreeRaw(writer io.Writer, node *types.TreeNode, options RenderOptions) {
	if node == nil {
		return
	}
	renderTreeNode(writer, node, "", options, true, true)
}

// FormatSummaryLine formats the closing directory and file counts. The file
// count is omitted when only directories were requested.
func FormatSummaryLine(directoryCount int, fileCount int, dirsOnly bool) string {
	if dirsOnly {
		return fmt.Sprintf("%d directories", directoryCount)
	}
	return fmt.Sprintf("%d directories, %d files", directoryCount, fileCount)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeNode, prefix string, options RenderOptions, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)

	if isRoot {
		fmt.Fprintf(writer, "%s%s\n", node.Path, directorySuffix)
	} else if node.Type == types.NodeTypeTruncated {
		fmt.Fprintf(writer, "%s%s\n", linePrefix, node.Name)
		return
	} else {
		fmt.Fprintf(writer, "%s%s\n", linePrefix, formatEntryLabel(node, options))
	}

	for index, child := range node.Children {
		if child == nil {
			continue
		}
		renderTreeNode(writer, child, childPrefix, options, false, index == len(node.Children)-1)
	}
}

// formatEntryLabel builds the display label for one entry including the
// configured metadata annotations.
func formatEntryLabel(node *types.TreeNode, options RenderOptions) string {
	label := node.Name
	if options.FullPath {
		label = node.Path
	}
	if node.Type == types.NodeTypeDirectory || node.LinksToDirectory {
		label += directorySuffix
	}
	if options.ShowSize && node.Type != types.NodeTypeDirectory && node.Size != "" {
		label = fmt.Sprintf("%s (%s)", label, node.Size)
	}
	if options.ShowPermissions && node.Permissions != "" {
		label = fmt.Sprintf("[%s] %s", node.Permissions, label)
	}
	if node.Unreadable {
		label += unreadableMarker
	}
	return label
}
