// Package commands contains the core traversal logic for the tree command.
package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/temirov/twig/internal/types"
	"github.com/temirov/twig/internal/utils"
)

const (
	// warningSkipSubdirFormat is used when a subdirectory cannot be read.
	warningSkipSubdirFormat = "Warning: skipping unreadable directory %s: %v\n"
	// warningStatPathFormat is used when file information cannot be retrieved.
	warningStatPathFormat = "Warning: unable to stat %s: %v\n"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorPathMissingFormat reports a missing root path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve root path information.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotDirectoryFormat reports a root path that is not a directory.
	errorNotDirectoryFormat = "path '%s' is not a directory"
	// errorReadDirectoryFormat is used when the root directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// TruncationNodeName labels the sentinel node emitted once the configured
// file limit is reached.
const TruncationNodeName = "... (file limit reached)"

// TreeBuilder walks a directory hierarchy depth-first and produces TreeNode
// structures honoring the configured filters, ordering, and limits. A builder
// is good for a single traversal; counters accumulate across the run.
type TreeBuilder struct {
	Options types.TraversalOptions
	// WarningWriter receives non-fatal traversal diagnostics.
	WarningWriter io.Writer

	directoryCount int
	fileCount      int
}

// NewTreeBuilder constructs a TreeBuilder with warnings directed to stderr.
func NewTreeBuilder(options types.TraversalOptions) *TreeBuilder {
	return &TreeBuilder{Options: options, WarningWriter: os.Stderr}
}

// DirectoryCount returns the number of directory entries emitted so far.
func (treeBuilder *TreeBuilder) DirectoryCount() int {
	return treeBuilder.directoryCount
}

// FileCount returns the number of file entries emitted so far.
func (treeBuilder *TreeBuilder) FileCount() int {
	return treeBuilder.fileCount
}

// GetTreeData generates the tree structure for the given root directory.
// The root must exist and be a directory; anything else is a fatal error.
func (treeBuilder *TreeBuilder) GetTreeData(rootDirectoryPath string) (*types.TreeNode, error) {
	absoluteRootDirPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	rootInfo, rootStatError := os.Stat(absoluteRootDirPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, fmt.Errorf(errorPathMissingFormat, rootDirectoryPath)
		}
		return nil, fmt.Errorf(errorStatFormat, rootDirectoryPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorNotDirectoryFormat, rootDirectoryPath)
	}

	rootNode := &types.TreeNode{
		Path:         absoluteRootDirPath,
		Name:         filepath.Base(absoluteRootDirPath),
		Type:         types.NodeTypeDirectory,
		LastModified: utils.FormatTimestamp(rootInfo.ModTime()),
		Permissions:  utils.FormatPermissions(rootInfo.Mode()),
	}

	children, buildError := treeBuilder.buildTreeNodes(absoluteRootDirPath, absoluteRootDirPath, 0)
	if buildError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, rootDirectoryPath, buildError)
	}
	rootNode.Children = children

	return rootNode, nil
}

// entrySnapshot is the read-only view of one directory entry taken at
// traversal time, with symlink targets already resolved.
type entrySnapshot struct {
	name        string
	path        string
	nodeType    string
	isSymlink   bool
	targetIsDir bool
	hasInfo     bool
	sizeBytes   int64
	modTime     time.Time
	mode        fs.FileMode
}

// buildTreeNodes recursively builds child nodes for the directory at the
// given depth. Depth and file-count cutoffs terminate recursion early.
func (treeBuilder *TreeBuilder) buildTreeNodes(currentDirectoryPath string, rootDirectoryPath string, depth int) ([]*types.TreeNode, error) {
	if treeBuilder.Options.MaxDepth >= 0 && depth >= treeBuilder.Options.MaxDepth {
		return nil, nil
	}
	if treeBuilder.fileLimitReached() {
		return nil, nil
	}

	snapshots, collectError := treeBuilder.collectEntries(currentDirectoryPath, rootDirectoryPath)
	if collectError != nil {
		return nil, collectError
	}
	treeBuilder.sortEntries(snapshots)

	var nodes []*types.TreeNode
	for _, snapshot := range snapshots {
		if treeBuilder.fileLimitReached() {
			nodes = append(nodes, &types.TreeNode{Name: TruncationNodeName, Type: types.NodeTypeTruncated})
			break
		}

		node := snapshot.toNode()
		if snapshot.targetIsDir {
			treeBuilder.directoryCount++
			if treeBuilder.Options.FollowLinks || !snapshot.isSymlink {
				childNodes, buildError := treeBuilder.buildTreeNodes(snapshot.path, rootDirectoryPath, depth+1)
				if buildError != nil {
					node.Unreadable = true
					treeBuilder.warnf(warningSkipSubdirFormat, snapshot.path, buildError)
				} else {
					node.Children = childNodes
				}
			}
		} else {
			treeBuilder.fileCount++
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// collectEntries lists and filters the children of a directory.
func (treeBuilder *TreeBuilder) collectEntries(currentDirectoryPath string, rootDirectoryPath string) ([]entrySnapshot, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}

	snapshots := make([]entrySnapshot, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if !treeBuilder.Options.ShowHidden && utils.IsHiddenName(entryName) {
			continue
		}

		childPath := filepath.Join(currentDirectoryPath, entryName)
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if utils.ShouldIgnoreByPath(relativeChildPath, treeBuilder.Options.IgnorePatterns) {
			continue
		}

		snapshot := entrySnapshot{
			name:      entryName,
			path:      childPath,
			isSymlink: directoryEntry.Type()&fs.ModeSymlink != 0,
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			treeBuilder.warnf(warningStatPathFormat, childPath, infoError)
		} else {
			snapshot.hasInfo = true
			snapshot.sizeBytes = entryInfo.Size()
			snapshot.modTime = entryInfo.ModTime()
			snapshot.mode = entryInfo.Mode()
		}

		switch {
		case snapshot.isSymlink:
			snapshot.nodeType = types.NodeTypeSymlink
			// The symlink target decides grouping, filtering, and recursion.
			targetInfo, targetStatError := os.Stat(childPath)
			if targetStatError == nil {
				snapshot.targetIsDir = targetInfo.IsDir()
				if !targetInfo.IsDir() {
					snapshot.sizeBytes = targetInfo.Size()
				}
			}
		case directoryEntry.IsDir():
			snapshot.nodeType = types.NodeTypeDirectory
			snapshot.targetIsDir = true
		default:
			snapshot.nodeType = types.NodeTypeFile
		}

		if treeBuilder.Options.DirsOnly && !snapshot.targetIsDir {
			continue
		}
		if treeBuilder.Options.FilesOnly && snapshot.targetIsDir {
			continue
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// sortEntries orders directories before files, each group sorted by the
// configured key with ties broken by name. The reverse flag inverts the full
// comparison within each group.
func (treeBuilder *TreeBuilder) sortEntries(snapshots []entrySnapshot) {
	directoryGroup := make([]entrySnapshot, 0, len(snapshots))
	fileGroup := make([]entrySnapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.targetIsDir {
			directoryGroup = append(directoryGroup, snapshot)
		} else {
			fileGroup = append(fileGroup, snapshot)
		}
	}

	treeBuilder.sortGroup(directoryGroup)
	treeBuilder.sortGroup(fileGroup)

	copy(snapshots, directoryGroup)
	copy(snapshots[len(directoryGroup):], fileGroup)
}

func (treeBuilder *TreeBuilder) sortGroup(group []entrySnapshot) {
	sort.SliceStable(group, func(firstIndex, secondIndex int) bool {
		if treeBuilder.Options.ReverseSort {
			return treeBuilder.entryLess(group[secondIndex], group[firstIndex])
		}
		return treeBuilder.entryLess(group[firstIndex], group[secondIndex])
	})
}

// entryLess compares two snapshots by the configured sort key, falling back
// to the entry name to break ties.
func (treeBuilder *TreeBuilder) entryLess(first, second entrySnapshot) bool {
	switch treeBuilder.Options.SortKey {
	case types.SortKeySize:
		firstSize := first.sortSize()
		secondSize := second.sortSize()
		if firstSize != secondSize {
			return firstSize < secondSize
		}
	case types.SortKeyModified:
		if !first.modTime.Equal(second.modTime) {
			return first.modTime.Before(second.modTime)
		}
	default:
		firstName := strings.ToLower(first.name)
		secondName := strings.ToLower(second.name)
		if firstName != secondName {
			return firstName < secondName
		}
	}
	return first.name < second.name
}

// sortSize returns the byte size used for size ordering. Directories compare
// as zero so size ordering is driven by files.
func (snapshot entrySnapshot) sortSize() int64 {
	if snapshot.targetIsDir {
		return 0
	}
	return snapshot.sizeBytes
}

// toNode converts a snapshot into the output representation.
func (snapshot entrySnapshot) toNode() *types.TreeNode {
	node := &types.TreeNode{
		Path:             snapshot.path,
		Name:             snapshot.name,
		Type:             snapshot.nodeType,
		LinksToDirectory: snapshot.nodeType == types.NodeTypeSymlink && snapshot.targetIsDir,
	}
	if snapshot.hasInfo {
		node.LastModified = utils.FormatTimestamp(snapshot.modTime)
		node.Permissions = utils.FormatPermissions(snapshot.mode)
		if !snapshot.targetIsDir {
			node.SizeBytes = snapshot.sizeBytes
			node.Size = utils.FormatFileSize(snapshot.sizeBytes)
		}
	}
	return node
}

func (treeBuilder *TreeBuilder) fileLimitReached() bool {
	return treeBuilder.Options.MaxFiles >= 0 && treeBuilder.fileCount >= treeBuilder.Options.MaxFiles
}

func (treeBuilder *TreeBuilder) warnf(format string, arguments ...any) {
	if treeBuilder.WarningWriter == nil {
		return
	}
	fmt.Fprintf(treeBuilder.WarningWriter, format, arguments...)
}
