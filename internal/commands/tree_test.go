package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/temirov/twig/internal/commands"
	"github.com/temirov/twig/internal/types"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// makeTestDirectory creates a directory, failing the test on error.
func makeTestDirectory(testingHandle *testing.T, directoryPath string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(directoryPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create directory %s: %v", directoryPath, makeDirError)
	}
}

// defaultTraversalOptions returns options matching a plain invocation.
func defaultTraversalOptions() types.TraversalOptions {
	return types.TraversalOptions{
		MaxDepth: types.UnlimitedDepth,
		MaxFiles: types.UnlimitedFiles,
		SortKey:  types.SortKeyName,
	}
}

// childNames returns the names of the provided nodes in order.
func childNames(nodes []*types.TreeNode) []string {
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name)
	}
	return names
}

// countNodesOfType counts nodes of the given type in the whole subtree.
func countNodesOfType(node *types.TreeNode, nodeType string) int {
	if node == nil {
		return 0
	}
	total := 0
	if node.Type == nodeType {
		total++
	}
	for _, child := range node.Children {
		total += countNodesOfType(child, nodeType)
	}
	return total
}

// TestGetTreeDataWorkedExample verifies the documented two-entry example:
// a directory containing b.txt and an empty subdirectory c renders the
// directory first followed by the file.
func TestGetTreeDataWorkedExample(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "b.txt"), strings.Repeat("x", 10))
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, "c"))

	treeBuilder := commands.NewTreeBuilder(defaultTraversalOptions())
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}

	if len(rootNode.Children) != 2 {
		testingHandle.Fatalf("expected 2 children, got %d", len(rootNode.Children))
	}
	if rootNode.Children[0].Name != "c" || rootNode.Children[0].Type != types.NodeTypeDirectory {
		testingHandle.Fatalf("expected directory c first, got %s (%s)", rootNode.Children[0].Name, rootNode.Children[0].Type)
	}
	if rootNode.Children[1].Name != "b.txt" || rootNode.Children[1].Type != types.NodeTypeFile {
		testingHandle.Fatalf("expected file b.txt second, got %s (%s)", rootNode.Children[1].Name, rootNode.Children[1].Type)
	}
	if rootNode.Children[1].SizeBytes != 10 {
		testingHandle.Fatalf("expected 10 byte file, got %d", rootNode.Children[1].SizeBytes)
	}
	if treeBuilder.DirectoryCount() != 1 || treeBuilder.FileCount() != 1 {
		testingHandle.Fatalf("expected 1 directory and 1 file counted, got %d and %d", treeBuilder.DirectoryCount(), treeBuilder.FileCount())
	}
}

// TestGetTreeDataDepthLimit verifies that no entries beyond the configured
// depth are emitted.
func TestGetTreeDataDepthLimit(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, "sub", "inner")
	makeTestDirectory(testingHandle, nestedDirectory)
	writeTestFile(testingHandle, filepath.Join(nestedDirectory, "deep.txt"), "deep")

	testCases := []struct {
		testName          string
		maxDepth          int
		expectSubChildren bool
	}{
		{testName: "depth one lists only the first level", maxDepth: 1, expectSubChildren: false},
		{testName: "depth two descends one level further", maxDepth: 2, expectSubChildren: true},
	}
	for _, testCase := range testCases {
		options := defaultTraversalOptions()
		options.MaxDepth = testCase.maxDepth
		treeBuilder := commands.NewTreeBuilder(options)
		rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
		if buildError != nil {
			testingHandle.Fatalf("%s: GetTreeData failed: %v", testCase.testName, buildError)
		}
		if len(rootNode.Children) != 1 || rootNode.Children[0].Name != "sub" {
			testingHandle.Fatalf("%s: expected single child sub, got %v", testCase.testName, childNames(rootNode.Children))
		}
		subNode := rootNode.Children[0]
		if testCase.expectSubChildren {
			if len(subNode.Children) != 1 || subNode.Children[0].Name != "inner" {
				testingHandle.Fatalf("%s: expected inner below sub, got %v", testCase.testName, childNames(subNode.Children))
			}
			if len(subNode.Children[0].Children) != 0 {
				testingHandle.Fatalf("%s: expected nothing below inner, got %v", testCase.testName, childNames(subNode.Children[0].Children))
			}
		} else if len(subNode.Children) != 0 {
			testingHandle.Fatalf("%s: expected no children below sub, got %v", testCase.testName, childNames(subNode.Children))
		}
	}
}

// TestGetTreeDataZeroDepthEmitsNothing verifies that a zero depth produces an
// empty tree below the root.
func TestGetTreeDataZeroDepthEmitsNothing(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "file.txt"), "content")

	options := defaultTraversalOptions()
	options.MaxDepth = 0
	treeBuilder := commands.NewTreeBuilder(options)
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}
	if len(rootNode.Children) != 0 {
		testingHandle.Fatalf("expected empty tree, got %v", childNames(rootNode.Children))
	}
}

// TestGetTreeDataFileLimit verifies that the emitted file count never exceeds
// the configured maximum and that a truncation sentinel is appended.
func TestGetTreeDataFileLimit(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	for _, fileName := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		writeTestFile(testingHandle, filepath.Join(rootDirectory, fileName), "content")
	}

	options := defaultTraversalOptions()
	options.MaxFiles = 3
	treeBuilder := commands.NewTreeBuilder(options)
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}

	if fileNodes := countNodesOfType(rootNode, types.NodeTypeFile); fileNodes != 3 {
		testingHandle.Fatalf("expected exactly 3 file nodes, got %d", fileNodes)
	}
	if treeBuilder.FileCount() != 3 {
		testingHandle.Fatalf("expected file counter 3, got %d", treeBuilder.FileCount())
	}
	lastChild := rootNode.Children[len(rootNode.Children)-1]
	if lastChild.Type != types.NodeTypeTruncated || lastChild.Name != commands.TruncationNodeName {
		testingHandle.Fatalf("expected truncation sentinel last, got %s (%s)", lastChild.Name, lastChild.Type)
	}
}

// TestGetTreeDataNegativeLimitsDisableCutoffs verifies that every negative
// depth or file-count value behaves like the unlimited sentinel.
func TestGetTreeDataNegativeLimitsDisableCutoffs(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, "sub")
	makeTestDirectory(testingHandle, nestedDirectory)
	writeTestFile(testingHandle, filepath.Join(nestedDirectory, "deep.txt"), "deep")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "top.txt"), "top")

	options := defaultTraversalOptions()
	options.MaxDepth = -2
	options.MaxFiles = -5
	treeBuilder := commands.NewTreeBuilder(options)
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}

	if names := childNames(rootNode.Children); len(names) != 2 {
		testingHandle.Fatalf("expected full first level, got %v", names)
	}
	if fileNodes := countNodesOfType(rootNode, types.NodeTypeFile); fileNodes != 2 {
		testingHandle.Fatalf("expected both files emitted, got %d", fileNodes)
	}
	if truncated := countNodesOfType(rootNode, types.NodeTypeTruncated); truncated != 0 {
		testingHandle.Fatalf("expected no truncation sentinel, got %d", truncated)
	}
}

// TestGetTreeDataHiddenEntries verifies that dot-prefixed entries are
// excluded unless the show-hidden option is set.
func TestGetTreeDataHiddenEntries(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".secret"), "hidden")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "visible.txt"), "shown")

	defaultBuilder := commands.NewTreeBuilder(defaultTraversalOptions())
	defaultRoot, defaultError := defaultBuilder.GetTreeData(rootDirectory)
	if defaultError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", defaultError)
	}
	if names := childNames(defaultRoot.Children); len(names) != 1 || names[0] != "visible.txt" {
		testingHandle.Fatalf("expected only visible.txt, got %v", names)
	}

	hiddenOptions := defaultTraversalOptions()
	hiddenOptions.ShowHidden = true
	hiddenBuilder := commands.NewTreeBuilder(hiddenOptions)
	hiddenRoot, hiddenError := hiddenBuilder.GetTreeData(rootDirectory)
	if hiddenError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", hiddenError)
	}
	if names := childNames(hiddenRoot.Children); len(names) != 2 || names[0] != ".secret" {
		testingHandle.Fatalf("expected .secret and visible.txt, got %v", names)
	}
}

// TestGetTreeDataTypeFilters verifies that dirs-only emits no file nodes and
// files-only emits no directory nodes.
func TestGetTreeDataTypeFilters(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, "sub"))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "sub", "nested.txt"), "nested")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "top.txt"), "top")

	dirsOnlyOptions := defaultTraversalOptions()
	dirsOnlyOptions.DirsOnly = true
	dirsOnlyBuilder := commands.NewTreeBuilder(dirsOnlyOptions)
	dirsOnlyRoot, dirsOnlyError := dirsOnlyBuilder.GetTreeData(rootDirectory)
	if dirsOnlyError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", dirsOnlyError)
	}
	if fileNodes := countNodesOfType(dirsOnlyRoot, types.NodeTypeFile); fileNodes != 0 {
		testingHandle.Fatalf("dirs-only emitted %d file nodes", fileNodes)
	}

	filesOnlyOptions := defaultTraversalOptions()
	filesOnlyOptions.FilesOnly = true
	filesOnlyBuilder := commands.NewTreeBuilder(filesOnlyOptions)
	filesOnlyRoot, filesOnlyError := filesOnlyBuilder.GetTreeData(rootDirectory)
	if filesOnlyError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", filesOnlyError)
	}
	if directoryNodes := countNodesOfType(filesOnlyRoot, types.NodeTypeDirectory); directoryNodes != 1 {
		// Only the root itself is a directory node.
		testingHandle.Fatalf("files-only emitted %d directory nodes", directoryNodes)
	}
}

// TestGetTreeDataSortOrders verifies ordering by each key and that the
// reverse flag yields exactly the reversed ordering.
func TestGetTreeDataSortOrders(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "B.txt"), strings.Repeat("x", 5))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "alpha.txt"), strings.Repeat("x", 1))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "c.txt"), strings.Repeat("x", 3))

	baseTime := time.Now().Add(-time.Hour)
	modificationTimes := map[string]time.Time{
		"c.txt":     baseTime,
		"B.txt":     baseTime.Add(10 * time.Minute),
		"alpha.txt": baseTime.Add(20 * time.Minute),
	}
	for fileName, modificationTime := range modificationTimes {
		if chtimesError := os.Chtimes(filepath.Join(rootDirectory, fileName), modificationTime, modificationTime); chtimesError != nil {
			testingHandle.Fatalf("failed to set times on %s: %v", fileName, chtimesError)
		}
	}

	testCases := []struct {
		sortKey  string
		expected []string
	}{
		{sortKey: types.SortKeyName, expected: []string{"alpha.txt", "B.txt", "c.txt"}},
		{sortKey: types.SortKeySize, expected: []string{"alpha.txt", "c.txt", "B.txt"}},
		{sortKey: types.SortKeyModified, expected: []string{"c.txt", "B.txt", "alpha.txt"}},
	}
	for _, testCase := range testCases {
		options := defaultTraversalOptions()
		options.SortKey = testCase.sortKey
		treeBuilder := commands.NewTreeBuilder(options)
		rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
		if buildError != nil {
			testingHandle.Fatalf("sort by %s: GetTreeData failed: %v", testCase.sortKey, buildError)
		}
		actual := childNames(rootNode.Children)
		if strings.Join(actual, ",") != strings.Join(testCase.expected, ",") {
			testingHandle.Fatalf("sort by %s: expected %v, got %v", testCase.sortKey, testCase.expected, actual)
		}

		reversedOptions := options
		reversedOptions.ReverseSort = true
		reversedBuilder := commands.NewTreeBuilder(reversedOptions)
		reversedRoot, reversedError := reversedBuilder.GetTreeData(rootDirectory)
		if reversedError != nil {
			testingHandle.Fatalf("reverse sort by %s: GetTreeData failed: %v", testCase.sortKey, reversedError)
		}
		reversedActual := childNames(reversedRoot.Children)
		for index := range testCase.expected {
			if reversedActual[index] != testCase.expected[len(testCase.expected)-1-index] {
				testingHandle.Fatalf("reverse sort by %s: expected exact reversal of %v, got %v", testCase.sortKey, testCase.expected, reversedActual)
			}
		}
	}
}

// TestGetTreeDataIgnorePatterns verifies wildcard and directory ignore
// patterns exclude matching entries.
func TestGetTreeDataIgnorePatterns(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "keep.txt"), "keep")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "noise.log"), "noise")
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, "vendor"))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "vendor", "dep.go"), "dep")

	options := defaultTraversalOptions()
	options.IgnorePatterns = []string{"*.log", "vendor/"}
	treeBuilder := commands.NewTreeBuilder(options)
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}
	if names := childNames(rootNode.Children); len(names) != 1 || names[0] != "keep.txt" {
		testingHandle.Fatalf("expected only keep.txt, got %v", names)
	}
}

// TestGetTreeDataUnreadableDirectory verifies that a directory without read
// permission is still listed, marked unreadable, and that traversal continues
// with its siblings.
func TestGetTreeDataUnreadableDirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks do not apply to root")
	}

	rootDirectory := testingHandle.TempDir()
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	makeTestDirectory(testingHandle, lockedDirectory)
	writeTestFile(testingHandle, filepath.Join(lockedDirectory, "invisible.txt"), "invisible")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "sibling.txt"), "sibling")

	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("failed to chmod %s: %v", lockedDirectory, chmodError)
	}
	testingHandle.Cleanup(func() {
		_ = os.Chmod(lockedDirectory, 0o755)
	})

	warningBuffer := &bytes.Buffer{}
	treeBuilder := commands.NewTreeBuilder(defaultTraversalOptions())
	treeBuilder.WarningWriter = warningBuffer
	rootNode, buildError := treeBuilder.GetTreeData(rootDirectory)
	if buildError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", buildError)
	}

	if len(rootNode.Children) != 2 {
		testingHandle.Fatalf("expected locked directory and sibling, got %v", childNames(rootNode.Children))
	}
	lockedNode := rootNode.Children[0]
	if lockedNode.Name != "locked" || !lockedNode.Unreadable {
		testingHandle.Fatalf("expected locked marked unreadable, got %+v", lockedNode)
	}
	if len(lockedNode.Children) != 0 {
		testingHandle.Fatalf("expected no children below unreadable directory, got %v", childNames(lockedNode.Children))
	}
	if rootNode.Children[1].Name != "sibling.txt" {
		testingHandle.Fatalf("expected sibling.txt after locked, got %s", rootNode.Children[1].Name)
	}
	if warningBuffer.Len() == 0 {
		testingHandle.Fatal("expected a warning for the unreadable directory")
	}
}

// TestGetTreeDataSymlinks verifies that symlinked directories are listed but
// only descended into when follow-links is enabled.
func TestGetTreeDataSymlinks(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	targetDirectory := filepath.Join(rootDirectory, "target")
	makeTestDirectory(testingHandle, targetDirectory)
	writeTestFile(testingHandle, filepath.Join(targetDirectory, "inside.txt"), "inside")
	linkPath := filepath.Join(rootDirectory, "link")
	if symlinkError := os.Symlink(targetDirectory, linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	defaultBuilder := commands.NewTreeBuilder(defaultTraversalOptions())
	defaultRoot, defaultError := defaultBuilder.GetTreeData(rootDirectory)
	if defaultError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", defaultError)
	}
	linkNode := defaultRoot.Children[0]
	if linkNode.Name != "link" || linkNode.Type != types.NodeTypeSymlink {
		testingHandle.Fatalf("expected symlink node first, got %s (%s)", linkNode.Name, linkNode.Type)
	}
	if !linkNode.LinksToDirectory {
		testingHandle.Fatal("expected symlink node to record its directory target")
	}
	if len(linkNode.Children) != 0 {
		testingHandle.Fatalf("expected no descent into symlink by default, got %v", childNames(linkNode.Children))
	}

	followOptions := defaultTraversalOptions()
	followOptions.FollowLinks = true
	followBuilder := commands.NewTreeBuilder(followOptions)
	followRoot, followError := followBuilder.GetTreeData(rootDirectory)
	if followError != nil {
		testingHandle.Fatalf("GetTreeData failed: %v", followError)
	}
	followedLink := followRoot.Children[0]
	if len(followedLink.Children) != 1 || followedLink.Children[0].Name != "inside.txt" {
		testingHandle.Fatalf("expected descent into followed symlink, got %v", childNames(followedLink.Children))
	}
}

// TestGetTreeDataInvalidRoots verifies fatal errors for missing roots and
// roots that are not directories.
func TestGetTreeDataInvalidRoots(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	filePath := filepath.Join(rootDirectory, "plain.txt")
	writeTestFile(testingHandle, filePath, "plain")

	treeBuilder := commands.NewTreeBuilder(defaultTraversalOptions())
	if _, missingError := treeBuilder.GetTreeData(filepath.Join(rootDirectory, "missing")); missingError == nil {
		testingHandle.Fatal("expected error for missing root")
	}
	if _, fileError := treeBuilder.GetTreeData(filePath); fileError == nil {
		testingHandle.Fatal("expected error for file root")
	}
}
