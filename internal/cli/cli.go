// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/twig/internal/commands"
	"github.com/temirov/twig/internal/config"
	"github.com/temirov/twig/internal/output"
	"github.com/temirov/twig/internal/services/clipboard"
	"github.com/temirov/twig/internal/types"
	"github.com/temirov/twig/internal/utils"
)

const (
	depthFlagName       = "depth"
	maxFilesFlagName    = "max-files"
	dirsOnlyFlagName    = "dirs-only"
	filesOnlyFlagName   = "files-only"
	showHiddenFlagName  = "all"
	followLinksFlagName = "follow-links"
	gitignoreFlagName   = "gitignore"
	ignoreFlagName      = "ignore"
	sortByFlagName      = "sort-by"
	reverseFlagName     = "reverse"
	showSizeFlagName    = "size"
	permissionsFlagName = "permissions"
	fullPathFlagName    = "full-path"
	formatFlagName      = "format"
	summaryFlagName     = "summary"
	copyFlagName        = "copy"
	configFlagName      = "config"
	versionFlagName     = "version"
	globalFlagName      = "global"
	forceFlagName       = "force"

	depthFlagShorthand       = "d"
	maxFilesFlagShorthand    = "L"
	showHiddenFlagShorthand  = "a"
	followLinksFlagShorthand = "l"
	ignoreFlagShorthand      = "I"
	reverseFlagShorthand     = "r"
	showSizeFlagShorthand    = "s"
	permissionsFlagShorthand = "p"
	fullPathFlagShorthand    = "f"

	depthFlagDescription       = "maximum depth to traverse (negative for unlimited)"
	maxFilesFlagDescription    = "maximum number of files to display (negative for unlimited)"
	dirsOnlyFlagDescription    = "show only directories"
	filesOnlyFlagDescription   = "show only files"
	showHiddenFlagDescription  = "show hidden entries (starting with a dot)"
	followLinksFlagDescription = "follow symbolic links to directories"
	gitignoreFlagDescription   = "respect .gitignore patterns"
	ignoreFlagDescription      = "pattern to ignore (supports wildcards)"
	sortByFlagDescription      = "sort entries by: name, size, or modified"
	reverseFlagDescription     = "reverse sort order"
	showSizeFlagDescription    = "show file sizes"
	permissionsFlagDescription = "show permission bits"
	fullPathFlagDescription    = "show the full path for each entry"
	formatFlagDescription      = "output format: raw, json, or xml"
	summaryFlagDescription     = "include the closing directory and file counts"
	copyFlagDescription        = "copy the rendered output to the clipboard"
	configFlagDescription      = "configuration file to use instead of " + utils.ConfigFileName
	versionFlagDescription     = "display application version"
	globalFlagDescription      = "initialize the global configuration file"
	forceFlagDescription       = "overwrite an existing configuration file"

	versionTemplate = "twig version: %s\n"
	defaultPath     = "."

	rootUse              = "twig [path]"
	rootShortDescription = "render an ASCII directory tree"
	rootLongDescription  = `twig prints an ASCII-art tree of a filesystem directory.
Traversal depth, emitted file count, entry filtering, and ordering are all
configurable; sizes and permission bits can be shown next to each entry.
Use --format to select raw, json, or xml output.`
	rootUsageExample = `  # Render the current directory three levels deep
  twig -d 3

  # Respect .gitignore and hide build artifacts
  twig --gitignore -I "*.log" .

  # Largest files last, with sizes
  twig --sort-by size --size .`

	initUse              = "init"
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write the default twig configuration.
The file lands in the working directory unless --global is given.`
	initializedConfigurationFormat = "Configuration written to %s\n"

	invalidFormatMessage  = "invalid format value '%s'"
	invalidSortKeyMessage = "invalid sort key '%s'"
)

// Execute runs the twig application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// treeOptions stores the flag values for one invocation.
type treeOptions struct {
	maxDepth          int
	maxFiles          int
	dirsOnly          bool
	filesOnly         bool
	showHidden        bool
	followLinks       bool
	useGitignore      bool
	ignorePatterns    []string
	sortKey           string
	reverseSort       bool
	showSize          bool
	showPermissions   bool
	fullPath          bool
	outputFormat      string
	includeSummary    bool
	copyToClipboard   bool
	configurationFile string
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var options treeOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			if applyError := applyConfigurationDefaults(command, &options); applyError != nil {
				return applyError
			}
			options.sortKey = strings.ToLower(options.sortKey)
			if !types.IsSupportedSortKey(options.sortKey) {
				return fmt.Errorf(invalidSortKeyMessage, options.sortKey)
			}
			options.outputFormat = strings.ToLower(options.outputFormat)
			if !types.IsSupportedFormat(options.outputFormat) {
				return fmt.Errorf(invalidFormatMessage, options.outputFormat)
			}
			return runTree(command, rootPath, options)
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	flags := rootCommand.Flags()
	flags.IntVarP(&options.maxDepth, depthFlagName, depthFlagShorthand, types.UnlimitedDepth, depthFlagDescription)
	flags.IntVarP(&options.maxFiles, maxFilesFlagName, maxFilesFlagShorthand, types.UnlimitedFiles, maxFilesFlagDescription)
	flags.BoolVar(&options.dirsOnly, dirsOnlyFlagName, false, dirsOnlyFlagDescription)
	flags.BoolVar(&options.filesOnly, filesOnlyFlagName, false, filesOnlyFlagDescription)
	flags.BoolVarP(&options.showHidden, showHiddenFlagName, showHiddenFlagShorthand, false, showHiddenFlagDescription)
	flags.BoolVarP(&options.followLinks, followLinksFlagName, followLinksFlagShorthand, false, followLinksFlagDescription)
	flags.BoolVar(&options.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	flags.StringArrayVarP(&options.ignorePatterns, ignoreFlagName, ignoreFlagShorthand, nil, ignoreFlagDescription)
	flags.StringVar(&options.sortKey, sortByFlagName, types.SortKeyName, sortByFlagDescription)
	flags.BoolVarP(&options.reverseSort, reverseFlagName, reverseFlagShorthand, false, reverseFlagDescription)
	flags.BoolVarP(&options.showSize, showSizeFlagName, showSizeFlagShorthand, false, showSizeFlagDescription)
	flags.BoolVarP(&options.showPermissions, permissionsFlagName, permissionsFlagShorthand, false, permissionsFlagDescription)
	flags.BoolVarP(&options.fullPath, fullPathFlagName, fullPathFlagShorthand, false, fullPathFlagDescription)
	flags.StringVar(&options.outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	flags.BoolVar(&options.includeSummary, summaryFlagName, true, summaryFlagDescription)
	flags.BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	flags.StringVar(&options.configurationFile, configFlagName, "", configFlagDescription)
	rootCommand.MarkFlagsMutuallyExclusive(dirsOnlyFlagName, filesOnlyFlagName)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var initializeGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if initializeGlobal {
				target = config.InitTargetGlobal
			}
			destinationPath, initializeError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initializeError != nil {
				return initializeError
			}
			fmt.Fprintf(command.OutOrStdout(), initializedConfigurationFormat, destinationPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&initializeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// applyConfigurationDefaults overlays configuration file values onto flags
// the user did not set explicitly. Exclusion patterns from configuration are
// always appended to the command line patterns.
func applyConfigurationDefaults(command *cobra.Command, options *treeOptions) error {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configurationFile})
	if loadError != nil {
		return loadError
	}

	flags := command.Flags()
	if !flags.Changed(formatFlagName) && applicationConfiguration.Format != "" {
		options.outputFormat = applicationConfiguration.Format
	}
	if !flags.Changed(summaryFlagName) && applicationConfiguration.Summary != nil {
		options.includeSummary = *applicationConfiguration.Summary
	}
	if !flags.Changed(sortByFlagName) && applicationConfiguration.SortBy != "" {
		options.sortKey = applicationConfiguration.SortBy
	}
	if !flags.Changed(reverseFlagName) && applicationConfiguration.Reverse != nil {
		options.reverseSort = *applicationConfiguration.Reverse
	}
	if !flags.Changed(showHiddenFlagName) && applicationConfiguration.ShowHidden != nil {
		options.showHidden = *applicationConfiguration.ShowHidden
	}
	if !flags.Changed(followLinksFlagName) && applicationConfiguration.FollowLinks != nil {
		options.followLinks = *applicationConfiguration.FollowLinks
	}
	if !flags.Changed(showSizeFlagName) && applicationConfiguration.ShowSize != nil {
		options.showSize = *applicationConfiguration.ShowSize
	}
	if !flags.Changed(permissionsFlagName) && applicationConfiguration.ShowPermissions != nil {
		options.showPermissions = *applicationConfiguration.ShowPermissions
	}
	if !flags.Changed(fullPathFlagName) && applicationConfiguration.FullPath != nil {
		options.fullPath = *applicationConfiguration.FullPath
	}
	if !flags.Changed(depthFlagName) && applicationConfiguration.Depth != nil {
		options.maxDepth = *applicationConfiguration.Depth
	}
	if !flags.Changed(maxFilesFlagName) && applicationConfiguration.MaxFiles != nil {
		options.maxFiles = *applicationConfiguration.MaxFiles
	}
	if !flags.Changed(copyFlagName) && applicationConfiguration.Clipboard != nil {
		options.copyToClipboard = *applicationConfiguration.Clipboard
	}
	if !flags.Changed(gitignoreFlagName) && applicationConfiguration.Paths.UseGitignore != nil {
		options.useGitignore = *applicationConfiguration.Paths.UseGitignore
	}
	options.ignorePatterns = append(options.ignorePatterns, applicationConfiguration.Paths.Exclude...)

	return nil
}

// runTree validates the root path, runs the traversal, and renders the result.
func runTree(command *cobra.Command, rootPath string, options treeOptions) error {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return fmt.Errorf("abs failed for '%s': %w", rootPath, absolutePathError)
	}

	ignorePatterns, loadPatternsError := config.LoadRecursiveIgnorePatterns(absoluteRootPath, options.ignorePatterns, options.useGitignore)
	if loadPatternsError != nil {
		return loadPatternsError
	}

	traversalOptions := types.TraversalOptions{
		MaxDepth:        options.maxDepth,
		MaxFiles:        options.maxFiles,
		DirsOnly:        options.dirsOnly,
		FilesOnly:       options.filesOnly,
		ShowHidden:      options.showHidden,
		FollowLinks:     options.followLinks,
		IgnorePatterns:  ignorePatterns,
		SortKey:         options.sortKey,
		ReverseSort:     options.reverseSort,
		ShowSize:        options.showSize,
		ShowPermissions: options.showPermissions,
		FullPath:        options.fullPath,
	}

	treeBuilder := commands.NewTreeBuilder(traversalOptions)
	treeBuilder.WarningWriter = command.ErrOrStderr()
	rootNode, buildError := treeBuilder.GetTreeData(absoluteRootPath)
	if buildError != nil {
		return buildError
	}

	rendered, renderError := renderTree(rootNode, treeBuilder, options)
	if renderError != nil {
		return renderError
	}

	fmt.Fprint(command.OutOrStdout(), rendered)
	if options.copyToClipboard {
		if copyError := clipboard.NewService().Copy(rendered); copyError != nil {
			return fmt.Errorf("copying output to clipboard: %w", copyError)
		}
	}
	return nil
}

// renderTree produces the output text in the configured format. Every format
// ends with a trailing newline.
func renderTree(rootNode *types.TreeNode, treeBuilder *commands.TreeBuilder, options treeOptions) (string, error) {
	switch options.outputFormat {
	case types.FormatJSON:
		renderedJSON, renderJSONError := output.RenderTreeJSON(rootNode)
		if renderJSONError != nil {
			return "", renderJSONError
		}
		return renderedJSON + "\n", nil
	case types.FormatXML:
		renderedXML, renderXMLError := output.RenderTreeXML(rootNode)
		if renderXMLError != nil {
			return "", renderXMLError
		}
		return renderedXML + "\n", nil
	default:
		renderOptions := output.RenderOptions{
			ShowSize:        options.showSize,
			ShowPermissions: options.showPermissions,
			FullPath:        options.fullPath,
			IncludeSummary:  options.includeSummary,
			DirsOnly:        options.dirsOnly,
		}
		return output.RenderTreeRaw(rootNode, renderOptions, treeBuilder.DirectoryCount(), treeBuilder.FileCount()), nil
	}
}
