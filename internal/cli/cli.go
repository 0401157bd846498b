// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/treegen/internal/builder"
	"github.com/temirov/treegen/internal/config"
	"github.com/temirov/treegen/internal/filesystem"
	"github.com/temirov/treegen/internal/listing"
	"github.com/temirov/treegen/internal/output"
	"github.com/temirov/treegen/internal/parser"
	"github.com/temirov/treegen/internal/services/clipboard"
	"github.com/temirov/treegen/internal/services/stream"
	"github.com/temirov/treegen/internal/types"
	"github.com/temirov/treegen/internal/utils"
)

const (
	versionFlagName     = "version"
	configFlagName      = "config"
	logLevelFlagName    = "log-level"
	formatFlagName      = "format"
	outputFlagName      = "out"
	outputFlagShorthand = "o"
	dryRunFlagName      = "dry-run"
	clipboardFlagName   = "clipboard"
	copyFlagName        = "copy"
	directoryModeFlag   = "dir-perm"
	fileModeFlag        = "file-perm"
	globalFlagName      = "global"
	forceFlagName       = "force"

	versionTemplate      = "treegen version: %s\n"
	defaultOutputPath    = "."
	defaultListPath      = "."
	clipboardInputLabel  = "clipboard"
	standardInputLabel   = "stdin"
	rootUse              = "treegen"
	rootShortDescription = "treegen command line interface"
	rootLongDescription  = `treegen turns a tree listing into directories and empty files.
Listings may use tree connectors (├── └── │) or plain four-space indentation; a trailing / marks a directory and # starts a comment.
Use build to create the structure, parse to inspect how each line is read, and list to render an existing directory as a listing.`

	buildUse              = types.CommandBuild + " [input]"
	parseUse              = types.CommandParse + " [input]"
	listUse               = types.CommandList + " [path]"
	configUse             = "config"
	configInitUse         = "init"
	buildAlias            = "b"
	parseAlias            = "p"
	listAlias             = "l"
	buildShortDescription = "create directories and files from a listing (" + buildAlias + ")"
	parseShortDescription = "show how each listing line is parsed (" + parseAlias + ")"
	listShortDescription  = "render an existing directory as a listing (" + listAlias + ")"

	configShortDescription     = "manage treegen configuration"
	configInitShortDescription = "write the default configuration file"

	// buildLongDescription provides detailed help for the build command.
	buildLongDescription = `Read a listing (default dic.txt, "-" for standard input) and create the directories and empty files it describes under --out.
The first non-blank line must be a flush-left root item. Lines that cannot be placed are reported and skipped.
Use --dry-run to preview the result without touching the disk.`
	// buildUsageExample demonstrates build command usage.
	buildUsageExample = `  # Scaffold the layout described in dic.txt into the current directory
  treegen build

  # Preview a pasted listing as JSON
  treegen build --clipboard --dry-run --format json

  # Read from standard input into ./scaffold
  tree -F project | treegen build - --out scaffold`

	// parseLongDescription provides detailed help for the parse command.
	parseLongDescription = `Print the depth, name and kind of every non-blank listing line without creating anything.
Lines that would be skipped by build are reported with the reason.`
	// listLongDescription provides detailed help for the list command.
	listLongDescription = `Render a directory as a connector-style listing that build accepts.
Use --format to select raw, json, or xml output and --copy to place the result on the clipboard.`

	versionFlagDescription       = "display application version"
	configFlagDescription        = "path to a configuration file overriding the local .treegen.yaml"
	logLevelFlagDescription      = "log level (debug, info, warn, error)"
	formatFlagDescription        = "output format (raw, json, xml)"
	outputFlagDescription        = "directory the structure is created in"
	dryRunFlagDescription        = "simulate the build in memory and print the resulting tree"
	clipboardFlagDescription     = "read the listing from the system clipboard"
	copyFlagDescription          = "also copy the rendered listing to the system clipboard"
	directoryModeFlagDescription = "permissions for created directories (octal)"
	fileModeFlagDescription      = "permissions for created files (octal)"
	globalFlagDescription        = "write the global configuration in the home directory"
	forceFlagDescription         = "overwrite an existing configuration file"

	configurationWrittenFormat  = "configuration written to %s\n"
	invalidFormatMessage        = "invalid format value '%s'"
	errorClipboardWithInput     = "--clipboard cannot be combined with an input argument"
	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPreviewFormat          = "render dry run preview: %w"
	errorOutputIsFileFormat     = "output path %s is not a directory"
	errorCopyFormat             = "copy listing to clipboard: %w"

	inputFieldName  = "input"
	outputFieldName = "output"
	dryRunFieldName = "dryRun"
	startMessage    = "building directory structure"
)

// Dependencies are the process-level collaborators commands use.
type Dependencies struct {
	Stdout    io.Writer
	Stdin     io.Reader
	Clipboard clipboard.Accessor
	// Logger overrides the console logger built from --log-level.
	Logger    *zap.Logger
}

// Execute runs the treegen application.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{
		Stdout:    os.Stdout,
		Stdin:     os.Stdin,
		Clipboard: clipboard.NewService(),
	})
	return rootCommand.Execute()
}

// application carries the state shared by subcommands after flag parsing.
type application struct {
	dependencies      Dependencies
	logger            *zap.Logger
	configuration     config.ApplicationConfiguration
	configurationPath string
	logLevel          string
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// NewRootCommand builds the root Cobra command wired to dependencies.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Stdout == nil {
		dependencies.Stdout = io.Discard
	}
	if dependencies.Stdin == nil {
		dependencies.Stdin = strings.NewReader("")
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	app := &application{dependencies: dependencies}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			return app.initialize()
		},
	}
	rootCommand.SetOut(dependencies.Stdout)
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.logLevel, logLevelFlagName, utils.DefaultLogLevel, logLevelFlagDescription)
	rootCommand.AddCommand(
		app.createBuildCommand(),
		app.createParseCommand(),
		app.createListCommand(),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// initialize builds the logger and loads configuration files.
func (app *application) initialize() error {
	if app.dependencies.Logger != nil {
		app.logger = app.dependencies.Logger
	} else {
		logger, loggerError := utils.NewApplicationLogger(app.logLevel)
		if loggerError != nil {
			return loggerError
		}
		app.logger = logger
	}
	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configurationPath})
	if configurationError != nil {
		return configurationError
	}
	app.configuration = configuration
	return nil
}

// buildOptions stores the resolved settings of one build invocation.
type buildOptions struct {
	input         string
	output        string
	format        string
	dryRun        bool
	fromClipboard bool
	permissions   filesystem.Permissions
}

// createBuildCommand returns the build subcommand.
func (app *application) createBuildCommand() *cobra.Command {
	var (
		outputDirectory string
		outputFormat    string
		dryRun          bool
		fromClipboard   bool
		directoryMode   string
		fileMode        string
	)

	buildCommand := &cobra.Command{
		Use:     buildUse,
		Aliases: []string{buildAlias},
		Short:   buildShortDescription,
		Long:    buildLongDescription,
		Example: buildUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := app.configuration.Build
			flags := command.Flags()
			if flags.Changed(outputFlagName) {
				configured.Output = outputDirectory
			}
			if flags.Changed(formatFlagName) {
				configured.Format = outputFormat
			}
			if flags.Changed(dryRunFlagName) {
				configured.DryRun = &dryRun
			}
			if flags.Changed(directoryModeFlag) {
				configured.Permissions.Directory = directoryMode
			}
			if flags.Changed(fileModeFlag) {
				configured.Permissions.File = fileMode
			}
			if len(arguments) == 1 {
				if fromClipboard {
					return errors.New(errorClipboardWithInput)
				}
				configured.Input = arguments[0]
			}
			options, optionsError := resolveBuildOptions(configured, fromClipboard)
			if optionsError != nil {
				return optionsError
			}
			return app.runBuild(command.Context(), options)
		},
	}

	buildCommand.Flags().StringVarP(&outputDirectory, outputFlagName, outputFlagShorthand, defaultOutputPath, outputFlagDescription)
	buildCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	buildCommand.Flags().BoolVar(&dryRun, dryRunFlagName, false, dryRunFlagDescription)
	buildCommand.Flags().BoolVar(&fromClipboard, clipboardFlagName, false, clipboardFlagDescription)
	buildCommand.Flags().StringVar(&directoryMode, directoryModeFlag, "0755", directoryModeFlagDescription)
	buildCommand.Flags().StringVar(&fileMode, fileModeFlag, "0644", fileModeFlagDescription)
	return buildCommand
}

// resolveBuildOptions applies defaults to the merged configuration and validates it.
func resolveBuildOptions(configured config.BuildConfiguration, fromClipboard bool) (buildOptions, error) {
	options := buildOptions{
		input:         configured.Input,
		output:        configured.Output,
		format:        strings.ToLower(configured.Format),
		fromClipboard: fromClipboard,
	}
	if options.input == "" {
		options.input = utils.DefaultInputFileName
	}
	if options.output == "" {
		options.output = defaultOutputPath
	}
	if options.format == "" {
		options.format = types.FormatRaw
	}
	if !isSupportedFormat(options.format) {
		return buildOptions{}, fmt.Errorf(invalidFormatMessage, options.format)
	}
	if configured.DryRun != nil {
		options.dryRun = *configured.DryRun
	}
	directoryPermissions, directoryError := config.ParseFileMode(configured.Permissions.Directory, filesystem.DefaultDirectoryPermissions)
	if directoryError != nil {
		return buildOptions{}, directoryError
	}
	filePermissions, fileError := config.ParseFileMode(configured.Permissions.File, filesystem.DefaultFilePermissions)
	if fileError != nil {
		return buildOptions{}, fileError
	}
	options.permissions = filesystem.Permissions{Directory: directoryPermissions, File: filePermissions}
	return options, nil
}

// runBuild streams the listing into a builder run and prints the report.
func (app *application) runBuild(ctx context.Context, options buildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reader, inputLabel, openError := app.openListing(options)
	if openError != nil {
		return openError
	}
	defer reader.Close()

	outputDirectory, absoluteError := filepath.Abs(options.output)
	if absoluteError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, options.output, absoluteError)
	}
	if info, statError := os.Stat(outputDirectory); statError == nil && !info.IsDir() {
		return fmt.Errorf(errorOutputIsFileFormat, outputDirectory)
	}

	outputFileSystem := filesystem.NewOutputFileSystem(outputDirectory, options.dryRun)
	var creator filesystem.Creator = filesystem.NewService(outputFileSystem, options.permissions)
	if !options.dryRun {
		creator = filesystem.NewOutputDirectoryCreator(creator, outputDirectory, options.permissions)
	}
	run := builder.NewTreeBuilder(creator, app.logger).NewRun()

	app.logger.Info(startMessage,
		zap.String(inputFieldName, inputLabel),
		zap.String(outputFieldName, outputDirectory),
		zap.Bool(dryRunFieldName, options.dryRun),
	)

	producer := func(streamCtx context.Context, lines chan<- types.SourceLine) error {
		return stream.StreamLines(streamCtx, reader, lines)
	}
	consumer := func(line types.SourceLine) error {
		return run.Step(line)
	}
	if streamError := dispatchStream(ctx, producer, consumer); streamError != nil {
		return streamError
	}

	report := run.Finish()
	report.Input = inputLabel
	report.DryRun = options.dryRun
	if options.dryRun && report.Root != "" {
		preview, previewError := listing.NewLister(outputFileSystem, app.logger).GetTreeData(report.Root)
		if previewError != nil {
			return fmt.Errorf(errorPreviewFormat, previewError)
		}
		report.Preview = preview
	}
	return output.WriteBuildReport(app.dependencies.Stdout, report, options.format)
}

// openListing returns the reader selected by options along with a label for reports.
func (app *application) openListing(options buildOptions) (io.ReadCloser, string, error) {
	if options.fromClipboard {
		text, pasteError := app.dependencies.Clipboard.Paste()
		if pasteError != nil {
			return nil, "", pasteError
		}
		return io.NopCloser(strings.NewReader(text)), clipboardInputLabel, nil
	}
	return app.openInputPath(options.input)
}

func (app *application) openInputPath(inputPath string) (io.ReadCloser, string, error) {
	if inputPath == stream.StandardInputPath {
		return io.NopCloser(app.dependencies.Stdin), standardInputLabel, nil
	}
	reader, openError := stream.OpenInput(inputPath)
	if openError != nil {
		return nil, "", openError
	}
	return reader, inputPath, nil
}

// createParseCommand returns the parse subcommand.
func (app *application) createParseCommand() *cobra.Command {
	var outputFormat string
	var fromClipboard bool

	parseCommand := &cobra.Command{
		Use:     parseUse,
		Aliases: []string{parseAlias},
		Short:   parseShortDescription,
		Long:    parseLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			outputFormatLower := strings.ToLower(outputFormat)
			if !isSupportedFormat(outputFormatLower) {
				return fmt.Errorf(invalidFormatMessage, outputFormatLower)
			}
			options := buildOptions{input: app.configuration.Build.Input, fromClipboard: fromClipboard}
			if len(arguments) == 1 {
				if fromClipboard {
					return errors.New(errorClipboardWithInput)
				}
				options.input = arguments[0]
			}
			if options.input == "" {
				options.input = utils.DefaultInputFileName
			}
			return app.runParse(options, outputFormatLower)
		},
	}

	parseCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	parseCommand.Flags().BoolVar(&fromClipboard, clipboardFlagName, false, clipboardFlagDescription)
	return parseCommand
}

// runParse prints the parsed form of every non-blank line.
func (app *application) runParse(options buildOptions, format string) error {
	reader, _, openError := app.openListing(options)
	if openError != nil {
		return openError
	}
	defer reader.Close()

	lines, readError := stream.ReadLines(reader)
	if readError != nil {
		return readError
	}
	return output.WriteParseOutputs(app.dependencies.Stdout, ParseListing(lines), format)
}

// ParseListing returns one entry per line that is neither blank nor comment-only, numbered from 1.
func ParseListing(lines []string) []types.ParseOutput {
	var outputs []types.ParseOutput
	for lineIndex, lineText := range lines {
		if parser.IsBlank(lineText) {
			continue
		}
		parseOutput := types.ParseOutput{Number: lineIndex + 1, Text: lineText}
		parsedLine, parseError := parser.ParseLine(lineText)
		if parseError != nil {
			parseOutput.Error = parseError.Error()
		} else {
			parseOutput.Depth = parsedLine.Depth
			parseOutput.Name = parsedLine.Name
			parseOutput.IsDirectory = parsedLine.IsDirectory
		}
		outputs = append(outputs, parseOutput)
	}
	return outputs
}

// createListCommand returns the list subcommand.
func (app *application) createListCommand() *cobra.Command {
	var outputFormat string
	var copyToClipboard bool

	listCommand := &cobra.Command{
		Use:     listUse,
		Aliases: []string{listAlias},
		Short:   listShortDescription,
		Long:    listLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			format := app.configuration.List.Format
			if command.Flags().Changed(formatFlagName) || format == "" {
				format = outputFormat
			}
			format = strings.ToLower(format)
			if !isSupportedFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			listPath := defaultListPath
			if len(arguments) == 1 {
				listPath = arguments[0]
			}
			return app.runList(listPath, format, copyToClipboard)
		},
	}

	listCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	listCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	return listCommand
}

// runList renders the directory at listPath, copying the rendering when copyToClipboard is set.
func (app *application) runList(listPath string, format string, copyToClipboard bool) error {
	absolutePath, absoluteError := filepath.Abs(listPath)
	if absoluteError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, listPath, absoluteError)
	}
	treeData, treeError := listing.NewLister(afero.NewOsFs(), app.logger).GetTreeData(absolutePath)
	if treeError != nil {
		return treeError
	}
	if !copyToClipboard {
		return output.WriteTree(app.dependencies.Stdout, treeData, format)
	}
	var rendered strings.Builder
	if writeError := output.WriteTree(&rendered, treeData, format); writeError != nil {
		return writeError
	}
	if copyError := app.dependencies.Clipboard.Copy(rendered.String()); copyError != nil {
		return fmt.Errorf(errorCopyFormat, copyError)
	}
	_, writeError := io.WriteString(app.dependencies.Stdout, rendered.String())
	return writeError
}

// createConfigCommand returns the config command group.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		Args:  cobra.NoArgs,
	}

	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	configCommand.AddCommand(initCommand)
	return configCommand
}

// dispatchStream runs produce and consume concurrently, handing lines over in order.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- types.SourceLine) error,
	consume func(types.SourceLine) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	lines := make(chan types.SourceLine)

	group.Go(func() error {
		defer close(lines)
		return produce(streamCtx, lines)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if err := consume(line); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
