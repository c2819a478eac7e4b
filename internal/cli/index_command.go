package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/session"
	"github.com/temirov/dirindex/internal/types"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	indexUse              = "index [directory]"
	indexAlias            = "i"
	indexShortDescription = "index a directory and write the numbered listings (" + indexAlias + ")"
	indexLongDescription  = `Scan a directory, number every entry, and write directory_index.json,
directory_index.xml, and directory_index.txt into an Items_in_<Folder> folder.
When the directory is omitted on an interactive terminal, it is asked for.`
	indexUsageExample = `  # Index ~/Documents, writing Items_in_Documents into the current directory
  dirindex index ~/Documents

  # Write only the text listing next to the indexed files and copy it
  dirindex index --no-json --no-xml --in-place --copy ./photos`

	noJSONFlagName               = "no-json"
	noXMLFlagName                = "no-xml"
	noTextFlagName               = "no-txt"
	outputDirectoryFlagName      = "output-dir"
	outputDirectoryFlagShorthand = "o"
	inPlaceFlagName              = "in-place"
	labelFlagName                = "label"
	progressEveryFlagName        = "progress-every"
	copyFlagName                 = "copy"

	noJSONFlagDescription          = "skip JSON output"
	noXMLFlagDescription           = "skip XML output"
	noTextFlagDescription          = "skip TXT output"
	outputDirectoryFlagDescription = "directory receiving the Items_in_<Folder> folder"
	inPlaceFlagDescription         = "write the files into the indexed directory itself"
	labelFlagDescription           = "root label shown in the outputs (default: absolute path)"
	progressEveryFlagDescription   = "report progress every N items (0 disables)"
	copyFlagDescription            = "copy the text listing to the clipboard"

	messageScanSummary     = "Found %d items (%d directories, %d files) in %s"
	messageEmptyDirectory  = "No items found or directory is empty: %s"
	messageFileCreated     = "✓ %s file created: %s"
	messageOutputFolder    = "Output folder: %s"
	messageCopied          = "Text listing copied to clipboard"
	messageWarningsSummary = "%d warnings recorded during the scan; see the log above"
	logMessageCopyFailed   = "Clipboard copy failed"
	errorNoFormatsSelected = "no output formats selected; drop one of --no-json, --no-xml, --no-txt"
	errorConflictingOutput = "--in-place and --output-dir cannot be combined"
)

type indexOptions struct {
	skipJSON        bool
	skipXML         bool
	skipText        bool
	outputDirectory string
	inPlace         bool
	label           string
	progressEvery   int
	copyToClipboard bool
}

func (app *application) newIndexCommand() *cobra.Command {
	var options indexOptions

	indexCommand := &cobra.Command{
		Use:     indexUse,
		Aliases: []string{indexAlias},
		Short:   indexShortDescription,
		Long:    indexLongDescription,
		Example: indexUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			directoryPath := ""
			if len(arguments) > 0 {
				directoryPath = arguments[0]
			}
			return app.runIndex(command, directoryPath, app.resolveIndexOptions(command, options))
		},
	}

	flags := indexCommand.Flags()
	registerToggleFlag(flags, &options.skipJSON, noJSONFlagName, false, noJSONFlagDescription)
	registerToggleFlag(flags, &options.skipXML, noXMLFlagName, false, noXMLFlagDescription)
	registerToggleFlag(flags, &options.skipText, noTextFlagName, false, noTextFlagDescription)
	flags.StringVarP(&options.outputDirectory, outputDirectoryFlagName, outputDirectoryFlagShorthand, "", outputDirectoryFlagDescription)
	registerToggleFlag(flags, &options.inPlace, inPlaceFlagName, false, inPlaceFlagDescription)
	flags.StringVar(&options.label, labelFlagName, "", labelFlagDescription)
	flags.IntVar(&options.progressEvery, progressEveryFlagName, 0, progressEveryFlagDescription)
	registerToggleFlag(flags, &options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	return indexCommand
}

// resolveIndexOptions fills every flag the user did not set from the configuration.
func (app *application) resolveIndexOptions(command *cobra.Command, options indexOptions) indexOptions {
	defaults := app.configuration.Index
	flags := command.Flags()
	for _, format := range types.SupportedFormats() {
		enabled := utils.ContainsString(defaults.Formats, format)
		switch format {
		case types.FormatJSON:
			if !flags.Changed(noJSONFlagName) {
				options.skipJSON = !enabled
			}
		case types.FormatXML:
			if !flags.Changed(noXMLFlagName) {
				options.skipXML = !enabled
			}
		case types.FormatText:
			if !flags.Changed(noTextFlagName) {
				options.skipText = !enabled
			}
		}
	}
	if !flags.Changed(outputDirectoryFlagName) {
		options.outputDirectory = defaults.OutputDirectory
	}
	if !flags.Changed(inPlaceFlagName) && defaults.InPlace != nil {
		options.inPlace = *defaults.InPlace
	}
	if !flags.Changed(labelFlagName) {
		options.label = defaults.Label
	}
	if !flags.Changed(progressEveryFlagName) && defaults.ProgressEvery != nil {
		options.progressEvery = *defaults.ProgressEvery
	}
	if !flags.Changed(copyFlagName) && defaults.Clipboard != nil {
		options.copyToClipboard = *defaults.Clipboard
	}
	return options
}

func (options indexOptions) formats() []string {
	var formats []string
	if !options.skipJSON {
		formats = append(formats, types.FormatJSON)
	}
	if !options.skipXML {
		formats = append(formats, types.FormatXML)
	}
	if !options.skipText {
		formats = append(formats, types.FormatText)
	}
	return formats
}

func (app *application) runIndex(command *cobra.Command, directoryPath string, options indexOptions) error {
	formats := options.formats()
	if len(formats) == 0 {
		return errors.New(errorNoFormatsSelected)
	}
	if options.inPlace && command.Flags().Changed(outputDirectoryFlagName) {
		return errors.New(errorConflictingOutput)
	}
	if strings.TrimSpace(directoryPath) == "" {
		if !app.dependencies.Interactive(command.InOrStdin()) {
			return errNoDirectoryPath
		}
		prompted, promptError := promptForDirectory(command.InOrStdin(), command.ErrOrStderr())
		if promptError != nil {
			return promptError
		}
		directoryPath = prompted
	}
	rootPath, resolveError := utils.ResolvePath(directoryPath)
	if resolveError != nil {
		return resolveError
	}

	ctx, stop := signal.NotifyContext(commandContext(command), os.Interrupt)
	defer stop()

	runner := session.NewRunner(app.logger)
	result, runError := runner.Run(ctx, session.Request{
		RootPath:         rootPath,
		Formats:          formats,
		OutputDirectory:  options.outputDirectory,
		InPlace:          options.inPlace,
		RootLabel:        options.label,
		ProgressInterval: options.progressEvery,
	})
	if runError != nil {
		return runError
	}

	printer := newResultPrinter(command.OutOrStdout())
	if result.ItemCount == 0 {
		printer.Heading(messageEmptyDirectory, result.Document.RootPath)
	} else {
		printer.Heading(messageScanSummary, result.ItemCount, result.DirectoryCount, result.FileCount, result.Document.RootPath)
	}
	for _, format := range types.SupportedFormats() {
		if path, written := result.Files[format]; written {
			printer.Success(messageFileCreated, strings.ToUpper(format), path)
		}
	}
	printer.Detail(messageOutputFolder, result.OutputDirectory)
	if len(result.Document.Warnings) > 0 {
		printer.Detail(messageWarningsSummary, len(result.Document.Warnings))
	}

	if options.copyToClipboard {
		app.copyListing(printer, result)
	}
	return nil
}

func (app *application) copyListing(printer resultPrinter, result session.Result) {
	listing, rendered := result.Payloads[types.FormatText]
	if !rendered {
		var renderError error
		listing, renderError = output.RenderText(result.Document)
		if renderError != nil {
			app.logger.Warn(logMessageCopyFailed, zap.Error(renderError))
			return
		}
	}
	if copyError := app.dependencies.Clipboard.Copy(string(listing)); copyError != nil {
		app.logger.Warn(logMessageCopyFailed, zap.Error(copyError))
		return
	}
	printer.Success(messageCopied)
}

func commandContext(command *cobra.Command) context.Context {
	if ctx := command.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
