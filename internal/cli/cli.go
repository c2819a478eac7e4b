// Package cli provides the command line interface.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirindex/internal/config"
	"github.com/temirov/dirindex/internal/services/clipboard"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	configFlagName        = "config"
	configFlagDescription = "configuration file (default ./" + utils.LocalConfigFileName + ")"
	versionTemplate       = utils.ApplicationName + " version: {{.Version}}\n"
	rootShortDescription  = "index directory contents with hierarchical numbering"
	rootLongDescription   = `dirindex walks a directory tree, numbers every entry by its position (1, 1.1, 1.2.3),
and writes the result as JSON, XML, and an indented text listing.
Hidden entries (names starting with ".") are skipped.`
)

// Dependencies holds the collaborators used by the commands.
type Dependencies struct {
	Input       io.Reader
	Output      io.Writer
	ErrorOutput io.Writer
	Clipboard   clipboard.Copier
	// Interactive reports whether the prompt may ask for a missing directory path.
	Interactive func(input io.Reader) bool
	// NewLogger builds the application logger for the configured level.
	NewLogger func(level string) (*zap.Logger, error)
}

// application carries state shared by the commands of one invocation.
type application struct {
	dependencies      Dependencies
	configurationPath string
	configuration     config.ApplicationConfiguration
	logger            *zap.Logger
}

// Execute runs the dirindex application with the process arguments.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command. Zero-valued dependencies fall
// back to the process streams, the system clipboard, and the console logger.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	app := &application{dependencies: withDefaults(dependencies), logger: zap.NewNop()}

	rootCommand := &cobra.Command{
		Use:           utils.ApplicationName,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare()
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			_ = app.logger.Sync()
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetIn(app.dependencies.Input)
	rootCommand.SetOut(app.dependencies.Output)
	rootCommand.SetErr(app.dependencies.ErrorOutput)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		app.newIndexCommand(),
		app.newServeCommand(),
		app.newBrowseCommand(),
		app.newInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func withDefaults(dependencies Dependencies) Dependencies {
	if dependencies.Input == nil {
		dependencies.Input = os.Stdin
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if dependencies.ErrorOutput == nil {
		dependencies.ErrorOutput = os.Stderr
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.Interactive == nil {
		dependencies.Interactive = func(input io.Reader) bool { return isTerminal(input) }
	}
	if dependencies.NewLogger == nil {
		dependencies.NewLogger = utils.NewApplicationLogger
	}
	return dependencies
}

// prepare loads the layered configuration and builds the logger it selects.
func (app *application) prepare() error {
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configurationPath})
	if loadError != nil {
		return loadError
	}
	logger, loggerError := app.dependencies.NewLogger(loaded.LogLevel)
	if loggerError != nil {
		return loggerError
	}
	app.configuration = loaded
	app.logger = logger
	return nil
}
