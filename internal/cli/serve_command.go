package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirindex/internal/services/web"
	"github.com/temirov/dirindex/internal/session"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	serveUse              = "serve"
	serveShortDescription = "serve the browser front-end for indexing and downloads"
	serveLongDescription  = `Start an HTTP server exposing /index, /download, and /browse.
Generated files live in a private session workspace and are removed after the session TTL.`

	addressFlagName            = "address"
	addressFlagDescription     = "listen address (host:port)"
	basePathFlagName           = "base-path"
	basePathFlagDescription    = "directory offered at the top of /browse (repeatable)"
	sessionTTLFlagName         = "session-ttl"
	sessionTTLFlagDescription  = "how long generated files stay downloadable"
	serveOutputFlagDescription = "parent directory of the session workspace (default: system temporary directory)"

	messageServing        = "Serving %s on http://%s"
	messageWorkspace      = "Session workspace: %s"
	logMessageStopped     = "Web server stopped"
	logMessageCloseFailed = "Session workspace cleanup failed"
)

type serveOptions struct {
	address         string
	outputDirectory string
	basePaths       []string
	sessionTTL      time.Duration
}

func (app *application) newServeCommand() *cobra.Command {
	var options serveOptions

	serveCommand := &cobra.Command{
		Use:   serveUse,
		Short: serveShortDescription,
		Long:  serveLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			defaults := app.configuration.Serve
			flags := command.Flags()
			if !flags.Changed(addressFlagName) {
				options.address = defaults.Address
			}
			if !flags.Changed(outputDirectoryFlagName) {
				options.outputDirectory = defaults.OutputDirectory
			}
			if !flags.Changed(basePathFlagName) {
				options.basePaths = defaults.BasePaths
			}
			if !flags.Changed(sessionTTLFlagName) {
				options.sessionTTL = defaults.SessionTTL
			}
			return app.runServe(command, options)
		},
	}

	flags := serveCommand.Flags()
	flags.StringVar(&options.address, addressFlagName, "", addressFlagDescription)
	flags.StringVarP(&options.outputDirectory, outputDirectoryFlagName, outputDirectoryFlagShorthand, "", serveOutputFlagDescription)
	flags.StringArrayVar(&options.basePaths, basePathFlagName, nil, basePathFlagDescription)
	flags.DurationVar(&options.sessionTTL, sessionTTLFlagName, 0, sessionTTLFlagDescription)
	return serveCommand
}

func (app *application) runServe(command *cobra.Command, options serveOptions) error {
	store, storeError := session.NewStore(options.outputDirectory, options.sessionTTL)
	if storeError != nil {
		return storeError
	}
	defer func() {
		if closeError := store.Close(); closeError != nil {
			app.logger.Warn(logMessageCloseFailed, zap.Error(closeError))
		}
	}()

	progressInterval := 0
	if app.configuration.Index.ProgressEvery != nil {
		progressInterval = *app.configuration.Index.ProgressEvery
	}
	server := web.NewServer(web.Config{
		Address:          options.address,
		BasePaths:        options.basePaths,
		ProgressInterval: progressInterval,
		Version:          utils.GetApplicationVersion(),
		Runner:           session.NewRunner(app.logger),
		Store:            store,
		Logger:           app.logger,
	})

	ctx, stop := signal.NotifyContext(commandContext(command), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := newResultPrinter(command.OutOrStdout())
	runError := server.Run(ctx, func(address string) {
		printer.Heading(messageServing, utils.ApplicationName, address)
		printer.Detail(messageWorkspace, store.Workspace())
	})
	app.logger.Info(logMessageStopped)
	return runError
}
