package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/dirindex/internal/config"
)

const (
	initUse               = "init"
	initShortDescription  = "write a configuration file with the default settings"
	globalFlagName        = "global"
	globalFlagDescription = "write ~/.dirindex/config.yaml instead of ./.dirindex.yaml"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	messageConfigWritten  = "Configuration written to %s"
)

func (app *application) newInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		// init must work even when an existing configuration file is broken.
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			newResultPrinter(command.OutOrStdout()).Success(messageConfigWritten, writtenPath)
			return nil
		},
	}
	registerToggleFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
