package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/services/web"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	browseUse              = "browse [path]"
	browseShortDescription = "list one directory level the way the indexer sees it"
	browseLongDescription  = `List the visible children of a directory, directories first, with sizes and
modification times. Without a path, the configured base paths are listed.`

	browseDirectoryLineFormat = "%s %s/  %s"
	browseFileLineFormat      = "%s %s  %s  %s"
	browseLockedSuffix        = "  (not accessible)"
	messageBrowseHeading      = "%s"
	messageBrowseBasePaths    = "Base paths"
	messageBrowseEmpty        = "(empty)"
)

func (app *application) newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   browseUse,
		Short: browseShortDescription,
		Long:  browseLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			path := utils.EmptyString
			if len(arguments) > 0 {
				path = arguments[0]
			}
			listing, browseError := web.Browse(path, app.configuration.Serve.BasePaths)
			if browseError != nil {
				return browseError
			}
			printListing(newResultPrinter(command.OutOrStdout()), listing)
			return nil
		},
	}
}

func printListing(printer resultPrinter, listing web.Listing) {
	if listing.CurrentPath == utils.EmptyString {
		printer.Heading(messageBrowseHeading, messageBrowseBasePaths)
	} else {
		printer.Heading(messageBrowseHeading, listing.CurrentPath)
	}
	if len(listing.Items) == 0 {
		printer.Detail(messageBrowseEmpty)
		return
	}
	for _, item := range listing.Items {
		if item.IsDir {
			line := item.Name
			if !item.CanEnter {
				line += browseLockedSuffix
			}
			printer.Line(browseDirectoryLineFormat, output.DirectoryMarker, line, item.Modified)
			continue
		}
		printer.Line(browseFileLineFormat, output.FileMarker, item.Name, utils.FormatFileSize(item.Size), item.Modified)
	}
}
