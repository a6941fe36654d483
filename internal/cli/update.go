package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/service"
)

func newUpdateCommand(a *app) *cobra.Command {
	var req service.ProgressRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update read percentage and create journal entries for bookmarks",
		Long: `Mark the book as currently reading, move the latest read to the page at
--value percent and, depending on sync_bookmarks, write the book's bookmarks
to the reading journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("value") {
				return syncerrors.InvalidInput("invalid arguments: --value is required")
			}

			progress := do.MustInvoke[*service.ProgressService](a.injector)
			result, err := progress.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContentID, "content-id", "", "Kobo book id or EPUB file path")
	f.IntVar(&req.BookID, "book-id", 0, "Hardcover.app book id (skips identifier lookup)")
	f.IntVar(&req.Percent, "value", 0, "read percentage")
	f.StringVar(&req.After, "after", "", "process bookmarks created after this ISO 8601 date")

	return cmd
}
