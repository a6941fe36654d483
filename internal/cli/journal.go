package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/hardcover-sync/internal/service"
)

const defaultPageSize = 10

func newInsertJournalCommand(a *app) *cobra.Command {
	var req service.NoteRequest

	cmd := &cobra.Command{
		Use:   "insert-journal",
		Short: "Insert a note into the reading journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journals := do.MustInvoke[*service.JournalService](a.injector)
			result, err := journals.InsertNote(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContentID, "content-id", "", "Kobo book id or EPUB file path")
	f.IntVar(&req.BookID, "book-id", 0, "Hardcover.app book id")
	f.StringVar(&req.Text, "text", "", "note text")
	f.Float64Var(&req.Percentage, "percentage", 0, "current read percentage")

	return cmd
}

func newListJournalCommand(a *app) *cobra.Command {
	req := service.ListJournalRequest{Limit: defaultPageSize}

	cmd := &cobra.Command{
		Use:   "list-journal",
		Short: "Print reading journal entries of a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journals := do.MustInvoke[*service.JournalService](a.injector)
			listing, err := journals.ListJournal(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(listing)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContentID, "content-id", "", "Kobo book id or EPUB file path")
	f.IntVar(&req.BookID, "book-id", 0, "Hardcover.app book id")
	f.IntVar(&req.Limit, "limit", defaultPageSize, "how many entries to return")
	f.IntVar(&req.Offset, "offset", 0, "how many entries to skip")

	return cmd
}
