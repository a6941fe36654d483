package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/hardcover-sync/internal/service"
)

func newSetUserBookCommand(a *app) *cobra.Command {
	var (
		req       service.SetUserBookRequest
		text      string
		spoilers  bool
		sponsored bool
	)

	cmd := &cobra.Command{
		Use:   "set-user-book",
		Short: "Update status, rating and review of a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("text") {
				req.Text = &text
			}
			if f.Changed("spoilers") {
				req.Spoilers = &spoilers
			}
			if f.Changed("sponsored") {
				req.Sponsored = &sponsored
			}

			reviews := do.MustInvoke[*service.ReviewService](a.injector)
			result, err := reviews.SetUserBook(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContentID, "content-id", "", "Kobo book id or EPUB file path")
	f.IntVar(&req.BookID, "book-id", 0, "Hardcover.app book id")
	f.IntVar(&req.Status, "status", 0, "status id: 1 want to read, 2 currently reading, 3 read, 4 paused, 5 did not finish, 6 ignored")
	f.Float64Var(&req.Rating, "rating", 0, "rating from 0.5 to 5 (0 leaves it unset)")
	f.StringVar(&text, "text", "", "review body text")
	f.BoolVar(&spoilers, "spoilers", false, "review contains spoilers")
	f.BoolVar(&sponsored, "sponsored", false, "sponsored or ARC review")

	return cmd
}

func newGetUserBookCommand(a *app) *cobra.Command {
	var req service.GetUserBookRequest

	cmd := &cobra.Command{
		Use:   "get-user-book",
		Short: "Print the user book including the review",
		Long:  "Print the user book including the review as plain text, or {} when the book is not on the user's shelves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reviews := do.MustInvoke[*service.ReviewService](a.injector)
			view, err := reviews.GetUserBook(cmd.Context(), req)
			if err != nil {
				return err
			}
			if view == nil {
				return a.print(struct{}{})
			}
			return a.print(view)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContentID, "content-id", "", "Kobo book id or EPUB file path")
	f.IntVar(&req.BookID, "book-id", 0, "Hardcover.app book id")

	return cmd
}
