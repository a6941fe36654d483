package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/hardcover-sync/internal/service"
)

func newSearchCommand(a *app) *cobra.Command {
	req := service.SearchRequest{Limit: defaultPageSize, Page: 1}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search Hardcover.app for books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			search := do.MustInvoke[*service.SearchService](a.injector)
			result, err := search.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Query, "query", "", "search query")
	f.IntVar(&req.Limit, "limit", defaultPageSize, "how many results per page")
	f.IntVar(&req.Page, "page", 1, "which page")

	return cmd
}
