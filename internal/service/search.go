package service

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"log/slog"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// SearchService searches the Hardcover.app catalog for manual linking.
type SearchService struct {
	remote    hardcover.Executor
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(remote hardcover.Executor, validator *validation.Validator, logger *slog.Logger) *SearchService {
	return &SearchService{
		remote:    remote,
		validator: validator,
		logger:    logger,
	}
}

// SearchRequest is one page of a book search.
type SearchRequest struct {
	Query string `flag:"query" validate:"required"`
	Limit int    `flag:"limit" validate:"gt=0,lte=100"`
	Page  int    `flag:"page" validate:"gte=1"`
}

// SearchResult is one page of hits.
type SearchResult struct {
	Results []SearchHit `json:"results"`
	Page    *int        `json:"page"`
	// Total is the number of pages.
	Total int `json:"total"`
}

// SearchHit is a book as shown in search results.
type SearchHit struct {
	ID          jsontext.Value `json:"id"`
	Title       *string        `json:"title"`
	ReleaseYear *int           `json:"release_year"`
	UsersCount  *int           `json:"users_count"`
	Rating      *float64       `json:"rating"`
	Authors     []string       `json:"authors"`
	Image       *string        `json:"image"`
	Series      *SearchSeries  `json:"series"`
}

// SearchSeries is the featured series of a hit.
type SearchSeries struct {
	Name              *string  `json:"name"`
	Position          *float64 `json:"position"`
	PrimaryBooksCount *int     `json:"primary_books_count"`
}

// searchResults is the search engine response held in search.results.
type searchResults struct {
	Found *int         `json:"found"`
	Page  *int         `json:"page"`
	Hits  *[]searchHit `json:"hits"`
}

type searchHit struct {
	Document *searchDocument `json:"document"`
}

type searchDocument struct {
	ID            jsontext.Value `json:"id"`
	Title         *string        `json:"title"`
	ReleaseYear   *int           `json:"release_year"`
	UsersCount    *int           `json:"users_count"`
	Rating        *float64       `json:"rating"`
	Contributions []struct {
		Contribution *string `json:"contribution"`
		Author       *struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"contributions"`
	Image *struct {
		URL *string `json:"url"`
	} `json:"image"`
	FeaturedSeries *struct {
		Position *float64 `json:"position"`
		Series   *struct {
			Name              *string `json:"name"`
			PrimaryBooksCount *int    `json:"primary_books_count"`
		} `json:"series"`
	} `json:"featured_series"`
}

// Search runs a catalog search and reduces hits to what a picker needs.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	vars := hardcover.SearchVars{Query: req.Query, PerPage: req.Limit, Page: req.Page}
	var data hardcover.SearchData
	if err := s.remote.Execute(ctx, hardcover.SearchBooks, vars, &data); err != nil {
		return nil, syncerrors.Remotef(err, "search %q", req.Query)
	}
	if data.Search == nil {
		return nil, syncerrors.Remotef(hardcover.ErrNoData, "Failed to find field <i>search</i> in Hardcover.app results")
	}
	if len(data.Search.Results) == 0 || string(data.Search.Results) == "null" {
		return nil, syncerrors.Remotef(hardcover.ErrNoData, "Failed to find field <i>results</i> in Hardcover.app results")
	}

	var results searchResults
	if err := json.Unmarshal(data.Search.Results, &results); err != nil {
		return nil, syncerrors.Remotef(err, "Failed to read Hardcover.app search results")
	}
	if results.Hits == nil {
		return nil, syncerrors.Remotef(hardcover.ErrNoData, "Failed to find field <i>hits</i> in Hardcover.app results")
	}

	out := &SearchResult{
		Results: make([]SearchHit, 0, len(*results.Hits)),
		Page:    results.Page,
		Total:   req.Limit,
	}
	if results.Found != nil {
		out.Total = *results.Found
	}
	out.Total /= req.Limit

	for _, hit := range *results.Hits {
		if hit.Document == nil {
			continue
		}
		out.Results = append(out.Results, hit.Document.hit())
	}

	s.logger.Debug("search finished", "query", req.Query, "page", req.Page, "hits", len(out.Results))
	return out, nil
}

// hit keeps authors only: contributions with a role such as "Narrator" or
// "Illustrator" are dropped.
func (doc *searchDocument) hit() SearchHit {
	hit := SearchHit{
		ID:          doc.ID,
		Title:       doc.Title,
		ReleaseYear: doc.ReleaseYear,
		UsersCount:  doc.UsersCount,
		Rating:      doc.Rating,
		Authors:     []string{},
	}
	if len(hit.ID) == 0 {
		hit.ID = jsontext.Value("null")
	}

	for _, c := range doc.Contributions {
		if c.Contribution == nil && c.Author != nil {
			hit.Authors = append(hit.Authors, c.Author.Name)
		}
	}
	if doc.Image != nil {
		hit.Image = doc.Image.URL
	}
	if fs := doc.FeaturedSeries; fs != nil {
		hit.Series = &SearchSeries{Position: fs.Position}
		if fs.Series != nil {
			hit.Series.Name = fs.Series.Name
			hit.Series.PrimaryBooksCount = fs.Series.PrimaryBooksCount
		}
	}
	return hit
}
