package service

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"log/slog"
	"strings"

	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
	"github.com/listenupapp/hardcover-sync/internal/slate"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// positionTypePages marks journal positions expressed in pages.
const positionTypePages = "pages"

// Outcome is what reconciling one journal entry did.
type Outcome int

// Reconcile outcomes.
const (
	OutcomeSkipped Outcome = iota
	OutcomeInserted
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// BookmarkSyncOptions control a bookmark pass.
type BookmarkSyncOptions struct {
	// After enables matching against existing entries for bookmarks created
	// before it. Later bookmarks are assumed new.
	After string
	// NullActionAt writes entries without an action date.
	NullActionAt bool
}

// BookmarkSummary counts the outcomes of a bookmark pass.
type BookmarkSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

func (s *BookmarkSummary) add(o Outcome) {
	switch o {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeUpdated:
		s.Updated++
	default:
		s.Skipped++
	}
}

// JournalReconciler writes reading journal entries without duplicating them.
type JournalReconciler struct {
	remote hardcover.Executor
	logger *slog.Logger
}

// NewJournalReconciler creates a new journal reconciler.
func NewJournalReconciler(remote hardcover.Executor, logger *slog.Logger) *JournalReconciler {
	return &JournalReconciler{
		remote: remote,
		logger: logger,
	}
}

// Reconcile makes target present among existing, matching entries by event
// kind. A missing entry is inserted with its position. A match with other
// text has only its text updated; the stored position is kept as is.
func (r *JournalReconciler) Reconcile(ctx context.Context, identity *Identity, target domain.JournalEntry, existing []domain.JournalEntry) (Outcome, error) {
	for _, entry := range existing {
		if entry.Event != target.Event {
			continue
		}
		if entry.Entry == target.Entry {
			r.logger.Debug("skipping journal entry", "event", target.Event, "journal_id", entry.ID)
			return OutcomeSkipped, nil
		}
		if err := r.update(ctx, entry.ID, target); err != nil {
			return OutcomeSkipped, err
		}
		return OutcomeUpdated, nil
	}

	if err := r.insert(ctx, identity, target); err != nil {
		return OutcomeSkipped, err
	}
	return OutcomeInserted, nil
}

func (r *JournalReconciler) insert(ctx context.Context, identity *Identity, target domain.JournalEntry) error {
	r.logger.Info("inserting journal entry",
		"event", target.Event,
		"book_id", identity.BookID,
		"edition_id", identity.EditionID,
		"page", target.Position.Page,
	)

	vars := hardcover.InsertJournalVars{Object: hardcover.JournalInput{
		BookID:    identity.BookID,
		EditionID: identity.EditionID,
		Event:     string(target.Event),
		Entry:     target.Entry,
		ActionAt:  target.ActionAt,
		Tags:      []string{},
		Metadata: hardcover.JournalMetadata{Position: hardcover.JournalPosition{
			Type:     positionTypePages,
			Value:    target.Position.Page,
			Possible: target.Position.Possible,
			Percent:  target.Position.Percent,
		}},
	}}

	var data hardcover.InsertJournalData
	if err := r.remote.Execute(ctx, hardcover.InsertReadingJournal, vars, &data); err != nil {
		return err
	}
	if data.InsertReadingJournal != nil {
		return hardcover.PayloadError(hardcover.InsertReadingJournal, data.InsertReadingJournal.Errors...)
	}
	return nil
}

func (r *JournalReconciler) update(ctx context.Context, id int, target domain.JournalEntry) error {
	r.logger.Info("updating journal entry", "event", target.Event, "journal_id", id)

	vars := hardcover.UpdateJournalVars{ID: id, Object: hardcover.JournalUpdateInput{Entry: target.Entry}}

	var data hardcover.UpdateJournalData
	if err := r.remote.Execute(ctx, hardcover.UpdateReadingJournal, vars, &data); err != nil {
		return err
	}
	if data.UpdateReadingJournal != nil {
		return hardcover.PayloadError(hardcover.UpdateReadingJournal, data.UpdateReadingJournal.Errors...)
	}
	return nil
}

// SyncBookmarks mirrors bookmarks, in order, as a "quote" entry and, when
// annotated, a "note" entry at the same position. Bookmarks without
// highlighted text are left out, annotation included. The first failure
// aborts the pass.
func (r *JournalReconciler) SyncBookmarks(ctx context.Context, identity *Identity, bookmarks []domain.Bookmark, opts BookmarkSyncOptions) (BookmarkSummary, error) {
	var summary BookmarkSummary

	for i, bm := range bookmarks {
		if bm.Text == "" {
			r.logger.Debug("skipping bookmark without text",
				"book_id", identity.BookID,
				"bookmark", i+1,
				"created", bm.DateCreated,
			)
			continue
		}

		existing, err := r.existingEntries(ctx, identity, bm, opts.After)
		if err != nil {
			return summary, syncerrors.Remotef(err, "fetch journal for bookmark %d created %s", i+1, bm.DateCreated)
		}

		var actionAt *string
		if !opts.NullActionAt {
			actionAt = &bm.DateCreated
		}
		position := domain.PositionAt(bm.Location, identity.Pages)

		targets := []domain.JournalEntry{{
			Event:    domain.JournalQuote,
			Entry:    bm.Text,
			ActionAt: actionAt,
			Position: position,
		}}
		if bm.Annotation != "" {
			targets = append(targets, domain.JournalEntry{
				Event:    domain.JournalNote,
				Entry:    bm.Annotation,
				ActionAt: actionAt,
				Position: position,
			})
		}

		for _, target := range targets {
			outcome, err := r.Reconcile(ctx, identity, target, existing)
			if err != nil {
				return summary, syncerrors.Remotef(err, "sync %s of bookmark %d created %s", target.Event, i+1, bm.DateCreated)
			}
			summary.add(outcome)
		}
	}

	r.logger.Info("bookmarks synced",
		"book_id", identity.BookID,
		"bookmarks", len(bookmarks),
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// existingEntries fetches the entries recorded at the bookmark's creation
// date. Only bookmarks older than after can already have been synced.
func (r *JournalReconciler) existingEntries(ctx context.Context, identity *Identity, bm domain.Bookmark, after string) ([]domain.JournalEntry, error) {
	if after == "" || bm.DateCreated >= after {
		return nil, nil
	}

	vars := hardcover.GetJournalVars{
		UserID:   identity.UserID,
		BookID:   identity.BookID,
		ActionAt: bm.DateCreated,
	}
	var data hardcover.JournalsData
	if err := r.remote.Execute(ctx, hardcover.GetJournal, vars, &data); err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, 0, len(data.ReadingJournals))
	for _, rec := range data.ReadingJournals {
		entries = append(entries, journalEntry(rec))
	}
	return entries, nil
}

func journalEntry(rec hardcover.JournalRecord) domain.JournalEntry {
	entry := domain.JournalEntry{ID: rec.ID, ActionAt: rec.ActionAt}
	if rec.Event != nil {
		entry.Event = domain.JournalEvent(*rec.Event)
	}
	if rec.Entry != nil {
		entry.Entry = *rec.Entry
	}

	var meta hardcover.JournalMetadata
	if len(rec.Metadata) > 0 && json.Unmarshal(rec.Metadata, &meta) == nil {
		entry.Position = domain.Position{
			Page:     meta.Position.Value,
			Possible: meta.Position.Possible,
			Percent:  meta.Position.Percent,
		}
	}
	return entry
}

// JournalService implements the journal commands.
type JournalService struct {
	library    IdentifierSource
	identities *IdentityResolver
	journals   *JournalReconciler
	remote     hardcover.Executor
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewJournalService creates a new journal service.
func NewJournalService(
	library IdentifierSource,
	identities *IdentityResolver,
	journals *JournalReconciler,
	remote hardcover.Executor,
	validator *validation.Validator,
	logger *slog.Logger,
) *JournalService {
	return &JournalService{
		library:    library,
		identities: identities,
		journals:   journals,
		remote:     remote,
		validator:  validator,
		logger:     logger,
	}
}

// NoteRequest is a free-form note at a reading percentage.
type NoteRequest struct {
	ContentID  string
	BookID     int     `flag:"book-id" validate:"gte=0"`
	Text       string  `flag:"text" validate:"required"`
	Percentage float64 `flag:"percentage" validate:"gte=0,lte=100"`
}

// NoteResult identifies the inserted note.
type NoteResult struct {
	BookID    int `json:"book_id"`
	EditionID int `json:"edition_id"`
	Page      int `json:"page"`
}

// InsertNote adds a note to the book's journal. Notes are always inserted,
// never matched against existing entries.
func (s *JournalService) InsertNote(ctx context.Context, req NoteRequest) (*NoteResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	identity, err := s.resolve(ctx, req.ContentID, req.BookID)
	if err != nil {
		return nil, err
	}

	page := domain.PageAtPercent(identity.Pages, req.Percentage)
	target := domain.JournalEntry{
		Event: domain.JournalNote,
		Entry: req.Text,
		Position: domain.Position{
			Page:     page,
			Possible: identity.Pages,
			Percent:  req.Percentage,
		},
	}
	if err := s.journals.insert(ctx, identity, target); err != nil {
		return nil, syncerrors.Remotef(err, "insert note for book %d, edition %d", identity.BookID, identity.EditionID)
	}

	return &NoteResult{BookID: identity.BookID, EditionID: identity.EditionID, Page: page}, nil
}

// ListJournalRequest pages through a book's journal.
type ListJournalRequest struct {
	ContentID string
	BookID    int `flag:"book-id" validate:"gte=0"`
	Limit     int `flag:"limit" validate:"gt=0,lte=100"`
	Offset    int `flag:"offset" validate:"gte=0"`
}

// JournalListing is the output of ListJournal.
type JournalListing struct {
	ReadingJournals []JournalItem `json:"reading_journals"`
}

// JournalItem is a listed journal entry. Metadata holding a review is
// replaced by the review's plain text.
type JournalItem struct {
	ID       int            `json:"id"`
	Event    *string        `json:"event"`
	Entry    *string        `json:"entry"`
	ActionAt *string        `json:"action_at"`
	Metadata jsontext.Value `json:"metadata"`
}

// ListJournal returns a page of the user's journal for the book, newest first.
func (s *JournalService) ListJournal(ctx context.Context, req ListJournalRequest) (*JournalListing, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ref, err := Reference(ctx, s.library, req.ContentID, req.BookID)
	if err != nil {
		return nil, err
	}
	userID, err := s.identities.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.identities.Lookup(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	vars := hardcover.ListJournalVars{
		UserID: userID,
		BookID: book.ID,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	var data hardcover.JournalsData
	if err := s.remote.Execute(ctx, hardcover.ListJournal, vars, &data); err != nil {
		return nil, syncerrors.Remotef(err, "list journal of book %d", book.ID)
	}

	listing := &JournalListing{ReadingJournals: make([]JournalItem, 0, len(data.ReadingJournals))}
	for _, rec := range data.ReadingJournals {
		metadata, err := decodeReviewMetadata(rec.Metadata)
		if err != nil {
			return nil, err
		}
		listing.ReadingJournals = append(listing.ReadingJournals, JournalItem{
			ID:       rec.ID,
			Event:    rec.Event,
			Entry:    rec.Entry,
			ActionAt: rec.ActionAt,
			Metadata: metadata,
		})
	}
	return listing, nil
}

// decodeReviewMetadata turns {"review": <document>, ...} into
// {"review": "<text>"}. Other metadata passes through.
func decodeReviewMetadata(raw jsontext.Value) (jsontext.Value, error) {
	if len(raw) == 0 {
		return jsontext.Value("null"), nil
	}

	var fields map[string]jsontext.Value
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw, nil
	}
	review, ok := fields["review"]
	if !ok {
		return raw, nil
	}

	text, err := slate.Decode(review)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(map[string]string{"review": strings.TrimSpace(text)})
	if err != nil {
		return nil, syncerrors.Codecf("encode review metadata: %v", err)
	}
	return out, nil
}

func (s *JournalService) resolve(ctx context.Context, contentID string, bookID int) (*Identity, error) {
	ref, err := Reference(ctx, s.library, contentID, bookID)
	if err != nil {
		return nil, err
	}
	userID, err := s.identities.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.identities.Resolve(ctx, ref, userID)
}
