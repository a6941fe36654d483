package domain

// JournalEvent is the kind of a reading journal entry.
type JournalEvent string

// Journal events written by the sync.
const (
	JournalQuote JournalEvent = "quote"
	JournalNote  JournalEvent = "note"
)

// Bookmark is a highlight captured on the device, with its location
// already derived from word counts.
type Bookmark struct {
	Text        string
	Annotation  string
	DateCreated string
	Location    float64
}

// BookmarkSource is a bookmark as read from the device database, before its
// location is computed.
type BookmarkSource struct {
	Text        string
	Annotation  string
	DateCreated string
	WordCounts  WordCounts
}

// JournalEntry is a reading journal item on Hardcover.app.
type JournalEntry struct {
	ID       int          `json:"id"`
	Event    JournalEvent `json:"event"`
	Entry    string       `json:"entry"`
	ActionAt *string      `json:"action_at"`
	Position Position     `json:"position"`
}
