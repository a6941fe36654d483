package hardcover

// Operation is a named GraphQL document.
type Operation struct {
	Name  string
	Query string
}

// bookIdentityFields selects everything identity resolution needs in one
// round trip: page counts, default editions, and the user's book with its
// latest read. $user_id must be declared by the including operation.
const bookIdentityFields = `
fragment BookIdentity on books {
  id
  pages
  default_ebook_edition { id pages }
  default_cover_edition { id pages }
  user_books(where: {user_id: {_eq: $user_id}}, limit: 1) {
    id
    status_id
    rating
    review_slate
    review_has_spoilers
    sponsored_review
    reviewed_at
    edition { id pages }
    user_book_reads(order_by: {id: desc}, limit: 1) { id progress_pages started_at }
  }
}`

const identifierMatch = `{_or: [
  {isbn_13: {_in: $identifiers}},
  {isbn_10: {_in: $identifiers}},
  {asin: {_in: $identifiers}}
]}`

const userBookPayloadFields = `
    error
    id
    user_book {
      id
      user_book_reads(order_by: {id: desc}, limit: 1) { id progress_pages started_at }
    }`

const userReadPayloadFields = `
    error
    id
    user_book_read { id progress_pages started_at }`

const journalFields = `id event entry action_at metadata`

// Operations used by the sync commands.
var (
	GetUserID = Operation{
		Name:  "GetUserId",
		Query: `query GetUserId { me { id } }`,
	}

	GetEditionsByIdentifier = Operation{
		Name: "GetEditionsByIdentifier",
		Query: `query GetEditionsByIdentifier($identifiers: [String!]!, $user_id: Int!) {
  editions(where: ` + identifierMatch + `, limit: 1) {
    book {
      ...BookIdentity
      editions(where: ` + identifierMatch + `) { id pages }
    }
  }
}` + bookIdentityFields,
	}

	GetBook = Operation{
		Name: "GetBook",
		Query: `query GetBook($book_id: Int!, $user_id: Int!) {
  books(where: {id: {_eq: $book_id}}, limit: 1) {
    ...BookIdentity
  }
}` + bookIdentityFields,
	}

	InsertUserBook = Operation{
		Name: "InsertUserBook",
		Query: `mutation InsertUserBook($object: UserBookCreateInput!) {
  insert_user_book(object: $object) {` + userBookPayloadFields + `
  }
}`,
	}

	UpdateUserBook = Operation{
		Name: "UpdateUserBook",
		Query: `mutation UpdateUserBook($id: Int!, $object: UserBookUpdateInput!) {
  update_user_book(id: $id, object: $object) {` + userBookPayloadFields + `
  }
}`,
	}

	InsertUserBookRead = Operation{
		Name: "InsertUserBookRead",
		Query: `mutation InsertUserBookRead($user_book_id: Int!, $user_book_read: DatesReadInput!) {
  insert_user_book_read(user_book_id: $user_book_id, user_book_read: $user_book_read) {` + userReadPayloadFields + `
  }
}`,
	}

	UpdateUserBookRead = Operation{
		Name: "UpdateUserBookRead",
		Query: `mutation UpdateUserBookRead($id: Int!, $object: DatesReadInput!) {
  update_user_book_read(id: $id, object: $object) {` + userReadPayloadFields + `
  }
}`,
	}

	GetJournal = Operation{
		Name: "GetJournal",
		Query: `query GetJournal($user_id: Int!, $book_id: Int!, $action_at: timestamptz!) {
  reading_journals(
    where: {user_id: {_eq: $user_id}, book_id: {_eq: $book_id}, action_at: {_eq: $action_at}}
    order_by: {id: desc}
  ) { ` + journalFields + ` }
}`,
	}

	ListJournal = Operation{
		Name: "ListJournal",
		Query: `query ListJournal($user_id: Int!, $book_id: Int!, $limit: Int!, $offset: Int!) {
  reading_journals(
    where: {user_id: {_eq: $user_id}, book_id: {_eq: $book_id}}
    order_by: {id: desc}
    limit: $limit
    offset: $offset
  ) { ` + journalFields + ` }
}`,
	}

	InsertReadingJournal = Operation{
		Name: "InsertReadingJournal",
		Query: `mutation InsertReadingJournal($object: ReadingJournalCreateType!) {
  insert_reading_journal(object: $object) {
    errors
    id
  }
}`,
	}

	UpdateReadingJournal = Operation{
		Name: "UpdateReadingJournal",
		Query: `mutation UpdateReadingJournal($id: Int!, $object: ReadingJournalUpdateType!) {
  update_reading_journal(id: $id, object: $object) {
    errors
    id
  }
}`,
	}

	SearchBooks = Operation{
		Name: "SearchBooks",
		Query: `query SearchBooks($query: String!, $per_page: Int!, $page: Int!) {
  search(query: $query, query_type: "Book", per_page: $per_page, page: $page) {
    results
  }
}`,
	}
)
