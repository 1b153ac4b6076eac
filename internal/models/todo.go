package models

import (
	"time"
)

// DateAddedLayout matches the ISO-8601 form used for dateAdded,
// e.g. 2024-05-01T10:00:00.000Z.
const DateAddedLayout = "2006-01-02T15:04:05.000Z07:00"

// Todo represents a todo item
type Todo struct {
	ID          string `firestore:"-" json:"id"`
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	DateAdded   string `firestore:"dateAdded" json:"dateAdded"`
	Completed   bool   `firestore:"completed" json:"completed"`
	OwnerID     string `firestore:"ownerId" json:"ownerId"`
}

// TodoUpdate holds the only fields an edit may change.
type TodoUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FormatDateAdded renders t the way dateAdded is stored.
func FormatDateAdded(t time.Time) string {
	return t.UTC().Format(DateAddedLayout)
}

// AddedAt parses DateAdded. Unparseable values yield the zero time.
func (t Todo) AddedAt() time.Time {
	ts, err := time.Parse(time.RFC3339, t.DateAdded)
	if err != nil {
		return time.Time{}
	}
	return ts
}
