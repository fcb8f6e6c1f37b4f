// Package models defines the core data structures for users, journal entries and tags.
package models

import "time"

const (
	// DefaultTitle is assigned to entries created without an explicit title.
	DefaultTitle = "Journal Entry"
	// DefaultMood is assigned to entries saved with a blank mood.
	DefaultMood = "🙂"
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `db:"id" json:"id"`
	// Username is the login name chosen by the user.
	Username string `db:"username" json:"username"`
	// Pin is the 4-6 digit login PIN. It is stored as entered.
	Pin string `db:"pin" json:"-"`
	// CreatedAt is the registration time.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Entry is a single diary entry owned by exactly one user.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID int64 `db:"id" json:"id"`
	// UserID references the owning user.
	UserID int64 `db:"user_id" json:"user_id"`
	// Title is a short caption, DefaultTitle unless set.
	Title string `db:"title" json:"title"`
	// Content is the rich-text markup produced by the editor.
	Content string `db:"content" json:"content"`
	// PrimaryMood is a short mood token, usually an emoji.
	PrimaryMood string `db:"primary_mood" json:"primary_mood"`
	// EntryDate is when the entry is considered to have happened. It is reset on every edit.
	EntryDate time.Time `db:"entry_date" json:"entry_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	// Tags are owned by the entry and recreated on every edit.
	Tags []Tag `db:"-" json:"tags"`
}

// TagNames returns the entry's tag names in storage order.
func (e Entry) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Tag is a free-text label attached to one entry. Names are not deduplicated.
type Tag struct {
	ID      int64  `db:"id" json:"id"`
	EntryID int64  `db:"entry_id" json:"entry_id"`
	Name    string `db:"name" json:"name"`
}

// Stats aggregates a user's journaling activity.
type Stats struct {
	TotalEntries int    `json:"total_entries"`
	Streak       int    `json:"streak"`
	MemberSince  string `json:"member_since"`
}
