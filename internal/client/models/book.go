// Package models defines the client-side view of the libapp domain:
// books, users, feed pages, and the persisted session.
package models

import "time"

// User is a read-only, denormalized copy of a server-side user, embedded
// in each book and in the session.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image,omitempty"`
}

// Attachment references an uploaded file by server-assigned id.
type Attachment struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Book is a single feed item. Ids are server-assigned and increase with
// creation order, so descending id equals newest-first. Books are immutable
// on the client; they are only ever removed, never edited.
type Book struct {
	ID         int64       `json:"id"`
	User       User        `json:"user"`
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// BookPage is one server page of the feed, newest-first.
// Last reports that no older page exists beyond Content.
type BookPage struct {
	Content []Book `json:"content"`
	Last    bool   `json:"last"`
	Number  int    `json:"number"`
}

// BookSubmission is the body of a book creation request. AttachmentID refers
// to a previously uploaded attachment; zero means none.
type BookSubmission struct {
	Content      string `json:"content"`
	AttachmentID int64  `json:"attachmentId,omitempty"`
}

// UserUpdate carries the editable profile fields.
type UserUpdate struct {
	DisplayName string `json:"displayName"`
	Image       string `json:"image,omitempty"`
}
