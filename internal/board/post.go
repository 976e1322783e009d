// Package board implements the post-and-attachment lifecycle: creating, listing,
// reading, updating and deleting board posts together with their comments,
// likes and file attachments held in object storage.
package board

import (
	"io"
	"strings"
	"time"
)

// Post is a board entry. Values are immutable: NewPost builds one and Revise
// derives an edited copy. Author never changes after creation.
type Post struct {
	ID         int64
	Title      string
	Content    string
	Author     string
	InsertedAt time.Time
}

// NewPost returns an unsaved post. It fails with a *ValidationError when title
// or content is blank.
func NewPost(title, content, author string) (Post, error) {
	if err := validatePost(title, content); err != nil {
		return Post{}, err
	}
	return Post{Title: title, Content: content, Author: author}, nil
}

// Revise returns a copy of p with new title and content.
func (p Post) Revise(title, content string) Post {
	p.Title = title
	p.Content = content
	return p
}

// Validate reports whether both title and content are non-blank after trimming.
func Validate(title, content string) bool {
	return validatePost(title, content) == nil
}

func validatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title must not be blank"}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "content must not be blank"}
	}
	return nil
}

// Summary is the list projection of a post.
type Summary struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Writer           string    `json:"writer"`
	InsertedAt       time.Time `json:"insertedAt"`
	NumberOfComments int       `json:"numberOfComments"`
	NumberOfLikes    int       `json:"numberOfLikes"`
	NumberOfFiles    int       `json:"numberOfFiles"`
}

// Page is one window of summaries plus the total page count for the query.
type Page struct {
	Items      []Summary
	TotalPages int
}

// Detail is the full read projection of a post.
type Detail struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	Author           string           `json:"author"`
	Writer           string           `json:"writer"`
	InsertedAt       time.Time        `json:"insertedAt"`
	NumberOfComments int              `json:"numberOfComments"`
	NumberOfLikes    int              `json:"numberOfLikes"`
	Files            []FileDescriptor `json:"files"`
}

// Attachment binds a file name to a post. (PostID, Name) is unique.
type Attachment struct {
	PostID int64
	Name   string
}

// FileDescriptor is what readers see of an attachment.
type FileDescriptor struct {
	Name string `json:"name"`
	Path string `json:"src"`
}

// File is an uploaded file waiting to be attached.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// empty reports whether f carries nothing worth storing.
func (f *File) empty() bool {
	return f == nil || f.Size <= 0 || f.Open == nil
}
