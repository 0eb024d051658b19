// Package models defines the catalog data model used by the bookvault CLI.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bookvault-cli/bookvault/internal/common"
)

// Status classifies a book's reading state.
type Status string

const (
	StatusUnread  Status = "unread"
	StatusReading Status = "reading"
	StatusRead    Status = "read"
)

// ParseStatus validates a status name coming from user input.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUnread:
		return StatusUnread, nil
	case StatusReading:
		return StatusReading, nil
	case StatusRead:
		return StatusRead, nil
	}
	return "", fmt.Errorf("%w: status must be one of unread, reading, read", common.ErrValidation)
}

// MaxFieldLen bounds title and author length in runes.
const MaxFieldLen = 512

// Book is a single catalog record.
//
// ID is assigned by the database and never reused, even after deletion.
// AddedAt is set once on insert and never changes. FinishedAt is non-nil
// exactly when Status is StatusRead. StartedAt is set on the first
// transition out of StatusUnread and kept from then on.
type Book struct {
	// ID is the numeric identifier assigned on insert.
	ID int64

	// Title is the book title. Required.
	Title string

	// Author is the book author. May be empty.
	Author string

	// Status is the reading state.
	Status Status

	// AddedAt is the insert time in UTC. Immutable.
	AddedAt time.Time

	// UpdatedAt is the last modification time in UTC.
	UpdatedAt time.Time

	// StartedAt is when reading began, if it has.
	StartedAt *time.Time

	// FinishedAt is when the book was finished. Present iff Status is read.
	FinishedAt *time.Time
}

// Validate checks the field constraints that must hold before a book is
// handed to the repository.
func (b *Book) Validate() error {
	if err := validateTitle(b.Title); err != nil {
		return err
	}
	if err := validateAuthor(b.Author); err != nil {
		return err
	}
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return err
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxFieldLen {
		return fmt.Errorf("%w: title exceeds %d characters", common.ErrValidation, MaxFieldLen)
	}
	return nil
}

func validateAuthor(author string) error {
	if utf8.RuneCountInString(author) > MaxFieldLen {
		return fmt.Errorf("%w: author exceeds %d characters", common.ErrValidation, MaxFieldLen)
	}
	return nil
}

// Changes describes a partial edit. Nil fields are left untouched.
type Changes struct {
	Title  *string
	Author *string
	Status *Status
}

// Empty reports whether the edit would change nothing.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Author == nil && c.Status == nil
}

// Validate checks the supplied fields against the same constraints Insert
// enforces, so an invalid edit is rejected before any transaction starts.
func (c Changes) Validate() error {
	if c.Title != nil {
		if err := validateTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Author != nil {
		if err := validateAuthor(*c.Author); err != nil {
			return err
		}
	}
	if c.Status != nil {
		if _, err := ParseStatus(string(*c.Status)); err != nil {
			return err
		}
	}
	return nil
}
