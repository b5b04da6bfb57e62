package model

import (
	"errors"
	"fmt"
	"time"
)

// ShapeError reports a record that does not match the expected wire shape.
type ShapeError struct {
	Kind    string // "post", "user", "notification", "draft"
	ID      string // record id, empty when the id itself is missing
	Field   string
	Message string
}

func (e *ShapeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s %q: %s: %s", e.Kind, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Kind, e.Field, e.Message)
}

// IsShapeError returns true if err wraps a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// Validate checks the post carries an id and an RFC 3339 date.
func (p Post) Validate() error {
	if p.ID == "" {
		return &ShapeError{Kind: "post", Field: "id", Message: "is required"}
	}
	if err := validateDate(p.Date); err != nil {
		return &ShapeError{Kind: "post", ID: p.ID, Field: "date", Message: err.Error()}
	}
	for name, n := range p.Reactions {
		if !name.Valid() {
			return &ShapeError{Kind: "post", ID: p.ID, Field: "reactions", Message: fmt.Sprintf("unknown reaction %q", name)}
		}
		if n < 0 {
			return &ShapeError{Kind: "post", ID: p.ID, Field: "reactions", Message: fmt.Sprintf("negative count for %q", name)}
		}
	}
	return nil
}

// Validate checks the user carries an id.
func (u User) Validate() error {
	if u.ID == "" {
		return &ShapeError{Kind: "user", Field: "id", Message: "is required"}
	}
	return nil
}

// Validate checks the notification carries an id and an RFC 3339 date.
func (n Notification) Validate() error {
	if n.ID == "" {
		return &ShapeError{Kind: "notification", Field: "id", Message: "is required"}
	}
	if err := validateDate(n.Date); err != nil {
		return &ShapeError{Kind: "notification", ID: n.ID, Field: "date", Message: err.Error()}
	}
	return nil
}

// Validate checks that every draft field is filled in.
func (d Draft) Validate() error {
	switch {
	case d.Title == "":
		return &ShapeError{Kind: "draft", Field: "title", Message: "is required"}
	case d.Content == "":
		return &ShapeError{Kind: "draft", Field: "content", Message: "is required"}
	case d.User == "":
		return &ShapeError{Kind: "draft", Field: "user", Message: "is required"}
	}
	return nil
}

// ValidateAll validates every record and returns the first failure.
func ValidateAll[T interface{ Validate() error }](records []T) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func validateDate(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		return fmt.Errorf("not an RFC 3339 timestamp: %q", s)
	}
	return nil
}
