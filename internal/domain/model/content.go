// Package model contains the domain entities passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrContentNotFound is returned by content sources for unknown items.
var ErrContentNotFound = errors.New("content not found")

// ContentKind distinguishes documents from calendar events.
type ContentKind string

const (
	KindDocument ContentKind = "document"
	KindEvent    ContentKind = "event"
)

// ContentKinds lists every known kind in display order.
func ContentKinds() []ContentKind { return []ContentKind{KindDocument, KindEvent} }

// ParseContentKind accepts "document"/"doc" and "event" in any case.
func ParseContentKind(s string) (ContentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "documents":
		return KindDocument, nil
	case "event", "events":
		return KindEvent, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// ContentStatus is the lifecycle state owned by the content source.
type ContentStatus string

const (
	StatusActive   ContentStatus = "active"
	StatusArchived ContentStatus = "archived"
)

// ContentRef identifies a content item across kinds.
type ContentRef struct {
	Kind ContentKind `json:"kind" validate:"required,oneof=document event"`
	ID   string      `json:"id" validate:"required,max=128,printascii,nospace"`
}

func (r ContentRef) String() string { return string(r.Kind) + ":" + r.ID }

// Less orders refs by kind, then by id length and value so numeric ids sort
// naturally.
func (r ContentRef) Less(o ContentRef) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	if len(r.ID) != len(o.ID) {
		return len(r.ID) < len(o.ID)
	}
	return r.ID < o.ID
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("nospace", noSpace); err != nil {
			panic(err)
		}
	})
	return validate
}

// noSpace rejects any whitespace in a string field.
func noSpace(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// Validate checks that the ref names a known kind and a well-formed id.
func (r ContentRef) Validate() error {
	return Validator().Struct(r)
}

// ContentItem is a document or event as exposed by the content source.
// Text is title, description and tags concatenated.
type ContentItem struct {
	ID        string        `json:"id"`
	Kind      ContentKind   `json:"kind"`
	Title     string        `json:"title"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
	Status    ContentStatus `json:"status"`
}

// Ref returns the item's reference.
func (c ContentItem) Ref() ContentRef { return ContentRef{Kind: c.Kind, ID: c.ID} }

// Active reports whether the item takes part in analysis.
func (c ContentItem) Active() bool { return c.Status == StatusActive }

// ComposeText joins the non-empty parts with single spaces.
func ComposeText(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
