package model

import "github.com/google/uuid"

// Item is the domain model for a todo entry.
// Due is kept as the raw local-time string the user gave; an empty string means no deadline.
type Item struct {
	ID   uuid.UUID `json:"-"`
	Text string    `json:"text"`
	Done bool      `json:"done"`
	Due  string    `json:"due"`
}

// HasDue reports whether the item carries a parseable deadline.
func (it Item) HasDue() bool {
	_, ok := ParseDue(it.Due)
	return ok
}
