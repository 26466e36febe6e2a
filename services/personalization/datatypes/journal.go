// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the shared data model for the personalization
// service: users, journal entries, and the generation result envelope.
//
// User and Entry records are owned by the external record store; this
// service reads them and never mutates them.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// recordValidate checks store-bound records. HTTP request types use gin
// binding tags instead; this instance covers writes that never pass
// through the HTTP layer.
var recordValidate = validator.New()

// Tier is the subscription tier of a user.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// Style selects the personality voice used when building prompts.
type Style string

const (
	// StyleCoach is concise and strategic.
	StyleCoach Style = "coach"

	// StyleReflector is reflective and validating.
	StyleReflector Style = "reflector"
)

// User is the read-only projection of an account record.
// Mutations happen in the external account/subscription system.
type User struct {
	ID    string `json:"id" validate:"required"`
	Tier  Tier   `json:"tier" validate:"required,oneof=free premium"`
	Style Style  `json:"style" validate:"required,oneof=coach reflector"`
}

// Validate checks the record before it is persisted.
func (u *User) Validate() error {
	return recordValidate.Struct(u)
}

// Entry is a single journal entry as fetched from the record store.
// Immutable once fetched. MoodRating is nil when the user skipped the
// mood prompt.
type Entry struct {
	ID         string    `json:"id" validate:"required"`
	OwnerID    string    `json:"owner_id" validate:"required"`
	Content    string    `json:"content" validate:"required"`
	MoodRating *int      `json:"mood_rating,omitempty" validate:"omitempty,min=1,max=5"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the record before it is persisted.
func (e *Entry) Validate() error {
	return recordValidate.Struct(e)
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}
