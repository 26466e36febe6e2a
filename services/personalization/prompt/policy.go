// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prompt maps (request kind, tier, style) to a generation
// policy: system instructions, token budget, and model class. Pure
// string building, no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/stats"
)

// ModelClass selects the provider model family for a request.
type ModelClass string

const (
	ModelClassStandard ModelClass = "standard"
	ModelClassAdvanced ModelClass = "advanced"
)

// Policy is the assembled generation policy for one request.
type Policy struct {
	MaxTokens          int
	ModelClass         ModelClass
	SystemInstructions string
}

// BuildInput carries everything the policy composition reads.
//
// Stats may be nil when the stats computation failed; the prompt then
// omits the personalization clause rather than failing the request.
type BuildInput struct {
	Kind  datatypes.Kind
	Tier  datatypes.Tier
	Style datatypes.Style
	Stats *stats.Snapshot

	// Messages is the conversation history for chat requests. Only the
	// last maxHistoryTurns turns are rendered.
	Messages []datatypes.Message

	// JournalContext is optional journal text for chat requests,
	// truncated to maxJournalContextChars before rendering.
	JournalContext string
}

// Token ceilings are policy constants keyed by (kind, tier), not
// computed from content length.
var tokenBudgets = map[datatypes.Kind]map[datatypes.Tier]int{
	datatypes.KindInsight: {datatypes.TierFree: 300, datatypes.TierPremium: 500},
	datatypes.KindChat:    {datatypes.TierFree: 250, datatypes.TierPremium: 400},
	datatypes.KindSummary: {datatypes.TierFree: 100, datatypes.TierPremium: 150},
}

const (
	maxHistoryTurns        = 5
	maxJournalContextChars = 400
)

const coachPersona = `You are a pragmatic journaling coach. Be concise and strategic: ` +
	`identify the one pattern that matters most and suggest a concrete next step. ` +
	`Keep your entire response to a few sentences.`

const reflectorPersona = `You are a warm, reflective journaling companion. Validate what ` +
	`the writer is feeling, mirror their words back gently, and avoid prescriptive advice. ` +
	`Keep your entire response to a few sentences.`

// Build assembles the generation policy for one request.
func Build(in BuildInput) Policy {
	return Policy{
		MaxTokens:          tokenBudget(in.Kind, in.Tier),
		ModelClass:         modelClass(in.Tier),
		SystemInstructions: systemInstructions(in),
	}
}

func tokenBudget(kind datatypes.Kind, tier datatypes.Tier) int {
	if byTier, ok := tokenBudgets[kind]; ok {
		if budget, ok := byTier[tier]; ok {
			return budget
		}
	}
	return tokenBudgets[datatypes.KindInsight][datatypes.TierFree]
}

func modelClass(tier datatypes.Tier) ModelClass {
	if tier == datatypes.TierPremium {
		return ModelClassAdvanced
	}
	return ModelClassStandard
}

func systemInstructions(in BuildInput) string {
	var b strings.Builder

	switch in.Style {
	case datatypes.StyleReflector:
		b.WriteString(reflectorPersona)
	default:
		b.WriteString(coachPersona)
	}

	if clause := statsClause(in.Stats); clause != "" {
		b.WriteString("\n\n")
		b.WriteString(clause)
	}

	switch in.Kind {
	case datatypes.KindInsight:
		b.WriteString("\n\nRespond with a strict JSON object containing exactly two string fields: " +
			`"insight" and "followUpQuestion". No markdown, no surrounding text.`)
	case datatypes.KindSummary:
		b.WriteString("\n\nSummarize the journal content below in plain prose. " +
			"Capture the emotional throughline, not just the events.")
	case datatypes.KindChat:
		if ctx := journalContextClause(in.JournalContext); ctx != "" {
			b.WriteString("\n\n")
			b.WriteString(ctx)
		}
		if history := historyClause(in.Messages); history != "" {
			b.WriteString("\n\n")
			b.WriteString(history)
		}
	}

	return b.String()
}

// statsClause renders the snapshot as a compact natural-language clause
// so the model can personalize without seeing raw entry data.
func statsClause(s *stats.Snapshot) string {
	if s == nil || s.TotalEntries == 0 {
		return ""
	}

	parts := []string{
		fmt.Sprintf("they have written %d entries", s.TotalEntries),
	}
	if s.CurrentStreakDays > 0 {
		parts = append(parts, fmt.Sprintf("are on a %d-day streak", s.CurrentStreakDays))
	}
	if s.AverageMood != nil {
		parts = append(parts, fmt.Sprintf("average mood %.1f/5 (%s)", *s.AverageMood, s.MoodTrend))
	}
	if s.FavoriteWeekday != "" {
		parts = append(parts, fmt.Sprintf("usually write on %s %ss", s.FavoriteWeekday, s.BestWritingTime))
	}
	if len(s.TopWords) > 0 {
		parts = append(parts, "recurring themes: "+strings.Join(s.TopWords, ", "))
	}

	return "About the writer: " + strings.Join(parts, "; ") + "."
}

func journalContextClause(ctx string) string {
	ctx = strings.TrimSpace(ctx)
	if ctx == "" {
		return ""
	}
	return "Relevant journal context:\n" + truncate(ctx, maxJournalContextChars)
}

// historyClause renders the last maxHistoryTurns conversation turns.
func historyClause(messages []datatypes.Message) string {
	if len(messages) == 0 {
		return ""
	}
	if len(messages) > maxHistoryTurns {
		messages = messages[len(messages)-maxHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString("Recent conversation:")
	for _, m := range messages {
		b.WriteString("\n")
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// truncate cuts s to at most limit runes, appending an ellipsis when
// anything was dropped.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
