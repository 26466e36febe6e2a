// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"encoding/json"
	"strings"
)

// genericFollowUp substitutes for a salvaged final sentence that is not
// actually a question.
const genericFollowUp = "What feels most important about this right now?"

type structuredInsight struct {
	Insight          string `json:"insight"`
	FollowUpQuestion string `json:"followUpQuestion"`
}

// parseInsight expects a strict JSON object with non-empty "insight"
// and "followUpQuestion" fields. Models sometimes wrap the object in
// markdown fences or prose; only the outermost brace span is parsed.
func parseInsight(raw string) (string, string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", "", false
	}

	var parsed structuredInsight
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return "", "", false
	}
	if strings.TrimSpace(parsed.Insight) == "" || strings.TrimSpace(parsed.FollowUpQuestion) == "" {
		return "", "", false
	}
	return strings.TrimSpace(parsed.Insight), strings.TrimSpace(parsed.FollowUpQuestion), true
}

// parseFreeText accepts any non-empty provider text as-is.
func parseFreeText(raw string) (string, string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", "", false
	}
	return text, "", true
}

// salvage recovers a usable insight from provider text that failed
// structured parsing. All sentences but the last become the primary
// text; the last sentence becomes the follow-up question, replaced with
// a generic one when it lacks a question mark.
func salvage(raw string) (string, string, bool) {
	sentences := splitSentences(raw)
	if len(sentences) == 0 {
		return "", "", false
	}

	last := sentences[len(sentences)-1]
	followUp := last
	if !strings.Contains(last, "?") {
		followUp = genericFollowUp
	}

	if len(sentences) == 1 {
		return sentences[0], genericFollowUp, true
	}
	return strings.Join(sentences[:len(sentences)-1], ". "), followUp, true
}

// splitSentences breaks text on terminal punctuation, keeping question
// marks attached so salvage can detect an intended follow-up.
func splitSentences(raw string) []string {
	var sentences []string
	var current strings.Builder

	flush := func(keepMark rune) {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s == "" {
			return
		}
		if keepMark != 0 {
			s += string(keepMark)
		}
		sentences = append(sentences, s)
	}

	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case '.', '!':
			flush(0)
		case '?':
			flush('?')
		default:
			current.WriteRune(r)
		}
	}
	flush(0)
	return sentences
}
