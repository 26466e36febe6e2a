// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import "testing"

func TestParseInsight_StrictJSON(t *testing.T) {
	text, follow, ok := parseInsight(`{"insight": "A pattern.", "followUpQuestion": "And now?"}`)
	if !ok {
		t.Fatal("Parse failed on valid JSON")
	}
	if text != "A pattern." || follow != "And now?" {
		t.Errorf("Parsed (%q, %q)", text, follow)
	}
}

func TestParseInsight_MarkdownFencedJSON(t *testing.T) {
	raw := "```json\n{\"insight\": \"A pattern.\", \"followUpQuestion\": \"And now?\"}\n```"
	if _, _, ok := parseInsight(raw); !ok {
		t.Error("Parse failed on fenced JSON")
	}
}

func TestParseInsight_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no braces", "Just some prose without structure"},
		{"missing field", `{"insight": "only one field"}`},
		{"empty field", `{"insight": "", "followUpQuestion": "q?"}`},
		{"malformed", `{"insight": "unterminated`},
	}
	for _, tc := range cases {
		if _, _, ok := parseInsight(tc.raw); ok {
			t.Errorf("%s: parse succeeded, want failure", tc.name)
		}
	}
}

func TestSalvage_LastSentenceIsQuestion(t *testing.T) {
	text, follow, ok := salvage("You mention work a lot. The tone is tired. What would rest look like?")
	if !ok {
		t.Fatal("Salvage failed")
	}
	if text != "You mention work a lot. The tone is tired" {
		t.Errorf("Text = %q", text)
	}
	if follow != "What would rest look like?" {
		t.Errorf("FollowUp = %q", follow)
	}
}

func TestSalvage_GenericFollowUpWhenNoQuestion(t *testing.T) {
	_, follow, ok := salvage("First observation. Second observation. Final statement.")
	if !ok {
		t.Fatal("Salvage failed")
	}
	if follow != genericFollowUp {
		t.Errorf("FollowUp = %q, want generic substitute", follow)
	}
}

func TestSalvage_SingleSentence(t *testing.T) {
	text, follow, ok := salvage("Only one thought here")
	if !ok {
		t.Fatal("Salvage failed")
	}
	if text != "Only one thought here" {
		t.Errorf("Text = %q", text)
	}
	if follow != genericFollowUp {
		t.Errorf("FollowUp = %q, want generic substitute", follow)
	}
}

func TestSalvage_EmptyInput(t *testing.T) {
	if _, _, ok := salvage("   "); ok {
		t.Error("Salvage succeeded on whitespace input")
	}
}
