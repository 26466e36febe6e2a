// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/stats"
)

func TestBuild_TokenBudgetTable(t *testing.T) {
	cases := []struct {
		kind datatypes.Kind
		tier datatypes.Tier
		want int
	}{
		{datatypes.KindInsight, datatypes.TierFree, 300},
		{datatypes.KindInsight, datatypes.TierPremium, 500},
		{datatypes.KindChat, datatypes.TierFree, 250},
		{datatypes.KindChat, datatypes.TierPremium, 400},
		{datatypes.KindSummary, datatypes.TierFree, 100},
		{datatypes.KindSummary, datatypes.TierPremium, 150},
	}
	for _, tc := range cases {
		p := Build(BuildInput{Kind: tc.kind, Tier: tc.tier, Style: datatypes.StyleCoach})
		if p.MaxTokens != tc.want {
			t.Errorf("%s/%s: MaxTokens = %d, want %d", tc.kind, tc.tier, p.MaxTokens, tc.want)
		}
	}
}

func TestBuild_ModelClassByTier(t *testing.T) {
	free := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleCoach})
	if free.ModelClass != ModelClassStandard {
		t.Errorf("Free tier model class = %s, want standard", free.ModelClass)
	}
	premium := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierPremium, Style: datatypes.StyleCoach})
	if premium.ModelClass != ModelClassAdvanced {
		t.Errorf("Premium tier model class = %s, want advanced", premium.ModelClass)
	}
}

func TestBuild_PersonaSelection(t *testing.T) {
	coach := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleCoach})
	if !strings.Contains(coach.SystemInstructions, "pragmatic journaling coach") {
		t.Error("Coach persona missing from instructions")
	}
	reflector := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleReflector})
	if !strings.Contains(reflector.SystemInstructions, "reflective journaling companion") {
		t.Error("Reflector persona missing from instructions")
	}
}

func TestBuild_StatsClauseInterpolated(t *testing.T) {
	avg := 3.7
	snap := &stats.Snapshot{
		TotalEntries:      12,
		CurrentStreakDays: 3,
		AverageMood:       &avg,
		MoodTrend:         stats.TrendImproving,
		FavoriteWeekday:   "Monday",
		BestWritingTime:   stats.BucketEvening,
		TopWords:          []string{"project", "deadline"},
	}
	p := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleCoach, Stats: snap})

	for _, want := range []string{"12 entries", "3-day streak", "3.7/5", "improving", "Monday evening", "project, deadline"} {
		if !strings.Contains(p.SystemInstructions, want) {
			t.Errorf("Instructions missing %q:\n%s", want, p.SystemInstructions)
		}
	}
}

func TestBuild_NilStatsDegradesGracefully(t *testing.T) {
	p := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleCoach})
	if strings.Contains(p.SystemInstructions, "About the writer") {
		t.Error("Stats clause rendered with nil snapshot")
	}
	if p.SystemInstructions == "" {
		t.Error("Instructions empty without stats")
	}
}

func TestBuild_InsightRequestsStrictJSON(t *testing.T) {
	p := Build(BuildInput{Kind: datatypes.KindInsight, Tier: datatypes.TierFree, Style: datatypes.StyleCoach})
	if !strings.Contains(p.SystemInstructions, `"insight"`) ||
		!strings.Contains(p.SystemInstructions, `"followUpQuestion"`) {
		t.Error("Insight instructions do not demand the structured JSON shape")
	}
}

func TestBuild_ChatHistoryKeepsLastFiveTurns(t *testing.T) {
	var messages []datatypes.Message
	for i := 0; i < 8; i++ {
		messages = append(messages, datatypes.Message{Role: "user", Content: fmt.Sprintf("turn-%d", i)})
	}
	p := Build(BuildInput{Kind: datatypes.KindChat, Tier: datatypes.TierFree, Style: datatypes.StyleCoach, Messages: messages})

	if strings.Contains(p.SystemInstructions, "turn-2") {
		t.Error("History includes turns older than the last 5")
	}
	for i := 3; i < 8; i++ {
		if !strings.Contains(p.SystemInstructions, fmt.Sprintf("turn-%d", i)) {
			t.Errorf("History missing turn-%d", i)
		}
	}
}

func TestBuild_JournalContextTruncated(t *testing.T) {
	long := strings.Repeat("a", 1000)
	p := Build(BuildInput{Kind: datatypes.KindChat, Tier: datatypes.TierFree, Style: datatypes.StyleCoach, JournalContext: long})

	if strings.Contains(p.SystemInstructions, strings.Repeat("a", 500)) {
		t.Error("Journal context not truncated")
	}
	if !strings.Contains(p.SystemInstructions, "…") {
		t.Error("Truncation marker missing")
	}
}
