// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats derives personalization signals from a user's journal
// history: writing streak, mood trend, lexical frequency, and writing
// patterns. Everything here is pure computation over the entry slice -
// no I/O, no caching, linear to n log n in the number of entries.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// Trend is the direction of recent mood relative to older history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// moodTrendThreshold is the minimum mean difference before a trend is
// reported. It is a noise filter validated against small sample sizes;
// do not tune it casually.
const moodTrendThreshold = 0.3

// TimeBucket is a coarse local-hour bucket for writing-time patterns.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"   // 05-12
	BucketAfternoon TimeBucket = "afternoon" // 12-17
	BucketEvening   TimeBucket = "evening"   // 17-21
	BucketNight     TimeBucket = "night"     // 21-05
)

// Snapshot is the derived statistics for one user, recomputed fresh on
// every request from the current entry set.
type Snapshot struct {
	TotalEntries         int
	CurrentStreakDays    int
	AverageMood          *float64
	TotalWords           int
	AverageWordsPerEntry float64
	TopWords             []string
	FavoriteWeekday      string
	BestWritingTime      TimeBucket
	MoodTrend            Trend
}

// Compute derives a Snapshot from entries. now anchors the streak walk
// to the current local calendar day; injecting it keeps the computation
// deterministic under test.
//
// Zero entries yield neutral defaults, never an error.
func Compute(entries []datatypes.Entry, now time.Time) Snapshot {
	snap := Snapshot{
		TopWords:        []string{},
		BestWritingTime: BucketNight,
		MoodTrend:       TrendStable,
	}
	if len(entries) == 0 {
		return snap
	}

	snap.TotalEntries = len(entries)
	snap.CurrentStreakDays = streak(entries, now)
	snap.AverageMood = averageMood(entries)
	snap.TotalWords = totalWords(entries)
	snap.AverageWordsPerEntry = math.Round(float64(snap.TotalWords)/float64(len(entries))*10) / 10
	snap.TopWords = topWords(entries, 3)
	snap.FavoriteWeekday = favoriteWeekday(entries)
	snap.BestWritingTime = bestWritingTime(entries)
	snap.MoodTrend = moodTrend(entries)
	return snap
}

const dayFormat = "2006-01-02"

// streak counts consecutive calendar days with at least one entry,
// ending today or yesterday. The one-day grace period tolerates a user
// journaling late at night in a different relative timezone from the
// service clock.
func streak(entries []datatypes.Entry, now time.Time) int {
	days := make(map[string]bool, len(entries))
	for _, e := range entries {
		days[e.CreatedAt.Format(dayFormat)] = true
	}

	today := now.Format(dayFormat)
	yesterday := now.AddDate(0, 0, -1).Format(dayFormat)
	var cursor time.Time
	switch {
	case days[today]:
		cursor = now
	case days[yesterday]:
		cursor = now.AddDate(0, 0, -1)
	default:
		return 0
	}

	count := 0
	for days[cursor.Format(dayFormat)] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

func averageMood(entries []datatypes.Entry) *float64 {
	sum, n := 0, 0
	for _, e := range entries {
		if e.MoodRating != nil {
			sum += *e.MoodRating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(float64(sum)/float64(n)*10) / 10
	return &avg
}

func totalWords(entries []datatypes.Entry) int {
	total := 0
	for _, e := range entries {
		total += len(strings.Fields(e.Content))
	}
	return total
}

// topWords tallies lexical frequency over all entries. Tokens are
// lowercased and stripped of punctuation; tokens of length <= 3 and
// stop words are dropped. Ties break by first-seen order so the output
// is deterministic.
func topWords(entries []datatypes.Entry, limit int) []string {
	counts := make(map[string]int)
	order := make([]string, 0, 64)

	for _, e := range entries {
		for _, raw := range strings.Fields(strings.ToLower(e.Content)) {
			word := stripPunctuation(raw)
			if len(word) <= 3 || stopWords[word] {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'' {
			return r
		}
		return -1
	}, s)
}

func favoriteWeekday(entries []datatypes.Entry) string {
	var tally [7]int
	for _, e := range entries {
		tally[e.CreatedAt.Weekday()]++
	}
	best := 0
	for d := 1; d < 7; d++ {
		if tally[d] > tally[best] {
			best = d
		}
	}
	return time.Weekday(best).String()
}

func bucketFor(hour int) TimeBucket {
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 21:
		return BucketEvening
	default:
		return BucketNight
	}
}

func bestWritingTime(entries []datatypes.Entry) TimeBucket {
	tally := make(map[TimeBucket]int, 4)
	for _, e := range entries {
		tally[bucketFor(e.CreatedAt.Hour())]++
	}
	buckets := []TimeBucket{BucketMorning, BucketAfternoon, BucketEvening, BucketNight}
	best := BucketNight
	bestCount := -1
	for _, b := range buckets {
		if tally[b] > bestCount {
			best = b
			bestCount = tally[b]
		}
	}
	return best
}

// moodTrend splits mood-bearing entries newest-first at the 25th
// percentile boundary (ceil) and compares the recent mean against the
// older mean.
func moodTrend(entries []datatypes.Entry) Trend {
	rated := make([]datatypes.Entry, 0, len(entries))
	for _, e := range entries {
		if e.MoodRating != nil {
			rated = append(rated, e)
		}
	}
	if len(rated) == 0 {
		return TrendStable
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].CreatedAt.After(rated[j].CreatedAt)
	})

	split := int(math.Ceil(float64(len(rated)) * 0.25))
	recent, older := rated[:split], rated[split:]
	if len(older) == 0 {
		return TrendStable
	}

	diff := mean(recent) - mean(older)
	switch {
	case diff > moodTrendThreshold:
		return TrendImproving
	case diff < -moodTrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(entries []datatypes.Entry) float64 {
	sum := 0
	for _, e := range entries {
		sum += *e.MoodRating
	}
	return float64(sum) / float64(len(entries))
}
