// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// Category is the coarse topic bucket the fallback classifier assigns
// to entry content.
type Category string

const (
	CategoryCareer        Category = "career"
	CategoryRelationships Category = "relationships"
	CategoryGeneral       Category = "general"
)

// Sentiment buckets the optional 1-5 mood self-report.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive" // mood >= 4
	SentimentNegative Sentiment = "negative" // mood <= 2
	SentimentNeutral  Sentiment = "neutral"
)

// Classifier buckets request content and mood for fallback template
// selection. Pluggable so the keyword heuristic can be swapped for a
// better one without touching the cascade.
type Classifier interface {
	Category(content string) Category
	Sentiment(mood *int) Sentiment
}

type keywordClassifier struct {
	career        *regexp.Regexp
	relationships *regexp.Regexp
}

// NewKeywordClassifier returns the default keyword-regex classifier.
// Career wins when both topic patterns match.
func NewKeywordClassifier() Classifier {
	return &keywordClassifier{
		career: regexp.MustCompile(`(?i)\b(work|job|boss|career|meeting|project|deadline|` +
			`interview|promotion|coworker|colleague|office|salary|client)\b`),
		relationships: regexp.MustCompile(`(?i)\b(friend|partner|family|mom|dad|mother|father|` +
			`sister|brother|relationship|marriage|wife|husband|girlfriend|boyfriend|date|lonely|love)\b`),
	}
}

func (c *keywordClassifier) Category(content string) Category {
	switch {
	case c.career.MatchString(content):
		return CategoryCareer
	case c.relationships.MatchString(content):
		return CategoryRelationships
	default:
		return CategoryGeneral
	}
}

func (c *keywordClassifier) Sentiment(mood *int) Sentiment {
	if mood == nil {
		return SentimentNeutral
	}
	switch {
	case *mood >= 4:
		return SentimentPositive
	case *mood <= 2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Template is one pre-written fallback response.
type Template struct {
	Text       string  `yaml:"text"`
	FollowUp   string  `yaml:"follow_up"`
	Confidence float64 `yaml:"confidence"`
}

// TemplateSet holds the deterministic fallback responses. Insight
// templates are keyed category -> sentiment -> tier; chat and summary
// responses do not vary by topic and are keyed sentiment -> tier.
type TemplateSet struct {
	Insight map[Category]map[Sentiment]map[datatypes.Tier]Template `yaml:"insight"`
	Chat    map[Sentiment]map[datatypes.Tier]Template              `yaml:"chat"`
	Summary map[Sentiment]map[datatypes.Tier]Template              `yaml:"summary"`
}

//go:embed templates.yaml
var templatesRaw []byte

// LoadTemplates parses the embedded fallback templates and verifies
// every lookup path the cascade can take resolves to a template. The
// fallback path has no failure mode at request time, so any gap in the
// set is a startup error.
func LoadTemplates() (*TemplateSet, error) {
	var set TemplateSet
	if err := yaml.Unmarshal(templatesRaw, &set); err != nil {
		return nil, fmt.Errorf("parsing fallback templates: %w", err)
	}

	categories := []Category{CategoryCareer, CategoryRelationships, CategoryGeneral}
	sentiments := []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
	tiers := []datatypes.Tier{datatypes.TierFree, datatypes.TierPremium}

	for _, cat := range categories {
		for _, sent := range sentiments {
			for _, tier := range tiers {
				if _, ok := set.Insight[cat][sent][tier]; !ok {
					return nil, fmt.Errorf("missing insight template for %s/%s/%s", cat, sent, tier)
				}
			}
		}
	}
	for _, sent := range sentiments {
		for _, tier := range tiers {
			if _, ok := set.Chat[sent][tier]; !ok {
				return nil, fmt.Errorf("missing chat template for %s/%s", sent, tier)
			}
			if _, ok := set.Summary[sent][tier]; !ok {
				return nil, fmt.Errorf("missing summary template for %s/%s", sent, tier)
			}
		}
	}
	return &set, nil
}

// Select returns the fallback template for a request. Lookups that
// somehow miss resolve to general/neutral/free so the path can never
// fail.
func (s *TemplateSet) Select(kind datatypes.Kind, cat Category, sent Sentiment, tier datatypes.Tier) Template {
	if !tier.Valid() {
		tier = datatypes.TierFree
	}

	switch kind {
	case datatypes.KindChat:
		if t, ok := s.Chat[sent][tier]; ok {
			return t
		}
		return s.Chat[SentimentNeutral][datatypes.TierFree]
	case datatypes.KindSummary:
		if t, ok := s.Summary[sent][tier]; ok {
			return t
		}
		return s.Summary[SentimentNeutral][datatypes.TierFree]
	default:
		if t, ok := s.Insight[cat][sent][tier]; ok {
			return t
		}
		return s.Insight[CategoryGeneral][SentimentNeutral][datatypes.TierFree]
	}
}

// classifierInput gathers the text a classifier sees for a request.
func classifierInput(req Request) string {
	if req.Kind != datatypes.KindChat {
		return req.Content
	}
	var parts []string
	for _, m := range req.Messages {
		parts = append(parts, m.Content)
	}
	if req.JournalContext != "" {
		parts = append(parts, req.JournalContext)
	}
	return strings.Join(parts, "\n")
}
