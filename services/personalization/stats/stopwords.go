// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

// stopWords are function words, pronouns, and common conjunctions
// excluded from the top-word tally. Only words longer than 3 characters
// need listing; shorter tokens are dropped by the length filter.
var stopWords = map[string]bool{
	"that":    true,
	"this":    true,
	"with":    true,
	"from":    true,
	"have":    true,
	"having":  true,
	"been":    true,
	"being":   true,
	"were":    true,
	"will":    true,
	"would":   true,
	"could":   true,
	"should":  true,
	"about":   true,
	"there":   true,
	"their":   true,
	"theirs":  true,
	"them":    true,
	"then":    true,
	"than":    true,
	"they":    true,
	"these":   true,
	"those":   true,
	"when":    true,
	"where":   true,
	"which":   true,
	"while":   true,
	"what":    true,
	"your":    true,
	"yours":   true,
	"mine":    true,
	"ours":    true,
	"some":    true,
	"such":    true,
	"just":    true,
	"very":    true,
	"really":  true,
	"because": true,
	"into":    true,
	"over":    true,
	"under":   true,
	"again":   true,
	"also":    true,
	"only":    true,
	"even":    true,
	"still":   true,
	"much":    true,
	"more":    true,
	"most":    true,
	"other":   true,
	"another": true,
	"after":   true,
	"before":  true,
	"today":   true,
	"going":   true,
	"doing":   true,
	"don't":   true,
	"didn't":  true,
	"can't":   true,
	"won't":   true,
	"it's":    true,
	"i'm":     true,
	"i've":    true,
	"that's":  true,
}
