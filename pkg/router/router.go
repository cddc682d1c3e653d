// Package router picks the agent role for a user query using a scored
// keyword vocabulary. Deterministic and offline, no model call involved.
package router

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

type keyword struct {
	text   string // single word, or a phrase containing a space
	weight int
}

var vocab = map[string][]keyword{
	"coder": {
		{"code", 2}, {"bug", 2}, {"debug", 2}, {"compile", 2}, {"script", 2},
		{"program", 2}, {"function", 1}, {"test", 1}, {"tests", 1}, {"build", 1},
		{"python", 2}, {"golang", 2}, {"java", 2}, {"rust", 2}, {"fix", 1},
		{"implement", 2}, {"refactor", 2}, {"write a script", 3},
	},
	"file": {
		{"file", 2}, {"files", 2}, {"folder", 2}, {"directory", 2}, {"find", 1},
		{"locate", 2}, {"move", 1}, {"rename", 2}, {"copy", 1}, {"delete", 1},
		{"organize", 2}, {"zip", 1}, {"download", 1}, {"disk", 1},
		{"where is", 3}, {"look for", 2},
	},
	"browser": {
		{"web", 2}, {"online", 2}, {"internet", 2}, {"website", 2}, {"url", 2},
		{"news", 2}, {"weather", 2}, {"price", 1}, {"browse", 2},
		{"search the web", 4}, {"look up", 2}, {"google", 2}, {"wikipedia", 2},
	},
	"planner": {
		{"plan", 3}, {"project", 1}, {"steps", 2}, {"organize a", 2},
		{"and then", 2}, {"after that", 2}, {"first", 1}, {"finally", 1},
	},
}

// Router keeps the last selected role so ambiguous follow-ups stay with the
// agent already holding the conversation.
type Router struct {
	current string
	log     *zap.Logger
}

func New(log *zap.Logger) *Router {
	return &Router{
		current: "casual",
		log:     log.Named("router"),
	}
}

// Current returns the pinned role.
func (r *Router) Current() string {
	return r.current
}

// Route scores the query against each role vocabulary and pins the winner.
// Zero score everywhere means casual conversation; a tie goes to the pinned
// role when it is among the leaders.
func (r *Router) Route(query string) string {
	lowered := strings.ToLower(query)
	words := tokenize(lowered)

	best, bestScore := "casual", 0
	tied := map[string]bool{}
	for role, keys := range vocab {
		score := 0
		for _, k := range keys {
			if strings.Contains(k.text, " ") {
				if strings.Contains(lowered, k.text) {
					score += k.weight
				}
			} else if words[k.text] {
				score += k.weight
			}
		}
		switch {
		case score > bestScore:
			best, bestScore = role, score
			tied = map[string]bool{role: true}
		case score == bestScore && score > 0:
			tied[role] = true
		}
	}

	if bestScore > 0 && tied[r.current] {
		best = r.current
	}

	r.log.Info("routed", zap.String("role", best), zap.Int("score", bestScore))
	r.current = best
	return best
}

func tokenize(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[w] = true
	}
	return out
}
