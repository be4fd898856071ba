// Package rules selects the action configured for a gesture.
package rules

import "github.com/okian/touchgest/internal/domain/model"

// Engine holds an ordered, immutable rule list. The first rule whose key
// equals the gesture wins, so more specific rules belong earlier in the list.
type Engine struct {
	rules []model.Rule
}

// New creates an engine over a copy of rules, preserving their order.
func New(rules []model.Rule) *Engine {
	cp := make([]model.Rule, len(rules))
	copy(cp, rules)
	return &Engine{rules: cp}
}

// Match returns the action of the first rule whose type, direction and finger
// count all equal g.
func (e *Engine) Match(g model.Gesture) (string, bool) {
	for _, r := range e.rules {
		if r.Key == g {
			return r.Action, true
		}
	}
	return "", false
}

// Len returns the number of rules.
func (e *Engine) Len() int { return len(e.rules) }

// Rules returns a copy of the rule list in match order.
func (e *Engine) Rules() []model.Rule {
	cp := make([]model.Rule, len(e.rules))
	copy(cp, e.rules)
	return cp
}
