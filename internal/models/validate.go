package models

import "fmt"

// InvalidRuleError reports a rule that violates an IR invariant. It is
// always fatal to the operation that produced it; polyrc never repairs an
// invalid rule silently.
type InvalidRuleError struct {
	RuleID string // may be empty for rules not yet persisted
	Name   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	label := e.Name
	if label == "" {
		label = e.RuleID
	}
	if label == "" {
		label = "(unnamed)"
	}
	return fmt.Sprintf("invalid rule %s: %s", label, e.Reason)
}

// Validate checks the IR invariants. It has no side effects.
func Validate(r Rule) error {
	fail := func(reason string) error {
		return &InvalidRuleError{RuleID: r.ID, Name: r.Name, Reason: reason}
	}

	switch r.Scope {
	case ScopeUser, ScopeProject, ScopePath:
	default:
		return fail(fmt.Sprintf("unknown scope %q", r.Scope))
	}

	switch r.Activation {
	case ActivationAlways, ActivationGlob, ActivationOnDemand, ActivationAIDecides:
	default:
		return fail(fmt.Sprintf("unknown activation %q", r.Activation))
	}

	if r.Scope == ScopePath && len(r.Globs) == 0 {
		return fail("scope is path but globs is empty")
	}
	if r.Activation == ActivationGlob && len(r.Globs) == 0 {
		return fail("activation is glob but globs is empty")
	}
	if r.Activation == ActivationAIDecides && r.Description == "" {
		return fail("activation is ai_decides but description is empty")
	}
	for _, g := range r.Globs {
		if g == "" {
			return fail("globs contains an empty pattern")
		}
	}
	if !r.CreatedAt.IsZero() && !r.UpdatedAt.IsZero() && r.UpdatedAt.Before(r.CreatedAt) {
		return fail("updated_at precedes created_at")
	}
	return nil
}

// ValidateAll validates every rule in the set, returning the first failure.
func ValidateAll(rs RuleSet) error {
	for _, r := range rs {
		if err := Validate(r); err != nil {
			return err
		}
	}
	return nil
}
