package domain

// Reconciliation records the outcome of comparing an upstream-suggested
// verdict with the verdict computed from the domain judgments.
type Reconciliation[T comparable] struct {
	// Final is always the computed verdict.
	Final T
	// Suggested is the upstream value; zero when none was supplied.
	Suggested T
	// Overridden reports a supplied suggestion that disagreed with Final.
	Overridden bool
}

// Reconcile prefers computed over any upstream suggestion. A zero-valued
// suggestion counts as absent and never produces an override.
func Reconcile[T comparable](suggested, computed T) Reconciliation[T] {
	var zero T
	return Reconciliation[T]{
		Final:      computed,
		Suggested:  suggested,
		Overridden: suggested != zero && suggested != computed,
	}
}
