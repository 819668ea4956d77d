package classify

import "fmt"

// PolicyMode selects how an Indeterminate reading is resolved.
type PolicyMode string

const (
	// ModeRetry re-reads the sensor up to MaxRetries times, then falls back to Traversable.
	ModeRetry PolicyMode = "retry"
	// ModeTraversable accepts an Indeterminate reading as floor immediately.
	ModeTraversable PolicyMode = "traversable"
	// ModeObstacle treats an Indeterminate reading as an obstacle immediately.
	ModeObstacle PolicyMode = "obstacle"
)

// DefaultMaxRetries is the number of extra reads taken in ModeRetry.
const DefaultMaxRetries = 3

// IndeterminatePolicy decides what to do with an unclassifiable reading.
type IndeterminatePolicy struct {
	Mode       PolicyMode
	MaxRetries int
}

// DefaultPolicy retries three times before accepting the cell as floor.
func DefaultPolicy() IndeterminatePolicy {
	return IndeterminatePolicy{Mode: ModeRetry, MaxRetries: DefaultMaxRetries}
}

// Validate checks the mode and retry count.
func (p IndeterminatePolicy) Validate() error {
	switch p.Mode {
	case ModeRetry, ModeTraversable, ModeObstacle:
	default:
		return fmt.Errorf("invalid indeterminate policy %q: use retry, traversable or obstacle", p.Mode)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("indeterminate retries must be >= 0, got %d", p.MaxRetries)
	}
	return nil
}

// Resolution is the outcome of applying the policy to one reading.
type Resolution struct {
	Retry   bool    // read the sensor again
	Verdict Verdict // final verdict when Retry is false
}

// Resolve applies the policy to verdict v observed on the given attempt
// (0 for the first read). Determinate verdicts pass through unchanged.
func (p IndeterminatePolicy) Resolve(v Verdict, attempt int) Resolution {
	if v != Indeterminate {
		return Resolution{Verdict: v}
	}
	switch p.Mode {
	case ModeObstacle:
		return Resolution{Verdict: Obstacle}
	case ModeTraversable:
		return Resolution{Verdict: Traversable}
	}
	if attempt < p.MaxRetries {
		return Resolution{Retry: true}
	}
	return Resolution{Verdict: Traversable}
}
