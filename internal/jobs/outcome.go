// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

// Outcome is the classification of a finished job.
type Outcome int

const (
	// OutcomeSucceeded is an exit status of 0.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed is an exit status in 1..125.
	OutcomeFailed
	// OutcomeExit255 is an exit status of exactly 255.
	OutcomeExit255
	// OutcomeFatalExit is any other exit status above 125.
	OutcomeFatalExit
	// OutcomeSignaled is termination by a signal.
	OutcomeSignaled
)

// String implements the Stringer interface for Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeExit255:
		return "exited 255"
	case OutcomeFatalExit:
		return "fatal exit"
	case OutcomeSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome stops the whole run regardless of policy.
func (o Outcome) Fatal() bool {
	return o == OutcomeExit255 || o == OutcomeFatalExit || o == OutcomeSignaled
}

// Classify maps an exit status to an outcome.
func Classify(st ExitStatus) Outcome {
	switch {
	case st.Signaled:
		return OutcomeSignaled
	case st.Code == 0:
		return OutcomeSucceeded
	case st.Code == 255:
		return OutcomeExit255
	case st.Code > 125:
		return OutcomeFatalExit
	default:
		return OutcomeFailed
	}
}
