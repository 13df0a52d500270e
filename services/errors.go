package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports every invalid or missing field at once so the
// caller can render the full set on a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PreconditionError means the operation arrived before a required prior
// state, e.g. a payment order before the fee was assigned. Reason is
// written to be shown to the applicant as-is.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// InvalidStateError means the operation targeted a terminal or
// incompatible state, e.g. reviewing a rejected applicant.
type InvalidStateError struct {
	Op     string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %q", e.Op, e.Status)
}

// SignatureError is a failed payment authenticity check. It is treated
// as a security event and logged apart from ordinary validation noise.
type SignatureError struct {
	OrderRef string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("payment signature mismatch for order %s", e.OrderRef)
}

// InvariantViolation means an internal consistency rule would break,
// e.g. processing a reward before enrollment. Never downgraded.
type InvariantViolation struct {
	Rule string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Rule
}
