package liquefaction

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FailureKind classifies why a safety factor could not be computed.
type FailureKind int

const (
	InvalidInput    FailureKind = iota + 1 // missing or non-finite input
	DomainError                            // input outside the domain of a formula
	NumericOverflow                        // a computed value is NaN or infinite
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDomain       = errors.New("domain error")
	ErrNonFinite    = errors.New("non-finite value")
)

func (k FailureKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case DomainError:
		return "domain_error"
	case NumericOverflow:
		return "numeric_overflow"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k FailureKind) sentinel() error {
	switch k {
	case InvalidInput:
		return ErrInvalidInput
	case DomainError:
		return ErrDomain
	default:
		return ErrNonFinite
	}
}

// ComputeError records the step of the procedure that failed.
type ComputeError struct {
	Kind   FailureKind
	Step   string // rd, CSR, MSF, K_sigma, CRR_7.5, CRR_adj, FS, or an input key
	Detail string
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind.sentinel(), e.Step, e.Detail)
}

// Unwrap exposes the sentinel for the failure kind.
func (e *ComputeError) Unwrap() error {
	return e.Kind.sentinel()
}

// MarshalJSON renders the error for API responses.
func (e *ComputeError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    FailureKind `json:"kind"`
		Step    string      `json:"step"`
		Message string      `json:"message"`
	}{e.Kind, e.Step, e.Error()})
}

func failf(kind FailureKind, step, format string, args ...any) *ComputeError {
	return &ComputeError{Kind: kind, Step: step, Detail: fmt.Sprintf(format, args...)}
}
