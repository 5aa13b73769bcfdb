package orchestrate

import (
	"errors"

	"github.com/tscholak/devbox/internal/lambda"
)

// Kind is the semantic category of a launch failure.
type Kind int

const (
	// KindUnknown covers unrecognized error codes and non-API failures.
	// Treated as fatal: an error we cannot name is not an error we can
	// assume will resolve itself by waiting.
	KindUnknown Kind = iota
	KindCapacity
	KindAuth
	KindQuota
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind are safe to retry.
// Transient capacity shortage is the only condition that resolves by
// waiting; every other kind fails on first occurrence.
func (k Kind) Retryable() bool {
	return k == KindCapacity
}

// kindByCode maps every known Lambda Cloud error code to its kind.
// Codes absent from this table classify as KindUnknown.
var kindByCode = map[string]Kind{
	lambda.CodeInsufficientCapacity:  KindCapacity,
	lambda.CodeInvalidAPIKey:         KindAuth,
	lambda.CodeAccountInactive:       KindAuth,
	lambda.CodeQuotaExceeded:         KindQuota,
	lambda.CodeInvalidParameters:     KindValidation,
	lambda.CodeInvalidAddress:        KindValidation,
	lambda.CodeFileSystemWrongRegion: KindValidation,
	lambda.CodeObjectDoesNotExist:    KindNotFound,
	lambda.CodeUnknown:               KindUnknown,
}

// ClassifiedError attaches a semantic kind and retry verdict to a remote
// failure. The original error is carried unchanged and reachable via Unwrap.
type ClassifiedError struct {
	Kind      Kind
	Retryable bool
	err       error
}

func (e *ClassifiedError) Error() string { return e.err.Error() }

func (e *ClassifiedError) Unwrap() error { return e.err }

// Classify maps a remote failure into exactly one ClassifiedError. It is a
// pure mapping: deterministic, total, and side-effect free. Errors without a
// recognized code classify as KindUnknown with Retryable=false.
func Classify(err error) *ClassifiedError {
	kind := KindUnknown
	var apiErr *lambda.APIError
	if errors.As(err, &apiErr) {
		if k, ok := kindByCode[apiErr.Code]; ok {
			kind = k
		}
	}
	return &ClassifiedError{Kind: kind, Retryable: kind.Retryable(), err: err}
}
