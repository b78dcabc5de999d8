// FILE: pkg/errs/errors.go
// PURPOSE: Error taxonomy shared by the RAG pipeline and the OAuth flow.
// Callers branch on Kind instead of string-matching error messages.

package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindConfiguration is fatal and non-retryable (missing client secret,
	// missing redirect URI). It aborts startup or the first authorization.
	KindConfiguration Kind = "configuration"

	// KindCSRF marks an authorization callback whose state token is missing,
	// mismatched, or already consumed. Safe to restart the flow from scratch.
	KindCSRF Kind = "csrf"

	// KindReauthRequired means the credential expired and no refresh token is
	// available; the user must go through the login flow again.
	KindReauthRequired Kind = "reauth_required"

	// KindExternalService wraps failures from search, completion, conversation
	// store, or token endpoint round-trips. Propagated, never retried here.
	KindExternalService Kind = "external_service"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
