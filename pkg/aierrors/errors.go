// Package aierrors defines the turn-level error taxonomy and maps each
// class to a scripted, user-visible message. The orchestrator never
// surfaces a collaborator's raw error text to the caller.
package aierrors

import (
	"errors"
	"fmt"
)

// Class identifies one of the seven turn-level error classes.
type Class string

const (
	ClassValidation            Class = "validation"
	ClassAuthoritativeNotFound Class = "authoritative_not_found"
	ClassAuthoritativeError    Class = "authoritative_error"
	ClassRetrievalError        Class = "retrieval_error"
	ClassGenerativeError       Class = "generative_error"
	ClassPersistenceDegraded   Class = "persistence_degraded"
	ClassDisambiguationStore   Class = "disambiguation_store_error"
)

// UserMessages holds the scripted sentence shown to the caller for each
// class that is ever surfaced directly (PersistenceDegraded and
// DisambiguationStoreError are handled silently and never reach this map).
var UserMessages = map[Class]string{
	ClassAuthoritativeError: "Sorry, I couldn't reach that service right now. Please try again in a moment.",
	ClassRetrievalError:     "Our knowledge sources are temporarily unavailable, so this answer may be less complete than usual.",
	ClassGenerativeError:    "Sorry, something went wrong while generating a response. Please try again.",
}

// TurnError is a classified error carrying the user-visible message plus
// the underlying collaborator error for logging.
type TurnError struct {
	Class Class
	Cause error
}

func (e *TurnError) Error() string {
	if e.Cause == nil {
		return string(e.Class)
	}
	return fmt.Sprintf("%s: %v", e.Class, e.Cause)
}

func (e *TurnError) Unwrap() error { return e.Cause }

// New builds a classified TurnError.
func New(class Class, cause error) *TurnError {
	return &TurnError{Class: class, Cause: cause}
}

// UserMessage returns the scripted sentence for a classified error, falling
// back to a generic apology for any class not in UserMessages.
func (e *TurnError) UserMessage() string {
	if msg, ok := UserMessages[e.Class]; ok {
		return msg
	}
	return "Sorry, something went wrong. Please try again."
}

// ClassOf extracts the Class from err if it is (or wraps) a *TurnError.
func ClassOf(err error) (Class, bool) {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Class, true
	}
	return "", false
}

// IsAuthoritativeNotFound reports whether err represents an authoritative
// source replying with no matching rule/record (as opposed to an error).
func IsAuthoritativeNotFound(err error) bool {
	class, ok := ClassOf(err)
	return ok && class == ClassAuthoritativeNotFound
}

// IsRetriable reports whether the orchestrator should attempt the single
// allowed retry for this error before giving up.
func IsRetriable(err error) bool {
	var te *TurnError
	if !errors.As(err, &te) {
		return false
	}
	switch te.Class {
	case ClassAuthoritativeError, ClassRetrievalError:
		return true
	default:
		return false
	}
}
