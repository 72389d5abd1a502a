package database

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotFoundError reports that the target of an update, delete or unique
// lookup does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// ValidationError reports that entity data failed schema constraints.
// Retrying cannot help, so the Executor surfaces it immediately.
type ValidationError struct {
	Entity string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s validation failed: %s: %v", e.Entity, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError reports a domain-level conflict such as an appointment
// that is already booked.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// ConnectionError reports that the store connection could not be
// established or used. The Executor retries these.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransactionAbortError reports that a step inside a Coordinator run
// failed and all writes in that session were rolled back. The
// triggering error is reachable through Unwrap, so callers can still
// classify it.
type TransactionAbortError struct {
	Err error
}

func (e *TransactionAbortError) Error() string {
	return fmt.Sprintf("transaction aborted: %v", e.Err)
}

func (e *TransactionAbortError) Unwrap() error { return e.Err }

// InvalidIDError reports an identifier that cannot be interpreted as a
// store-native ObjectID.
type InvalidIDError struct {
	Raw string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q", e.Raw)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsConnection(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

func IsInvalidID(err error) bool {
	var e *InvalidIDError
	return errors.As(err, &e)
}

// ParseID interprets a raw string as a store-native ObjectID. Every
// repository method goes through this instead of ad hoc conversion.
func ParseID(raw string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &InvalidIDError{Raw: raw}
	}
	return oid, nil
}

// documentValidationFailure is the server code for schema validation
// rejections.
const documentValidationFailure = 121

// Classify converts a store-native error into the normalized taxonomy.
// Errors that are already classified pass through unchanged.
func Classify(entity, id string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var ve *ValidationError
	var ce *ConflictError
	var conn *ConnectionError
	var inv *InvalidIDError
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &ce) ||
		errors.As(err, &conn) || errors.As(err, &inv) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	if mongo.IsDuplicateKeyError(err) {
		return &ConflictError{Reason: fmt.Sprintf("%s already exists", entity)}
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorCode(documentValidationFailure) {
		return &ValidationError{Entity: entity, Reason: "document failed validation", Err: err}
	}
	if isConnectionShaped(err) {
		return &ConnectionError{Op: entity, Err: err}
	}
	return err
}

// isConnectionShaped reports whether an error looks like a transient
// connectivity failure (network error, timeout, server selection).
func isConnectionShaped(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "server selection") ||
		strings.Contains(msg, "buffering timed out") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

// IsRetryable reports whether the Executor should spend retry budget on
// this error. Only connection-shaped failures qualify; not-found,
// validation and conflict outcomes cannot change on retry.
func IsRetryable(err error) bool {
	if IsNotFound(err) || IsValidation(err) || IsConflict(err) || IsInvalidID(err) {
		return false
	}
	if IsConnection(err) {
		return true
	}
	return isConnectionShaped(err)
}

// needsReconnect reports whether the failure indicates a stale or stuck
// connection that should be torn down before the next attempt.
func needsReconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "server selection") ||
		strings.Contains(msg, "buffering timed out")
}
