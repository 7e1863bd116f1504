// Package providers defines the outbound boundary to external general-ledger
// APIs. Concrete clients live in subpackages; the export pipeline depends
// only on the LedgerProvider interface.
package providers

import (
	"context"
	"fmt"

	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Receipt captures the outcome of one journal POST. It is non-nil whenever an
// HTTP response was received, including rejections, so callers can persist
// status and raw body for provenance.
type Receipt struct {
	ExternalID string
	HTTPStatus int
	RawBody    string
}

// PostOptions carries optional provider-side dimensions for a posting
type PostOptions struct {
	ClassID    string
	LocationID string
}

// LedgerProvider posts one fully mapped journal per call. Every line's
// account must already be resolved to an external id.
type LedgerProvider interface {
	Name() shared.Provider
	PostJournal(ctx context.Context, cred *credential.Credential, j *journal.Journal, opts PostOptions) (*Receipt, error)
}

// RejectedError indicates a non-2xx response from the external ledger.
// Per-journal: it never aborts the remaining journals in a batch.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("provider rejected journal entry: status %d", e.StatusCode)
}

// Is implements the errors.Is interface for RejectedError
func (e RejectedError) Is(target error) bool {
	t, ok := target.(RejectedError)
	if !ok {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// TimeoutError indicates a network call exceeded its deadline, distinct from
// a provider-rejected request
type TimeoutError struct {
	Op string
}

func (e TimeoutError) Error() string {
	return "provider call timed out: " + e.Op
}

// Is implements the errors.Is interface for TimeoutError
func (e TimeoutError) Is(target error) bool {
	_, ok := target.(TimeoutError)
	return ok
}
