package usecase

import (
	"context"
	"errors"
	"time"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
)

// RecordRepository is the keyed store holding one AirdropRecord per
// identity. The store offers no transactions; InsertIfAbsent is the only
// primitive allowed to create records and must be conditional on identity.
type RecordRepository interface {
	// FindByIdentity returns domain.ErrRecordNotFound when no record exists.
	FindByIdentity(ctx context.Context, identity string) (*domain.AirdropRecord, error)
	// InsertIfAbsent persists a new record, assigning its ID. It returns
	// domain.ErrAlreadyRegistered when a record for the identity exists.
	InsertIfAbsent(ctx context.Context, record *domain.AirdropRecord) error
	Update(ctx context.Context, id string, patch domain.RecordPatch) error
	// ListPendingTransfers returns records with a transaction hash set but
	// claimed=false, for background reconciliation.
	ListPendingTransfers(ctx context.Context, limit int) ([]domain.AirdropRecord, error)
}

// TransferGateway submits on-chain token transfers and reports finality.
type TransferGateway interface {
	// Initiate submits a transfer and returns its transaction hash as soon
	// as the transaction is accepted by the node, before finality.
	Initiate(ctx context.Context, destination string, amount float64) (string, error)
	// IsFinal reports whether txHash is irreversibly confirmed. A known
	// reverted transaction yields a domain.ErrTransferFailure error.
	// Polling the same hash repeatedly is safe and never resubmits.
	IsFinal(ctx context.Context, txHash string) (bool, error)
}

// IdentityGateway verifies activity proofs against the identity network.
// Verification failure and network failure are both reported as false; a
// single unreachable proof must not abort an evaluation.
type IdentityGateway interface {
	VerifyProof(ctx context.Context, proof airdrop.ActivityProof, identity string) bool
}

// GeolocationGateway resolves a requester IP to a country name. ok is false
// when the lookup is unavailable or inconclusive.
type GeolocationGateway interface {
	CountryForIP(ctx context.Context, ip string) (country string, ok bool)
}

// ErrLeaseHeld is returned by ClaimLease.Acquire when another holder owns
// the identity's lease.
var ErrLeaseHeld = errors.New("lease already held")

// ClaimLease serializes read-then-write sequences per identity. The TTL
// must exceed the worst-case external-call latency of a claim.
type ClaimLease interface {
	Acquire(ctx context.Context, identity string, ttl time.Duration) (release func(), err error)
}

// EventPublisher fans record state changes out to the realtime feed.
// Publishing is best-effort; coordinators log failures and move on.
type EventPublisher interface {
	Publish(ctx context.Context, event airdrop.Event) error
}
