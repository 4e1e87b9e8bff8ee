package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
	"airdrop-service/internal/metrics"
)

// ClaimConfig carries the claim-path tuning knobs.
type ClaimConfig struct {
	ExplorerTxURL string
	LeaseTTL      time.Duration
	PollInterval  time.Duration
	PollTimeout   time.Duration
	Closes        *time.Time
}

// ClaimInput is the validated input for a claim. Address ownership has
// already been proven at the boundary.
type ClaimInput struct {
	Identity      string
	TermsAccepted bool
	Destination   string
}

// ClaimUsecase drives the claim state machine:
//
//	Registered -> PendingTransfer -> Claimed
//
// The transition into PendingTransfer persists the transaction hash before
// finality is awaited; that checkpoint is what makes a crash between
// submission and confirmation recoverable without a second transfer.
type ClaimUsecase struct {
	repo     RecordRepository
	transfer TransferGateway
	lease    ClaimLease
	events   EventPublisher
	metrics  *metrics.Metrics
	cfg      ClaimConfig
}

func NewClaimUsecase(
	repo RecordRepository,
	transfer TransferGateway,
	lease ClaimLease,
	events EventPublisher,
	m *metrics.Metrics,
	cfg ClaimConfig,
) *ClaimUsecase {
	return &ClaimUsecase{
		repo:     repo,
		transfer: transfer,
		lease:    lease,
		events:   events,
		metrics:  m,
		cfg:      cfg,
	}
}

func (uc *ClaimUsecase) Claim(ctx context.Context, input ClaimInput) (*airdrop.ClaimResult, error) {
	ctx, span := tracer.Start(ctx, "Claim.Claim")
	defer span.End()

	if uc.cfg.Closes != nil && time.Now().After(*uc.cfg.Closes) {
		return nil, domain.Functional(domain.CodeAirdropClosed, "the airdrop is closed")
	}

	release, err := uc.lease.Acquire(ctx, input.Identity, uc.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, ErrLeaseHeld) {
			return nil, domain.Technical(domain.CodeTransferPending, "another claim for this identity is in progress", nil)
		}
		span.RecordError(err)
		return nil, domain.Technical(domain.CodeRecordStore, "claim lease acquisition failed", err)
	}
	defer release()

	record, err := uc.repo.FindByIdentity(ctx, input.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.Functional(domain.CodeNotRegistered, "identity is not registered")
		}
		span.RecordError(err)
		return nil, err
	}

	if record.Claimed {
		return nil, domain.Functional(domain.CodeAlreadyClaimed, "airdrop has already been claimed")
	}

	if record.PendingTransfer() {
		return nil, uc.recoverPending(ctx, record)
	}

	if !input.TermsAccepted {
		return nil, domain.Functional(domain.CodeTermsNotAccepted, "terms must be accepted")
	}

	if !record.Claimable() {
		uc.metrics.InvalidClaimableAmount.Inc()
		slog.ErrorContext(ctx, "record has no valid claimable amount",
			slog.String("identity", record.Identity),
			slog.String("recordID", record.ID),
		)
		return nil, domain.Technical(domain.CodeInvalidClaimableAmount, "record has no valid claimable amount", nil)
	}
	amount := *record.ClaimableAmount

	// From here on the flow must survive the caller going away: an HTTP
	// disconnect must not cancel an in-flight transfer or its checkpoint.
	ctx = context.WithoutCancel(ctx)

	txHash, err := uc.transfer.Initiate(ctx, input.Destination, amount)
	if err != nil {
		span.RecordError(err)
		return nil, domain.Technical(domain.CodeTransferFailure, "transfer initiation failed", err)
	}
	uc.metrics.TransfersInitiated.Inc()

	// Checkpoint: persist the hash before awaiting finality. If the process
	// dies after this write, the next claim call recovers via recoverPending
	// instead of issuing a second transfer.
	if err := uc.repo.Update(ctx, record.ID, domain.RecordPatch{ClaimTransactionHash: &txHash}); err != nil {
		slog.ErrorContext(ctx, "transfer submitted but checkpoint write failed, record needs manual reconciliation",
			slog.String("identity", record.Identity),
			slog.String("recordID", record.ID),
			slog.String("txHash", txHash),
		)
		span.RecordError(err)
		return nil, err
	}

	if err := uc.awaitFinality(ctx, txHash); err != nil {
		// The record stays in PendingTransfer; a retry re-enters through
		// recoverPending and never re-initiates.
		return nil, err
	}

	if err := uc.finalize(ctx, record, amount, txHash); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &airdrop.ClaimResult{
		ClaimedTokenAmount:     amount,
		TransactionExplorerURL: uc.cfg.ExplorerTxURL + txHash,
	}, nil
}

// recoverPending handles a record whose transfer was initiated by an
// earlier call. Whatever the outcome, this call never reports success: it
// did not originate the transfer.
func (uc *ClaimUsecase) recoverPending(ctx context.Context, record *domain.AirdropRecord) error {
	txHash := *record.ClaimTransactionHash

	final, err := uc.transfer.IsFinal(ctx, txHash)
	if err != nil {
		return err
	}
	if !final {
		return domain.Technical(domain.CodeTransferPending, "a transfer for this record is still pending", nil)
	}

	var amount float64
	if record.ClaimableAmount != nil {
		amount = *record.ClaimableAmount
	}
	if err := uc.finalize(ctx, record, amount, txHash); err != nil {
		return err
	}

	return domain.Functional(domain.CodeAlreadyClaimed, "airdrop has already been claimed")
}

// finalize marks the record claimed. The hash is already persisted.
func (uc *ClaimUsecase) finalize(ctx context.Context, record *domain.AirdropRecord, amount float64, txHash string) error {
	claimed := true
	patch := domain.RecordPatch{Claimed: &claimed, ClaimedAmount: &amount}
	if err := uc.repo.Update(ctx, record.ID, patch); err != nil {
		return err
	}

	uc.metrics.ClaimsTotal.Inc()
	publish(ctx, uc.events, airdrop.Event{
		Type:      "claimed",
		Identity:  record.Identity,
		Amount:    &amount,
		TxHash:    &txHash,
		Timestamp: time.Now().UTC(),
	})

	return nil
}

// awaitFinality polls IsFinal until confirmation or the configured timeout.
// Timing out leaves the record pending and is retryable.
func (uc *ClaimUsecase) awaitFinality(ctx context.Context, txHash string) error {
	deadline := time.Now().Add(uc.cfg.PollTimeout)
	ticker := time.NewTicker(uc.cfg.PollInterval)
	defer ticker.Stop()

	for {
		final, err := uc.transfer.IsFinal(ctx, txHash)
		if err != nil {
			return err
		}
		if final {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.Technical(domain.CodeTransferPending, "transfer did not reach finality before timeout", nil)
		}
		<-ticker.C
	}
}

// ReconcilePending sweeps records stuck in PendingTransfer and finalizes
// the ones whose transfer has since confirmed. Records whose lease is held
// by a live claim call are skipped.
func (uc *ClaimUsecase) ReconcilePending(ctx context.Context, limit int) (int, error) {
	ctx, span := tracer.Start(ctx, "Claim.ReconcilePending")
	defer span.End()

	records, err := uc.repo.ListPendingTransfers(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	finalized := 0
	for i := range records {
		record := &records[i]
		n, err := uc.reconcileRecord(ctx, record)
		if err != nil {
			slog.WarnContext(ctx, "failed to reconcile pending transfer",
				slog.String("identity", record.Identity),
				slog.String("error", err.Error()),
			)
			continue
		}
		finalized += n
	}

	return finalized, nil
}

func (uc *ClaimUsecase) reconcileRecord(ctx context.Context, record *domain.AirdropRecord) (int, error) {
	release, err := uc.lease.Acquire(ctx, record.Identity, uc.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, ErrLeaseHeld) {
			return 0, nil
		}
		return 0, err
	}
	defer release()

	final, err := uc.transfer.IsFinal(ctx, *record.ClaimTransactionHash)
	if err != nil || !final {
		return 0, err
	}

	var amount float64
	if record.ClaimableAmount != nil {
		amount = *record.ClaimableAmount
	}
	if err := uc.finalize(ctx, record, amount, *record.ClaimTransactionHash); err != nil {
		return 0, err
	}
	return 1, nil
}
