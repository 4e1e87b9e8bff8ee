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

// RewardTier grants TokenAmount to records with at least MinXPPoints earned
// before the cutoff. The highest matching tier wins.
type RewardTier struct {
	MinXPPoints int
	TokenAmount float64
}

// RewardSchedule is the business rule mapping eligibility results to a
// claimable token amount.
type RewardSchedule []RewardTier

// AmountFor returns nil when no tier matches or the matched amount is not
// positive; such registrations still produce a record, but it can never be
// claimed.
func (s RewardSchedule) AmountFor(result domain.EligibilityResult) *float64 {
	best := -1
	for i, tier := range s {
		if result.XPPointsBeforeCutoff < tier.MinXPPoints {
			continue
		}
		if best == -1 || tier.MinXPPoints > s[best].MinXPPoints {
			best = i
		}
	}
	if best == -1 || s[best].TokenAmount <= 0 {
		return nil
	}
	amount := s[best].TokenAmount
	return &amount
}

// RegisterInput is the validated input for a registration.
type RegisterInput struct {
	Identity      string
	Proofs        []airdrop.ActivityProof
	Country       string
	RequesterIP   string
	TermsAccepted bool
}

// RegisterUsecase creates at most one AirdropRecord per identity.
type RegisterUsecase struct {
	repo        RecordRepository
	eligibility *EligibilityEvaluator
	rewards     RewardSchedule
	closes      *time.Time
	events      EventPublisher
	metrics     *metrics.Metrics
}

func NewRegisterUsecase(
	repo RecordRepository,
	eligibility *EligibilityEvaluator,
	rewards RewardSchedule,
	closes *time.Time,
	events EventPublisher,
	m *metrics.Metrics,
) *RegisterUsecase {
	return &RegisterUsecase{
		repo:        repo,
		eligibility: eligibility,
		rewards:     rewards,
		closes:      closes,
		events:      events,
		metrics:     m,
	}
}

func (uc *RegisterUsecase) Register(ctx context.Context, input RegisterInput) error {
	ctx, span := tracer.Start(ctx, "Register.Register")
	defer span.End()

	if uc.closes != nil && time.Now().After(*uc.closes) {
		return domain.Functional(domain.CodeAirdropClosed, "the airdrop is closed")
	}

	_, err := uc.repo.FindByIdentity(ctx, input.Identity)
	switch {
	case err == nil:
		return domain.Functional(domain.CodeAlreadyRegistered, "identity is already registered")
	case !errors.Is(err, domain.ErrRecordNotFound):
		span.RecordError(err)
		return err
	}

	if !input.TermsAccepted {
		return domain.Functional(domain.CodeTermsNotAccepted, "terms must be accepted")
	}

	result, err := uc.eligibility.Evaluate(ctx, input.Identity, input.Proofs, input.Country, input.RequesterIP)
	if err != nil {
		return err
	}

	record := &domain.AirdropRecord{
		Identity:             input.Identity,
		Country:              input.Country,
		TermsAccepted:        true,
		TotalXPPoints:        result.TotalXPPoints,
		XPPointsBeforeCutoff: result.XPPointsBeforeCutoff,
		ClaimableAmount:      uc.rewards.AmountFor(result),
	}

	// InsertIfAbsent closes the window between the lookup above and this
	// write: a concurrent registration for the same identity loses here.
	if err := uc.repo.InsertIfAbsent(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrAlreadyRegistered) {
			span.RecordError(err)
		}
		return err
	}

	uc.metrics.RegistrationsTotal.Inc()
	publish(ctx, uc.events, airdrop.Event{
		Type:      "registered",
		Identity:  input.Identity,
		Timestamp: time.Now().UTC(),
	})

	return nil
}

func publish(ctx context.Context, events EventPublisher, event airdrop.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}
