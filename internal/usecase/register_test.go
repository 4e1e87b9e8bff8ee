package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
)

func testRewards() RewardSchedule {
	return RewardSchedule{
		{MinXPPoints: 50, TokenAmount: 100},
		{MinXPPoints: 200, TokenAmount: 250},
	}
}

func newRegisterUsecase(repo *fakeRepo, events *fakeEvents) *RegisterUsecase {
	evaluator := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())
	return NewRegisterUsecase(repo, evaluator, testRewards(), nil, events, newTestMetrics())
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Identity: "did:vda:test:0x1",
		Proofs: []airdrop.ActivityProof{
			completedProof("create-identity", dateUTC(2024, time.February, 1)),
		},
		Country:       "France",
		TermsAccepted: true,
	}
}

func TestRegisterCreatesRecord(t *testing.T) {
	repo := newFakeRepo()
	events := &fakeEvents{}
	uc := newRegisterUsecase(repo, events)

	if err := uc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}

	record := repo.get("did:vda:test:0x1")
	if record == nil {
		t.Fatalf("expected a record to be created")
	}
	if record.ID == "" {
		t.Fatalf("expected the store to assign an id")
	}
	if record.TotalXPPoints != 100 || record.XPPointsBeforeCutoff != 100 {
		t.Fatalf("expected 100/100, got %d/%d", record.TotalXPPoints, record.XPPointsBeforeCutoff)
	}
	if record.ClaimableAmount == nil || *record.ClaimableAmount != 100 {
		t.Fatalf("expected claimable amount 100, got %v", record.ClaimableAmount)
	}
	if record.Claimed {
		t.Fatalf("new record must not be claimed")
	}
	if len(events.byType("registered")) != 1 {
		t.Fatalf("expected one registered event")
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	repo := newFakeRepo()
	uc := newRegisterUsecase(repo, nil)

	if err := uc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := uc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected AlreadyRegistered, got %v", err)
	}
}

func TestRegisterConcurrentSameIdentity(t *testing.T) {
	repo := newFakeRepo()
	uc := newRegisterUsecase(repo, nil)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = uc.Register(context.Background(), validRegisterInput())
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyRegistered):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one success, got %d", succeeded)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.records))
	}
}

func TestRegisterTermsNotAccepted(t *testing.T) {
	uc := newRegisterUsecase(newFakeRepo(), nil)

	input := validRegisterInput()
	input.TermsAccepted = false

	err := uc.Register(context.Background(), input)
	if !errors.Is(err, domain.ErrTermsNotAccepted) {
		t.Fatalf("expected TermsNotAccepted, got %v", err)
	}
}

func TestRegisterAfterClose(t *testing.T) {
	repo := newFakeRepo()
	evaluator := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())
	closed := time.Now().Add(-time.Hour)
	uc := NewRegisterUsecase(repo, evaluator, testRewards(), &closed, nil, newTestMetrics())

	err := uc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, domain.ErrAirdropClosed) {
		t.Fatalf("expected AirdropClosed, got %v", err)
	}
}

func TestRegisterPropagatesEligibilityFailure(t *testing.T) {
	uc := newRegisterUsecase(newFakeRepo(), nil)

	input := validRegisterInput()
	input.Proofs = []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.April, 2)),
	}

	err := uc.Register(context.Background(), input)
	if !errors.Is(err, domain.ErrNotEnoughXPPoints) {
		t.Fatalf("expected NotEnoughXPPoints, got %v", err)
	}
}

func TestRewardScheduleSelectsHighestTier(t *testing.T) {
	rewards := testRewards()

	amount := rewards.AmountFor(domain.EligibilityResult{XPPointsBeforeCutoff: 250})
	if amount == nil || *amount != 250 {
		t.Fatalf("expected 250 for the top tier, got %v", amount)
	}

	amount = rewards.AmountFor(domain.EligibilityResult{XPPointsBeforeCutoff: 60})
	if amount == nil || *amount != 100 {
		t.Fatalf("expected 100 for the base tier, got %v", amount)
	}

	if amount := rewards.AmountFor(domain.EligibilityResult{XPPointsBeforeCutoff: 10}); amount != nil {
		t.Fatalf("expected no reward below all tiers, got %v", amount)
	}
}

func TestRegisterWithoutRewardStillCreatesRecord(t *testing.T) {
	repo := newFakeRepo()
	evaluator := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())
	// Schedule that never grants anything.
	uc := NewRegisterUsecase(repo, evaluator, RewardSchedule{{MinXPPoints: 1000, TokenAmount: 500}}, nil, nil, newTestMetrics())

	if err := uc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}

	record := repo.get("did:vda:test:0x1")
	if record == nil {
		t.Fatalf("expected a record")
	}
	if record.ClaimableAmount != nil {
		t.Fatalf("expected no claimable amount, got %v", *record.ClaimableAmount)
	}
}
