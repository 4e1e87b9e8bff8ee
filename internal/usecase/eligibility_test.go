package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
)

func testParams() EligibilityParams {
	return EligibilityParams{
		MinXPPoints:      50,
		Cutoff:           dateUTC(2024, time.March, 21),
		BlockedCountries: domain.DefaultBlockedCountries,
		ActivityXPPoints: map[string]int{
			"create-identity": 100,
			"update-profile":  50,
			"refer-friend":    100,
		},
	}
}

func completedProof(id string, completion time.Time) airdrop.ActivityProof {
	return airdrop.ActivityProof{
		ID:             id,
		Status:         airdrop.ActivityStatusCompleted,
		CompletionDate: timePtr(completion),
		Signature:      "0xsig",
	}
}

func TestEvaluateEligibleBeforeCutoff(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.February, 1)),
	}

	result, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "")
	if err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}
	if result.TotalXPPoints != 100 || result.XPPointsBeforeCutoff != 100 {
		t.Fatalf("expected 100/100, got %d/%d", result.TotalXPPoints, result.XPPointsBeforeCutoff)
	}
}

func TestEvaluateCompletionAfterCutoff(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.April, 2)),
	}

	_, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "")
	if !errors.Is(err, domain.ErrNotEnoughXPPoints) {
		t.Fatalf("expected NotEnoughXPPoints, got %v", err)
	}
}

func TestEvaluateCutoffBoundaryIsExclusive(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	// Completed exactly on the cutoff date: counts towards the total but
	// not towards the before-cutoff sub-total.
	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", time.Date(2024, time.March, 21, 10, 30, 0, 0, time.UTC)),
	}

	_, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "")
	if !errors.Is(err, domain.ErrNotEnoughXPPoints) {
		t.Fatalf("expected NotEnoughXPPoints for on-cutoff completion, got %v", err)
	}
}

func TestEvaluateOrderIndependent(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.January, 5)),
		completedProof("update-profile", dateUTC(2024, time.April, 1)),
		completedProof("refer-friend", dateUTC(2024, time.March, 20)),
	}
	reversed := []airdrop.ActivityProof{proofs[2], proofs[1], proofs[0]}

	a, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Evaluate(context.Background(), "did:vda:test:0x1", reversed, "France", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Fatalf("expected identical totals, got %+v vs %+v", a, b)
	}
	if a.TotalXPPoints != 250 || a.XPPointsBeforeCutoff != 200 {
		t.Fatalf("expected 250/200, got %d/%d", a.TotalXPPoints, a.XPPointsBeforeCutoff)
	}
}

func TestEvaluateBlockedDeclaredCountry(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.February, 1)),
	}

	_, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "North Korea", "")
	if !errors.Is(err, domain.ErrUnauthorizedCountry) {
		t.Fatalf("expected UnauthorizedCountry, got %v", err)
	}
}

func TestEvaluateBlockedObservedCountry(t *testing.T) {
	geo := &fakeGeo{country: "Iran", ok: true}
	e := NewEligibilityEvaluator(&fakeIdentity{}, geo, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.February, 1)),
	}

	_, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "203.0.113.7")
	if !errors.Is(err, domain.ErrUnauthorizedCountry) {
		t.Fatalf("expected UnauthorizedCountry from observed country, got %v", err)
	}
}

func TestEvaluateGeolocationUnavailableFallsBackToDeclared(t *testing.T) {
	geo := &fakeGeo{ok: false}
	e := NewEligibilityEvaluator(&fakeIdentity{}, geo, testParams())

	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.February, 1)),
	}

	result, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "203.0.113.7")
	if err != nil {
		t.Fatalf("expected declared-only check to pass, got %v", err)
	}
	if result.TotalXPPoints != 100 {
		t.Fatalf("expected 100 points, got %d", result.TotalXPPoints)
	}
}

func TestEvaluateEmptyDeclaredCountryFailsClosed(t *testing.T) {
	e := NewEligibilityEvaluator(&fakeIdentity{}, &fakeGeo{}, testParams())

	_, err := e.Evaluate(context.Background(), "did:vda:test:0x1", nil, "", "")
	if !errors.Is(err, domain.ErrUnauthorizedCountry) {
		t.Fatalf("expected UnauthorizedCountry for empty country, got %v", err)
	}
}

func TestEvaluateLenientAggregation(t *testing.T) {
	identity := &fakeIdentity{verify: func(proof airdrop.ActivityProof) bool {
		return proof.ID != "refer-friend" // one proof fails verification
	}}
	e := NewEligibilityEvaluator(identity, &fakeGeo{}, testParams())

	pending := completedProof("update-profile", dateUTC(2024, time.February, 1))
	pending.Status = airdrop.ActivityStatusPending

	// Only create-identity counts: refer-friend fails verification, the
	// pending proof is not completed, the last id is unknown.
	proofs := []airdrop.ActivityProof{
		completedProof("create-identity", dateUTC(2024, time.February, 1)),
		completedProof("refer-friend", dateUTC(2024, time.February, 1)),
		pending,
		completedProof("unknown-activity", dateUTC(2024, time.February, 1)),
	}

	result, err := e.Evaluate(context.Background(), "did:vda:test:0x1", proofs, "France", "")
	if err != nil {
		t.Fatalf("expected lenient aggregation to succeed, got %v", err)
	}
	if result.TotalXPPoints != 100 || result.XPPointsBeforeCutoff != 100 {
		t.Fatalf("expected 100/100, got %d/%d", result.TotalXPPoints, result.XPPointsBeforeCutoff)
	}
}
