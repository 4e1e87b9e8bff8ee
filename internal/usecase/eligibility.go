package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
)

var tracer = otel.Tracer("usecase")

// verifyConcurrency bounds the fan-out against the identity network.
const verifyConcurrency = 8

// EligibilityParams are the campaign knobs the evaluator applies.
type EligibilityParams struct {
	MinXPPoints int
	// Cutoff is a UTC calendar date; activity completed on or after it does
	// not count towards the before-cutoff sub-total.
	Cutoff           time.Time
	BlockedCountries []string
	ActivityXPPoints map[string]int
}

// EligibilityEvaluator aggregates verified activity proofs into XP totals
// and applies the country blocklist. It holds no state beyond its
// parameters and the two gateway handles.
type EligibilityEvaluator struct {
	identity IdentityGateway
	geo      GeolocationGateway
	params   EligibilityParams
	blocked  map[string]struct{}
}

func NewEligibilityEvaluator(identity IdentityGateway, geo GeolocationGateway, params EligibilityParams) *EligibilityEvaluator {
	blocked := make(map[string]struct{}, len(params.BlockedCountries))
	for _, country := range params.BlockedCountries {
		blocked[country] = struct{}{}
	}
	return &EligibilityEvaluator{
		identity: identity,
		geo:      geo,
		params:   params,
		blocked:  blocked,
	}
}

// Evaluate checks country restrictions and computes the XP totals for the
// given proofs. Individual proofs that fail verification, are not completed
// or reference unknown activities contribute zero points; they never abort
// the evaluation. When geolocation is unavailable only the declared country
// is checked.
func (e *EligibilityEvaluator) Evaluate(
	ctx context.Context,
	identity string,
	proofs []airdrop.ActivityProof,
	declaredCountry string,
	requesterIP string,
) (domain.EligibilityResult, error) {
	ctx, span := tracer.Start(ctx, "Eligibility.Evaluate")
	defer span.End()

	if e.countryBlocked(declaredCountry) {
		return domain.EligibilityResult{}, domain.Functional(domain.CodeUnauthorizedCountry, "country not eligible")
	}

	if requesterIP != "" {
		observed, ok := e.geo.CountryForIP(ctx, requesterIP)
		if !ok {
			slog.WarnContext(ctx, "geolocation unavailable, checking declared country only",
				slog.String("identity", identity),
			)
		} else if e.countryBlocked(observed) {
			return domain.EligibilityResult{}, domain.Functional(domain.CodeUnauthorizedCountry, "country not eligible")
		}
	}

	type score struct {
		points       int
		beforeCutoff bool
	}
	scores := make([]score, len(proofs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)
	for i, proof := range proofs {
		g.Go(func() error {
			if proof.Status != airdrop.ActivityStatusCompleted {
				return nil
			}
			if !e.identity.VerifyProof(gctx, proof, identity) {
				return nil
			}
			scores[i] = score{
				points:       e.params.ActivityXPPoints[proof.ID],
				beforeCutoff: proof.CompletionDate != nil && completedBefore(*proof.CompletionDate, e.params.Cutoff),
			}
			return nil
		})
	}
	// Verification tasks never return errors; Wait is only a join point.
	_ = g.Wait()

	var result domain.EligibilityResult
	for _, s := range scores {
		result.TotalXPPoints += s.points
		if s.beforeCutoff {
			result.XPPointsBeforeCutoff += s.points
		}
	}

	if result.XPPointsBeforeCutoff < e.params.MinXPPoints {
		return domain.EligibilityResult{}, domain.Functional(
			domain.CodeNotEnoughXPPoints,
			fmt.Sprintf("not enough XP points: %d before cutoff (%d total), %d required",
				result.XPPointsBeforeCutoff, result.TotalXPPoints, e.params.MinXPPoints),
		)
	}

	return result, nil
}

func (e *EligibilityEvaluator) countryBlocked(country string) bool {
	if country == "" {
		return true
	}
	_, blocked := e.blocked[country]
	return blocked
}

// completedBefore compares at calendar-date granularity in UTC: a proof
// completed on the cutoff date itself does not count.
func completedBefore(completion, cutoff time.Time) bool {
	c := completion.UTC()
	day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(cutoff)
}
