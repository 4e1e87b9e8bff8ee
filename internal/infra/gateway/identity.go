package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	airdrop "airdrop-service"
	"airdrop-service/internal/usecase"
)

// IdentityGateway verifies activity proofs against the identity network's
// verification endpoint. Verification is advisory: any transport or decode
// failure counts the proof as unverified instead of failing the evaluation.
type IdentityGateway struct {
	endpoint string
	client   *http.Client
}

func NewIdentityGateway(endpoint string) *IdentityGateway {
	return &IdentityGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type proofVerificationRequest struct {
	Identity   string `json:"identity"`
	ActivityID string `json:"activityId"`
	Signature  string `json:"signature"`
}

type proofVerificationResponse struct {
	Valid bool `json:"valid"`
}

func (g *IdentityGateway) VerifyProof(ctx context.Context, proof airdrop.ActivityProof, identity string) bool {
	payload, err := json.Marshal(proofVerificationRequest{
		Identity:   identity,
		ActivityID: proof.ID,
		Signature:  proof.Signature,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "proof verification request failed",
			slog.String("identity", identity),
			slog.String("activity", proof.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body proofVerificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Valid
}

var _ usecase.IdentityGateway = (*IdentityGateway)(nil)
