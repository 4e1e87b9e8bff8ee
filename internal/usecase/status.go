package usecase

import (
	"context"
	"errors"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
)

// StatusUsecase reports the registration/claim state of an identity. The
// zero-value UserStatus is returned for unknown identities so the response
// shape never reveals why an identity has no record.
type StatusUsecase struct {
	repo          RecordRepository
	explorerTxURL string
}

func NewStatusUsecase(repo RecordRepository, explorerTxURL string) *StatusUsecase {
	return &StatusUsecase{repo: repo, explorerTxURL: explorerTxURL}
}

func (uc *StatusUsecase) Status(ctx context.Context, identity string) (airdrop.UserStatus, error) {
	record, err := uc.repo.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return airdrop.UserStatus{}, nil
		}
		return airdrop.UserStatus{}, err
	}

	status := airdrop.UserStatus{
		IsRegistered:         true,
		IsClaimed:            record.Claimed,
		ClaimableTokenAmount: record.ClaimableAmount,
		ClaimedTokenAmount:   record.ClaimedAmount,
	}

	if record.Claimed && record.ClaimTransactionHash != nil {
		url := uc.explorerTxURL + *record.ClaimTransactionHash
		status.ClaimTransactionURL = &url
	}

	return status, nil
}
