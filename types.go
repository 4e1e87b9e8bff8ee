package airdrop

import (
	"time"
)

// ActivityStatus is the lifecycle state of a missions activity.
type ActivityStatus string

const (
	ActivityStatusTodo      ActivityStatus = "todo"
	ActivityStatusPending   ActivityStatus = "pending"
	ActivityStatusCompleted ActivityStatus = "completed"
)

// ActivityProof is a signed claim that an identity completed a qualifying
// activity. Proofs are ephemeral: only their aggregate XP effect is persisted.
type ActivityProof struct {
	ID             string         `json:"id"`
	Status         ActivityStatus `json:"status"`
	CompletionDate *time.Time     `json:"completionDate,omitempty"`
	Signature      string         `json:"signature"`
}

// RegistrationRequest is the inbound payload for airdrop registration.
type RegistrationRequest struct {
	Identity       string          `json:"identity"`
	ActivityProofs []ActivityProof `json:"activityProofs"`
	Country        string          `json:"country"`
	TermsAccepted  bool            `json:"termsAccepted"`
}

// ClaimRequest is the inbound payload for claiming a registered airdrop.
type ClaimRequest struct {
	Identity                string `json:"identity"`
	TermsAccepted           bool   `json:"termsAccepted"`
	UserEvmAddress          string `json:"userEvmAddress"`
	UserEvmAddressSignature string `json:"userEvmAddressSignature"`
}

// ClaimResult is returned once a claim transfer reached finality.
type ClaimResult struct {
	ClaimedTokenAmount     float64 `json:"claimedTokenAmount"`
	TransactionExplorerURL string  `json:"transactionExplorerUrl"`
}

// UserStatus reports the registration/claim state of an identity. The shape
// is identical whether the identity is unknown, registered or claimed, so a
// probe cannot distinguish a missing identity from a filtered one.
type UserStatus struct {
	IsRegistered         bool     `json:"isRegistered"`
	IsClaimed            bool     `json:"isClaimed"`
	ClaimableTokenAmount *float64 `json:"claimableTokenAmount,omitempty"`
	ClaimedTokenAmount   *float64 `json:"claimedTokenAmount,omitempty"`
	ClaimTransactionURL  *string  `json:"claimTransactionUrl,omitempty"`
}

// Event is broadcast on the realtime feed when a record changes state.
type Event struct {
	Type      string    `json:"type"` // "registered" | "claimed"
	Identity  string    `json:"identity"`
	Amount    *float64  `json:"amount,omitempty"`
	TxHash    *string   `json:"txHash,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
