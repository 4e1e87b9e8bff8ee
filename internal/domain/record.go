package domain

// AirdropRecord is the single persistent artifact per identity. It is
// created once by registration and mutated only by the claim flow.
//
// State machine over (Claimed, ClaimTransactionHash):
//
//	Registered       claimed=false, hash=nil
//	PendingTransfer  claimed=false, hash!=nil   (transient: a transfer is in
//	                                             flight or was interrupted)
//	Claimed          claimed=true,  hash!=nil   (terminal)
//
// Claimed=true always implies ClaimedAmount and ClaimTransactionHash are set.
type AirdropRecord struct {
	ID       string
	Identity string

	Country       string
	TermsAccepted bool

	TotalXPPoints        int
	XPPointsBeforeCutoff int

	// ClaimableAmount is nil when the reward schedule yielded nothing for
	// this record; such records exist but can never be claimed.
	ClaimableAmount *float64

	Claimed              bool
	ClaimedAmount        *float64
	ClaimTransactionHash *string
}

// PendingTransfer reports whether a transfer was initiated but finality was
// never observed. Such records must be recovered, never re-initiated.
func (r *AirdropRecord) PendingTransfer() bool {
	return !r.Claimed && r.ClaimTransactionHash != nil
}

// Claimable reports whether the record carries a positive claimable amount.
func (r *AirdropRecord) Claimable() bool {
	return r.ClaimableAmount != nil && *r.ClaimableAmount > 0
}

// RecordPatch is a partial update applied to an existing record. Nil fields
// are left untouched. The transaction hash is a write-once checkpoint: the
// store adapter refuses to overwrite an existing hash.
type RecordPatch struct {
	ClaimTransactionHash *string
	Claimed              *bool
	ClaimedAmount        *float64
}

// EligibilityResult carries the XP totals computed at registration.
type EligibilityResult struct {
	TotalXPPoints        int
	XPPointsBeforeCutoff int
}
