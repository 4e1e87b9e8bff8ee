package models

import (
	"time"
)

// AirdropRecord is the persisted registration row. Identity carries a unique
// index so concurrent registrations collapse to a single row at the database.
type AirdropRecord struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:text"`
	Identity             string    `json:"identity" gorm:"type:text;index:airdrop_record_identity,unique;not null"`
	Country              string    `json:"country" gorm:"type:text"`
	TermsAccepted        bool      `json:"termsAccepted" gorm:"type:boolean;not null;default:false"`
	TotalXPPoints        int       `json:"totalXpPoints" gorm:"type:integer;not null;default:0"`
	XPPointsBeforeCutoff int       `json:"xpPointsBeforeCutoff" gorm:"type:integer;not null;default:0"`
	ClaimableAmount      *float64  `json:"claimableAmount" gorm:"type:double precision"`
	Claimed              bool      `json:"claimed" gorm:"type:boolean;not null;default:false;index"`
	ClaimedAmount        *float64  `json:"claimedAmount" gorm:"type:double precision"`
	ClaimTransactionHash *string   `json:"claimTransactionHash" gorm:"type:text"`
	CDate                time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate                time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp();autoUpdateTime"`
}
