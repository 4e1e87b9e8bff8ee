package domain

// Defaults mirroring the first campaign. All of these are overridable via
// the campaign section of the config file.

const (
	DefaultMinXPPoints = 50
	DefaultCutoffDate  = "2024-03-21" // UTC calendar date, exclusive

	// DefaultSignedMessage is the clear text a claimant signs to prove
	// ownership of the destination address.
	DefaultSignedMessage = "I am the owner of this address for the Verida Airdrops"
)

// DefaultBlockedCountries is the sanctions/eligibility blocklist applied to
// both the declared and the requester-observed country.
var DefaultBlockedCountries = []string{
	"United States",
	"United Kingdom",
	"Canada",
	"China",
	"Singapore",
	"Mali",
	"Libya",
	"Somalia",
	"North Korea",
	"Iran",
	"South Sudan",
	"Syria",
	"Yemen",
	"Eritrea",
	"Lebanon",
	"Congo",
	"Sudan",
	"Iraq",
}

// DefaultActivityXPPoints maps missions activity ids to their XP value.
// Unknown activity ids are worth nothing.
var DefaultActivityXPPoints = map[string]int{
	"create-verida-identity":                            100,
	"update-profile":                                    50,
	"use-markdown-editor":                               50,
	"refer-friend":                                      100,
	"claim-gatekeeper-adopter-credential":               100,
	"claim-anima-pol-credential":                        100,
	"claim-gamer31-brawlstars-reputation-credential":    50,
	"claim-gamer31-clashofclans-reputation-credential":  50,
	"claim-gamer31-clashroyale-reputation-credential":   50,
	"claim-gamer31-lichess-reputation-credential":       50,
	"claim-gamer31-steam-membership-credential":         50,
	"claim-gamer31-twitch-membership-credential":        50,
}
