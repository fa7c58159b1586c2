package config

import "time"

// Engagement and reservation policy.
const (
	// MaxActiveEngagements caps open loans + live reservations per user.
	MaxActiveEngagements = 2

	// ExpectancyExpiryDays is how long a promoted reservation waits for
	// pickup before it expires.
	ExpectancyExpiryDays = 2

	LoanDurationDays = 14

	// MaxRenewals is the number of times a single loan may be extended.
	MaxRenewals = 2
)

var ExpectancyExpiry = time.Duration(ExpectancyExpiryDays) * 24 * time.Hour

// AllowedLoanExtensionDays are the only accepted renewal lengths.
var AllowedLoanExtensionDays = []int{7, 14}

// Fine rates, whole PLN.
const (
	OverduePerDayPLN   = 2
	OverdueMaxPLN      = 50
	LostBookFinePLN    = 120
	DamagedBookFinePLN = 60

	FineCurrency = "PLN"
)

// AllowedUserUpdateFields lists the member fields staff may edit in place.
var AllowedUserUpdateFields = []string{
	"firstName",
	"lastName",
	"addressNumber",
	"addressStreet",
	"addressCity",
	"addressCountry",
	"addressEmail",
	"phoneNumber",
}

// AllowedBookUpdateFields lists the catalog fields staff may edit in place.
var AllowedBookUpdateFields = []string{
	"isbn",
	"title",
	"author",
	"publisher",
	"publishedYear",
	"quantity",
	"lostCount",
	"damagedCount",
	"location",
}
