package model

// Lifecycle states of a crawled user. A user enters as StatusPending, is
// claimed by the scheduler as StatusProcessing and ends up either
// StatusProcessed or StatusIgnored. Processed users can be re-queued to
// pending when a required edge direction was never scraped (e.g. after a
// max-depth increase).
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusIgnored    = "ignored"
)

// Categorical reasons a user is ignored. Stored verbatim so reports can
// break ignores down by cause.
const (
	ReasonScrapeError              = "scrape-error"
	ReasonBannedRegion             = "banned-region"
	ReasonAccountTooNew            = "account-too-new"
	ReasonInsufficientProfile      = "insufficient-profile-signal"
	ReasonFollowerCountOutOfBand   = "follower-count-out-of-band"
	ReasonContributionsUnfetchable = "contributions-unfetchable"
	ReasonLowContributionVolume    = "contribution-volume-too-low-for-follower-tier"
	ReasonInsufficientActiveMonths = "insufficient-active-months"
	ReasonWeekdayOnlyActivity      = "weekday-only-activity-pattern"
)

// Edge directions. "following" edges (someone the parent chose to follow)
// carry a stronger vouching signal than "followers" edges.
const (
	DirectionFollowing = "following"
	DirectionFollowers = "followers"
)
