package model

import (
	"fmt"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User is one crawled GitHub identity. The nullable enrichment columns encode
// "not yet fetched" as NULL; an empty fetched value is stored as an empty
// string/list so the pipeline never re-fetches it.
type User struct {
	Model
	ID     uint   `json:"id" gorm:"primaryKey"`
	Login  string `json:"login" gorm:"column:login;uniqueIndex;type:varchar(255);not null"`
	Status string `json:"status" gorm:"column:status;index;type:varchar(16);not null;default:pending"`
	Depth  int    `json:"depth" gorm:"column:depth;index;not null;default:0"`
	Seed   bool   `json:"seed" gorm:"column:seed;not null;default:false"`

	IgnoredReason    string `json:"ignored_reason" gorm:"column:ignored_reason;type:varchar(64)"`
	FollowingScraped bool   `json:"following_scraped" gorm:"column:following_scraped;not null;default:false"`
	FollowersScraped bool   `json:"followers_scraped" gorm:"column:followers_scraped;not null;default:false"`

	// Traversal priority bookkeeping. ParentRatings is the append-only audit
	// set; sum/count/via/priority are denormalized from it on every append so
	// batch selection is a plain ORDER BY.
	ParentRatings     ParentRatings `json:"parent_ratings" gorm:"column:parent_ratings;type:text"`
	ParentRatingSum   float64       `json:"parent_rating_sum" gorm:"column:parent_rating_sum;not null;default:0"`
	ParentRatingCount int           `json:"parent_rating_count" gorm:"column:parent_rating_count;not null;default:0"`
	ViaFollowing      bool          `json:"via_following" gorm:"column:via_following;not null;default:false"`
	Priority          float64       `json:"priority" gorm:"column:priority;index;not null;default:-1"`

	Rating          *float64        `json:"rating" gorm:"column:rating"`
	RatingBreakdown RatingBreakdown `json:"rating_breakdown" gorm:"column:rating_breakdown;type:text"`
	Tags            StringList      `json:"tags" gorm:"column:tags;type:text"`

	// Base profile fields, set by the scrape step
	ProfileScraped  bool       `json:"profile_scraped" gorm:"column:profile_scraped;not null;default:false"`
	Name            string     `json:"name" gorm:"column:name;type:varchar(255)"`
	Company         string     `json:"company" gorm:"column:company;type:varchar(255)"`
	Location        string     `json:"location" gorm:"column:location;type:varchar(255)"`
	Email           string     `json:"email" gorm:"column:email;type:varchar(255)"`
	Blog            string     `json:"blog" gorm:"column:blog;type:varchar(255)"`
	Followers       int        `json:"followers" gorm:"column:followers;not null;default:0"`
	Following       int        `json:"following" gorm:"column:following;not null;default:0"`
	PublicRepos     int        `json:"public_repos" gorm:"column:public_repos;not null;default:0"`
	GithubCreatedAt *time.Time `json:"github_created_at" gorm:"column:github_created_at"`

	// Enrichment facets, each independently present-or-absent
	Contributions      *ContributionSummary `json:"contributions" gorm:"column:contributions;type:text"`
	Repos              *RepoList            `json:"repos" gorm:"column:repos;type:text"`
	SocialBio          *string              `json:"social_bio" gorm:"column:social_bio;type:text"`
	WebResearch        *string              `json:"web_research" gorm:"column:web_research;type:text"`
	LinkedinUrl        *string              `json:"linkedin_url" gorm:"column:linkedin_url;type:varchar(512)"`
	LinkedinExperience *string              `json:"linkedin_experience" gorm:"column:linkedin_experience;type:text"`
	LinkedinSummary    *string              `json:"linkedin_summary" gorm:"column:linkedin_summary;type:text"`
	EmployerInsights   *string              `json:"employer_insights" gorm:"column:employer_insights;type:text"`
}

// ProfileFields are the base profile values taken from a scrape.
type ProfileFields struct {
	Name        string
	Company     string
	Location    string
	Email       string
	Blog        string
	Followers   int
	Following   int
	PublicRepos int
	CreatedAt   *time.Time
}

func NewUser(config *cfg.Config, logger log.Logger, conn db.Connector) (*User, error) {
	user := &User{
		Model: Model{
			Config: config,
			Logger: logger,
			Db:     conn,
		},
	}
	return user, nil
}

func (u *User) TableName() string {
	return "users"
}

// CreatedAgeDays is the account age in days, 0 when the profile was never
// scraped.
func (u *User) CreatedAgeDays() float64 {
	if u.GithubCreatedAt == nil {
		return 0
	}
	return time.Since(*u.GithubCreatedAt).Hours() / 24
}

// UpsertSeed inserts a seed identity as a depth-0 pending user. Idempotent:
// re-running a crawl never resets an existing seed's state.
func (u *User) UpsertSeed(login string) error {
	db, err := u.Db.Db()
	if err != nil {
		return err
	}
	seed := &User{
		Login:         TruncateString(login, 250),
		Status:        StatusPending,
		Depth:         0,
		Seed:          true,
		ParentRatings: ParentRatings{},
		Priority:      NoParentPriority,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoNothing: true,
	}).Create(seed).Error
}

// UpsertPending inserts a discovered neighbor as a pending user at the given
// depth. First-discovery wins: if the login already exists, nothing changes,
// in particular the depth is never lowered or raised afterwards.
func (u *User) UpsertPending(login string, depth int) error {
	db, err := u.Db.Db()
	if err != nil {
		return err
	}
	neighbor := &User{
		Login:         TruncateString(login, 250),
		Status:        StatusPending,
		Depth:         depth,
		ParentRatings: ParentRatings{},
		Priority:      NoParentPriority,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoNothing: true,
	}).Create(neighbor).Error
}

// AppendParentRating records that a rated parent vouched for login via the
// given edge direction, and recomputes the denormalized priority columns.
func (u *User) AppendParentRating(login, parent string, rating float64, via string) error {
	db, err := u.Db.Db()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		// Lock the row for the read-modify-write. Two parents can vouch for
		// the same neighbor in one batch; without the lock the second commit
		// would overwrite the first one's append.
		var target User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("login = ?", login).First(&target).Error; err != nil {
			return err
		}

		target.ParentRatings = append(target.ParentRatings, ParentRating{
			Parent: parent,
			Rating: rating,
			Via:    via,
		})
		sum := target.ParentRatingSum + rating
		count := target.ParentRatingCount + 1
		viaFollowing := target.ViaFollowing || via == DirectionFollowing
		priority := ComputePriority(sum, count, viaFollowing, target.Depth, u.Config.Crawler)

		return tx.Model(&User{}).Where("login = ?", login).Updates(map[string]interface{}{
			"parent_ratings":      target.ParentRatings,
			"parent_rating_sum":   sum,
			"parent_rating_count": count,
			"via_following":       viaFollowing,
			"priority":            priority,
		}).Error
	})
}

func (u *User) GetByLogin(login string) (*User, error) {
	db, err := u.Db.Db()
	if err != nil {
		return nil, err
	}
	var user User
	if err := db.Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ClaimBatch selects the next batch of eligible pending users ordered by depth
// then priority, and marks them processing in the same transaction so a
// concurrent scheduler cannot claim them twice. Eligible means: a seed-depth
// user, an unrated user vouched for strongly enough by its parents, or an
// already-rated user whose following direction was never scraped.
func (u *User) ClaimBatch(batchSize int, expansionThreshold float64) ([]User, error) {
	db, err := u.Db.Db()
	if err != nil {
		return nil, err
	}
	var batch []User
	err = db.Transaction(func(tx *gorm.DB) error {
		eligible := "depth = 0" +
			" OR (rating IS NULL AND parent_rating_count > 0 AND (parent_rating_sum * 1.0 / parent_rating_count) >= ?)" +
			" OR (rating IS NOT NULL AND following_scraped = ?)"
		if err := tx.
			Where("status = ?", StatusPending).
			Where("("+eligible+")", expansionThreshold, false).
			Order("depth asc, priority desc").
			Limit(batchSize).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(batch))
		for i := range batch {
			ids = append(ids, batch[i].ID)
		}
		return tx.Model(&User{}).Where("id IN ?", ids).
			Update("status", StatusProcessing).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range batch {
		batch[i].Status = StatusProcessing
	}
	return batch, nil
}

// ReleaseStale returns users stuck in processing back to pending. Rows only
// stay processing while a worker holds them, so at startup any such row is
// an orphan from a crash or a credits halt and must be claimable again.
func (u *User) ReleaseStale() (int64, error) {
	db, err := u.Db.Db()
	if err != nil {
		return 0, err
	}
	result := db.Model(&User{}).
		Where("status = ?", StatusProcessing).
		Update("status", StatusPending)
	return result.RowsAffected, result.Error
}

// RequeueUnscraped resets processed users below maxDepth whose following
// direction was never paginated back to pending. Run once at startup so a
// raised max depth resumes without re-rating anyone.
func (u *User) RequeueUnscraped(maxDepth int) (int64, error) {
	db, err := u.Db.Db()
	if err != nil {
		return 0, err
	}
	result := db.Model(&User{}).
		Where("status = ? AND depth < ? AND following_scraped = ?", StatusProcessed, maxDepth, false).
		Update("status", StatusPending)
	return result.RowsAffected, result.Error
}

func (u *User) SetStatus(login, status string) error {
	return u.updateColumns(login, map[string]interface{}{"status": status})
}

func (u *User) SetIgnored(login, reason string) error {
	return u.updateColumns(login, map[string]interface{}{
		"status":         StatusIgnored,
		"ignored_reason": reason,
	})
}

func (u *User) SetProfile(login string, p ProfileFields) error {
	return u.updateColumns(login, map[string]interface{}{
		"profile_scraped":   true,
		"name":              TruncateString(p.Name, 250),
		"company":           TruncateString(p.Company, 250),
		"location":          TruncateString(p.Location, 250),
		"email":             TruncateString(p.Email, 250),
		"blog":              TruncateString(p.Blog, 250),
		"followers":         p.Followers,
		"following":         p.Following,
		"public_repos":      p.PublicRepos,
		"github_created_at": p.CreatedAt,
	})
}

func (u *User) SetContributions(login string, summary *ContributionSummary) error {
	return u.updateColumns(login, map[string]interface{}{"contributions": summary})
}

func (u *User) SetRepos(login string, repos *RepoList) error {
	return u.updateColumns(login, map[string]interface{}{"repos": repos})
}

func (u *User) SetSocialBio(login, bio string) error {
	return u.updateColumns(login, map[string]interface{}{"social_bio": bio})
}

func (u *User) SetWebResearch(login, text string) error {
	return u.updateColumns(login, map[string]interface{}{"web_research": text})
}

func (u *User) SetLinkedinUrl(login, url string) error {
	return u.updateColumns(login, map[string]interface{}{"linkedin_url": url})
}

func (u *User) SetLinkedinExperience(login, text string) error {
	return u.updateColumns(login, map[string]interface{}{"linkedin_experience": text})
}

func (u *User) SetLinkedinSummary(login, text string) error {
	return u.updateColumns(login, map[string]interface{}{"linkedin_summary": text})
}

func (u *User) SetEmployerInsights(login, text string) error {
	return u.updateColumns(login, map[string]interface{}{"employer_insights": text})
}

// SetRating persists the rating outcome. Priority stays parent-derived;
// a re-queued rated user is ordered by what its parents thought of it.
func (u *User) SetRating(login string, score float64, breakdown RatingBreakdown, tags StringList) error {
	return u.updateColumns(login, map[string]interface{}{
		"rating":           score,
		"rating_breakdown": breakdown,
		"tags":             tags,
	})
}

// MarkScraped flips the scraped flag for one edge direction. The flag only
// ever goes false -> true; re-queueing is the explicit way to redo a
// direction.
func (u *User) MarkScraped(login, direction string) error {
	column := "following_scraped"
	if direction == DirectionFollowers {
		column = "followers_scraped"
	}
	return u.updateColumns(login, map[string]interface{}{column: true})
}

func (u *User) CountByStatus() (map[string]int64, error) {
	db, err := u.Db.Db()
	if err != nil {
		return nil, err
	}
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := db.Model(&User{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// PendingCount reports how many users are pending at all, eligible or not.
// The scheduler uses it to tell "fully done" apart from "done within the
// current depth/criteria bounds".
func (u *User) PendingCount() (int64, error) {
	db, err := u.Db.Db()
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Model(&User{}).Where("status = ?", StatusPending).Count(&count).Error
	return count, err
}

// List is the read-only query surface for the API and export scripts.
func (u *User) List(status string, minRating float64, maxDepth, limit int) ([]User, error) {
	db, err := u.Db.Db()
	if err != nil {
		return nil, err
	}
	query := db.Model(&User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if minRating > 0 {
		query = query.Where("rating >= ?", minRating)
	}
	if maxDepth >= 0 {
		query = query.Where("depth <= ?", maxDepth)
	}
	if limit <= 0 {
		limit = 100
	}
	var users []User
	err = query.Order("rating desc").Limit(limit).Find(&users).Error
	return users, err
}

func (u *User) updateColumns(login string, values map[string]interface{}) error {
	db, err := u.Db.Db()
	if err != nil {
		return err
	}
	result := db.Model(&User{}).Where("login = ?", login).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user with login %q", login)
	}
	return nil
}
