package model

import (
	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
	"gorm.io/gorm/clause"
)

// Lead is the exported snapshot of a rated user, written by the Kafka
// consumer. Export scripts read this table instead of the crawl state.
type Lead struct {
	Model
	ID        uint       `json:"id" gorm:"primaryKey"`
	Login     string     `json:"login" gorm:"column:login;uniqueIndex;type:varchar(255);not null"`
	Rating    float64    `json:"rating" gorm:"column:rating;not null;default:0"`
	Depth     int        `json:"depth" gorm:"column:depth;not null;default:0"`
	Tags      StringList `json:"tags" gorm:"column:tags;type:text"`
	Summary   string     `json:"summary" gorm:"column:summary;type:text"`
}

func NewLead(config *cfg.Config, logger log.Logger, conn db.Connector) (*Lead, error) {
	lead := &Lead{
		Model: Model{
			Config: config,
			Logger: logger,
			Db:     conn,
		},
	}
	return lead, nil
}

func (l *Lead) TableName() string {
	return "leads"
}

// Upsert keeps exactly one snapshot per login, refreshed on re-rating.
func (l *Lead) Upsert(msg LeadMessage) error {
	db, err := l.Db.Db()
	if err != nil {
		return err
	}
	lead := &Lead{
		Login:   TruncateString(msg.Login, 250),
		Rating:  msg.Rating,
		Depth:   msg.Depth,
		Tags:    msg.Tags,
		Summary: msg.Summary,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "depth", "tags", "summary", "updated_at"}),
	}).Create(lead).Error
}
