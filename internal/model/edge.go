package model

import (
	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
	"gorm.io/gorm/clause"
)

// Edge is a directed "from follows to" pair. Append-only; duplicate inserts
// are swallowed by the unique pair index, so re-fetching a page is harmless.
type Edge struct {
	Model
	ID        uint   `json:"id" gorm:"primaryKey"`
	FromLogin string `json:"from_login" gorm:"column:from_login;type:varchar(255);not null;uniqueIndex:idx_edge_pair"`
	ToLogin   string `json:"to_login" gorm:"column:to_login;type:varchar(255);not null;uniqueIndex:idx_edge_pair"`
}

func NewEdge(config *cfg.Config, logger log.Logger, conn db.Connector) (*Edge, error) {
	edge := &Edge{
		Model: Model{
			Config: config,
			Logger: logger,
			Db:     conn,
		},
	}
	return edge, nil
}

func (e *Edge) TableName() string {
	return "edges"
}

// InsertPage writes one page of edges. Duplicates are ignored, other insert
// failures abort the page.
func (e *Edge) InsertPage(pairs [][2]string) error {
	if len(pairs) == 0 {
		return nil
	}
	db, err := e.Db.Db()
	if err != nil {
		return err
	}
	edges := make([]Edge, 0, len(pairs))
	for _, pair := range pairs {
		edges = append(edges, Edge{
			FromLogin: TruncateString(pair[0], 250),
			ToLogin:   TruncateString(pair[1], 250),
		})
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_login"}, {Name: "to_login"}},
		DoNothing: true,
	}).Create(&edges).Error
}

// Outbound returns the distinct logins this user follows.
func (e *Edge) Outbound(login string) ([]string, error) {
	db, err := e.Db.Db()
	if err != nil {
		return nil, err
	}
	var targets []string
	err = db.Model(&Edge{}).Where("from_login = ?", login).
		Distinct().Pluck("to_login", &targets).Error
	return targets, err
}

// Inbound returns the distinct logins following this user.
func (e *Edge) Inbound(login string) ([]string, error) {
	db, err := e.Db.Db()
	if err != nil {
		return nil, err
	}
	var sources []string
	err = db.Model(&Edge{}).Where("to_login = ?", login).
		Distinct().Pluck("from_login", &sources).Error
	return sources, err
}

func (e *Edge) Count() (int64, error) {
	db, err := e.Db.Db()
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Model(&Edge{}).Count(&count).Error
	return count, err
}
