package model

import (
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

type Model struct {
	Config    *cfg.Config  `gorm:"-"`
	Logger    log.Logger   `gorm:"-"`
	Db        db.Connector `gorm:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
