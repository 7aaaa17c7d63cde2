package db

import (
	"fmt"

	"github.com/devscout/github-leadgen/cfg"
	"gorm.io/gorm"
)

// Connector abstracts the storage backend. All models and the crawler core only
// ever see a gorm handle; the concrete backend is chosen by configuration.
type Connector interface {
	Db() (*gorm.DB, error)
	Ping() error
	Close() error
	Migrate(models ...interface{}) error
}

func FactoryConnector(config *cfg.Config) (Connector, error) {
	switch config.Database.Driver {
	case "mysql":
		return NewMysql(config)
	case "sqlite":
		return NewSqlite(config)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported database driver: %s", config.Database.Driver)
	}
}
