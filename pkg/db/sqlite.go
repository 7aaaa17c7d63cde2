package db

import (
	"sync"

	"github.com/devscout/github-leadgen/cfg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Sqlite is the single-file backend used for local crawls and tests.
type Sqlite struct {
	Config  *cfg.Config
	once    sync.Once
	db      *gorm.DB
	initErr error
}

func NewSqlite(config *cfg.Config) (*Sqlite, error) {
	return &Sqlite{
		Config: config,
	}, nil
}

func (s *Sqlite) Db() (*gorm.DB, error) {
	s.once.Do(func() {
		s.db, s.initErr = gorm.Open(sqlite.Open(s.Config.Sqlite.Path), &gorm.Config{})
	})
	return s.db, s.initErr
}

func (s *Sqlite) Ping() error {
	db, err := s.Db()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Sqlite) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		sqlDB.Close()
	}
	return nil
}

func (s *Sqlite) Migrate(models ...interface{}) error {
	db, err := s.Db()
	if err != nil {
		return err
	}
	return db.AutoMigrate(models...)
}
