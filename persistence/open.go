package persistence

import (
	"fmt"

	"github.com/wfunc/rpsserver/config"
)

// Open connects to the store selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (Store, error) {
	pg := cfg.Postgres

	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "", "gorm":
		var s *GormPostgreSQL
		if s, err = NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName); err == nil {
			store = s
		}
	case "postgres":
		var s *PostgreSQL
		if s, err = NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName); err == nil {
			store = s
		}
	case "sqlite":
		var s *SQLite
		if s, err = NewSQLite(cfg.SQLite.Path); err == nil {
			store = s
		}
	case "memory":
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
