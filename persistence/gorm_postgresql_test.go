package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// openGormSQLite runs the gorm store on the pure-Go sqlite driver so the
// default driver's queries are exercised without a PostgreSQL server.
func openGormSQLite(t *testing.T) *GormPostgreSQL {
	t.Helper()

	dialector := gormsqlite.Dialector{
		DriverName: "sqlite",
		DSN:        filepath.Join(t.TempDir(), "gorm.db") + "?_pragma=busy_timeout(5000)",
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	store, err := newGormStore(db)
	require.NoError(t, err)
	return store
}
