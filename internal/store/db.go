package store

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/samims/notifier/internal/config"
)

func init() {
	// sqlx only knows the cgo sqlite3 driver name
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// ConnectSQL opens the SQL pool for the configured driver and applies the schema.
func ConnectSQL(ctx context.Context, dbCfg config.DBConfig) (*sqlx.DB, error) {
	driverName, err := sqlDriverName(dbCfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbCfg.Driver, err)
	}

	if dbCfg.Driver == config.DriverSQLite {
		// one writer at a time, sqlite serialises them anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(dbCfg.MaxOpenConn)
	}
	db.SetConnMaxIdleTime(dbCfg.ConnMaxIdle)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported sql driver %q", driver)
}

// Open returns the NotificationStorage selected by dbCfg.Driver and a function releasing its connections.
func Open(ctx context.Context, dbCfg config.DBConfig) (NotificationStorage, func(), error) {
	switch dbCfg.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := ConnectSQL(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStorage(db), func() { db.Close() }, nil
	case config.DriverRedis:
		rdb, err := NewRedisClient(ctx, dbCfg.RedisAddr, dbCfg.RedisPassword, dbCfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStorage(rdb), func() { rdb.Close() }, nil
	case config.DriverMemory:
		return NewMemoryStorage(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", dbCfg.Driver)
}
