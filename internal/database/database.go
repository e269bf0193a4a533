// Package database turns the resolved connection descriptor into a live
// sqlx pool.  Three drivers are linked in:
//
//	postgres – jackc/pgx/v5 through its database/sql adapter ("pgx"),
//	mysql    – go-sql-driver/mysql, also fine for MariaDB,
//	sqlite   – modernc.org/sqlite, pure Go, used by the local fallback.
//
// Public entry points:
//
//	DSN(desc)         – driver name plus data source string.
//	Open(ctx, desc)   – pool with conservative sizes, pinged before return.
//	Check(ctx, db)    – round-trip query used by `settings check --ping`.
//
// Callers should Close() the returned *sqlx.DB when no longer needed.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/yanizio/storefront/internal/config"
)

const (
	maxOpen = 15
	maxIdle = 5
)

// DSN returns the database/sql driver name and data source for desc.
func DSN(desc config.Database) (driver, dsn string, err error) {
	switch desc.Driver {
	case config.DriverPostgres:
		return "pgx", postgresDSN(desc), nil
	case config.DriverMySQL:
		return "mysql", mysqlDSN(desc), nil
	case config.DriverSQLite:
		return "sqlite", sqliteDSN(desc), nil
	default:
		return "", "", fmt.Errorf("database: unsupported driver %q", desc.Driver)
	}
}

// Open returns a pinged *sqlx.DB: 15 max open, 5 idle, and connections
// recycled after desc.MaxAge seconds.
func Open(ctx context.Context, desc config.Database) (*sqlx.DB, error) {
	driver, dsn, err := DSN(desc)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", desc.Driver, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if desc.MaxAge > 0 {
		db.SetConnMaxLifetime(time.Duration(desc.MaxAge) * time.Second)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", desc.Driver, err)
	}
	return db, nil
}

// Check runs a trivial query so a reachable but broken server still fails.
func Check(ctx context.Context, db *sqlx.DB) error {
	var one int
	if err := db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("check: unexpected result %d", one)
	}
	return nil
}

/*──────────────────────────── drivers ─────────────────────────────────────*/

func postgresDSN(d config.Database) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   hostPort(d),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}

	q := url.Values{}
	for k, v := range d.Options {
		q.Set(k, v)
	}
	if d.Host == "" && d.Port != 0 {
		// pgx reads the port from the query when the URL has no host.
		q.Set("port", strconv.Itoa(d.Port))
	}
	if d.SSLRequired {
		q.Set("sslmode", "require")
	} else if q.Get("sslmode") == "" {
		q.Set("sslmode", "prefer")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func mysqlDSN(d config.Database) string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = hostPort(d)
	cfg.DBName = d.Name
	cfg.ParseTime = true
	if d.SSLRequired {
		cfg.TLSConfig = "true"
	}
	if len(d.Options) > 0 {
		cfg.Params = make(map[string]string, len(d.Options))
		for k, v := range d.Options {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

// sqliteDSN passes options through as query parameters (e.g. _pragma).
func sqliteDSN(d config.Database) string {
	if len(d.Options) == 0 {
		return d.Name
	}
	q := url.Values{}
	for k, v := range d.Options {
		q.Set(k, v)
	}
	return "file:" + d.Name + "?" + q.Encode()
}

// hostPort is "" when Host is empty so the driver picks its default
// (unix socket or loopback).  mysql keeps an explicit port as ":port".
func hostPort(d config.Database) string {
	switch {
	case d.Host == "" && (d.Driver != config.DriverMySQL || d.Port == 0):
		return ""
	case d.Port == 0:
		return d.Host
	default:
		return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
}
