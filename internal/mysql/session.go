package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// systemSchemas are never counted toward storage engine usage.
const systemSchemas = "'mysql','information_schema','performance_schema','sys'"

// TableInfo is one row of the schema enumeration: a user table's storage
// engine and its data size as reported by the server. The size stays a raw
// string because older servers emit values that don't parse as integers;
// aggregation treats those as zero.
type TableInfo struct {
	Engine     string
	DataLength string
}

// Session wraps an administrative connection to the target server. Any
// failure to open or query it is an acquisition failure: the caller aborts
// the whole run rather than producing a partial report.
type Session struct {
	db *sql.DB
}

// Open connects and authenticates. The Ping forces the handshake so that bad
// credentials or an unreachable server surface here, before any snapshot
// work starts.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open connection to %s: %w", cfg.Addr(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("authenticate to %s: %w", cfg.Addr(), err)
	}
	return &Session{db: db}, nil
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.db.Close()
}

// Variables returns the complete configuration variable set as raw string
// pairs.
func (s *Session) Variables(ctx context.Context) (map[string]string, error) {
	return s.keyValues(ctx, "SHOW /*!50000 GLOBAL */ VARIABLES")
}

// GlobalStatus returns the complete status counter set as raw string pairs.
func (s *Session) GlobalStatus(ctx context.Context) (map[string]string, error) {
	return s.keyValues(ctx, "SHOW /*!50002 GLOBAL */ STATUS")
}

func (s *Session) keyValues(ctx context.Context, query string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", query, err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", query, err)
		}
		kv[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", query, err)
	}
	return kv, nil
}

// Tables enumerates every user table's engine and data size across all
// non-system schemas.
func (s *Session) Tables(ctx context.Context) ([]TableInfo, error) {
	query := "SELECT ENGINE, IFNULL(DATA_LENGTH, '') FROM information_schema.TABLES " +
		"WHERE TABLE_SCHEMA NOT IN (" + systemSchemas + ") AND ENGINE IS NOT NULL"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("enumerate tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Engine, &t.DataLength); err != nil {
			return nil, fmt.Errorf("enumerate tables: scan: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enumerate tables: %w", err)
	}
	return tables, nil
}
