// Package persistence provides optional SQLite-backed durability for
// observed Answers, so a restarted daemon can reload its index instead of
// rebuilding it from scratch off the wire.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/cachewarden/cachewarden/internal/answer"
	"github.com/cachewarden/cachewarden/internal/dns"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding the last-observed form of every
// Answer the daemon has seen.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at dsn and brings its schema up
// to date.
func Open(dsn string) (*Store, error) {
	path := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dsn)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("persistence: creating migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("persistence: creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("persistence: creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("persistence: running migrations: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Health checks database connectivity, for the API's /health route.
func (s *Store) Health() error {
	return s.conn.Ping()
}

// SaveBatch upserts every Answer in one transaction, keyed by
// (domain_name, record_type) — mirroring the Answer Index's own Latest
// keying so the two never disagree about which observation is current.
func (s *Store) SaveBatch(ctx context.Context, answers []answer.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persistence: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answers (domain_name, record_type, class, ttl, observed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain_name, record_type) DO UPDATE SET
			class = excluded.class,
			ttl = excluded.ttl,
			observed_at = excluded.observed_at,
			expires_at = excluded.expires_at
		WHERE excluded.expires_at > answers.expires_at
	`)
	if err != nil {
		return fmt.Errorf("persistence: preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range answers {
		if _, err := stmt.ExecContext(ctx,
			a.DomainName, a.RecordType.String(), int(a.Class), a.TTL,
			a.ObservedAt.UTC().Format(time.RFC3339Nano),
			a.ExpiresAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("persistence: upserting %s/%s: %w", a.DomainName, a.RecordType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persistence: committing batch: %w", err)
	}
	return nil
}

// LoadAll returns every persisted Answer, for rebuilding the in-memory
// index on startup.
func (s *Store) LoadAll(ctx context.Context) ([]answer.Answer, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT domain_name, record_type, class, ttl, observed_at, expires_at FROM answers
	`)
	if err != nil {
		return nil, fmt.Errorf("persistence: querying answers: %w", err)
	}
	defer rows.Close()

	var out []answer.Answer
	for rows.Next() {
		var (
			domainName, recordType      string
			class                       int
			ttl                         uint32
			observedAtRaw, expiresAtRaw string
		)
		if err := rows.Scan(&domainName, &recordType, &class, &ttl, &observedAtRaw, &expiresAtRaw); err != nil {
			return nil, fmt.Errorf("persistence: scanning answer row: %w", err)
		}
		observedAt, err := time.Parse(time.RFC3339Nano, observedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("persistence: parsing observed_at: %w", err)
		}

		a, err := answer.New(domainName, recordTypeFromString(recordType), dns.RecordClass(class), ttl, observedAt)
		if err != nil {
			return nil, fmt.Errorf("persistence: reconstructing answer %s: %w", domainName, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persistence: iterating answer rows: %w", err)
	}
	return out, nil
}

func recordTypeFromString(s string) answer.RecordType {
	switch s {
	case "A":
		return answer.TypeA
	case "AAAA":
		return answer.TypeAAAA
	case "CNAME":
		return answer.TypeCNAME
	case "MX":
		return answer.TypeMX
	case "TXT":
		return answer.TypeTXT
	default:
		return answer.TypeOther
	}
}
