package db

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/kravietz/reporter/internal/config"
)

// insertReport records one report in a single round trip. Both dimension
// rows are upserted first; the conflict branch rewrites the same value
// solely so RETURNING yields the id on either path, without a separate
// read. The fact row then references both ids. Postgres runs the whole
// statement as one implicit transaction, so no partial write is ever
// observable, and concurrent upserts of the same unseen value race safely
// under the unique constraints.
const insertReport = `
WITH ins_ua AS (
    INSERT INTO user_agents (user_agent)
    VALUES (@ua)
    ON CONFLICT (user_agent) DO UPDATE
    SET user_agent = @ua
    RETURNING id AS ua_id
), ins_tag AS (
    INSERT INTO tags (tag)
    VALUES (@tag)
    ON CONFLICT (tag) DO UPDATE
    SET tag = @tag
    RETURNING id AS t_id
)
INSERT INTO reports (data, date, ip, user_agent_id, tag_id)
    SELECT
        @data::json,
        NOW(),
        @ip,
        ua_id,
        (SELECT t_id FROM ins_tag)
    FROM ins_ua
`

var (
	persistRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reporter",
		Name:      "persist_retries_total",
		Help:      "Reconnect-and-retry attempts after a connection-level fault.",
	})
	persistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reporter",
		Name:      "persist_failures_total",
		Help:      "Reports lost to a fatal persistence error.",
	})
)

func init() {
	prometheus.MustRegister(persistRetriesTotal, persistFailuresTotal)
}

// Store is the persistence gateway. It owns the database handle and
// re-establishes it when a statement fails on a dead connection.
type Store struct {
	cfg *config.Config

	// mu guards handle swaps only; individual statements ride the
	// bounded connection pool inside the handle.
	mu sync.Mutex
	db *gorm.DB
}

func NewStore(db *gorm.DB, cfg *config.Config) *Store {
	return &Store{cfg: cfg, db: db}
}

// Save durably records one report document with its dimension keys. A
// connection-level fault triggers exactly one reconnect and one retry of
// the same statement; a second failure, and every server-reported fault
// such as a constraint violation, is returned to the caller as fatal.
func (s *Store) Save(document map[string]any, tag, clientIP, userAgent string) error {
	data, err := json.Marshal(document)
	if err != nil {
		return err
	}

	params := map[string]any{
		"data": string(data),
		"tag":  tag,
		"ip":   clientIP,
		"ua":   userAgent,
	}

	if s.cfg != nil && s.cfg.Debug {
		log.Printf("store: insert tag=%q ip=%q ua=%q data=%s", tag, clientIP, userAgent, data)
	}

	err = s.handle().Exec(insertReport, params).Error
	if err == nil {
		return nil
	}
	if !isConnError(err) {
		persistFailuresTotal.Inc()
		return err
	}

	persistRetriesTotal.Inc()
	if rerr := s.reconnect(); rerr != nil {
		persistFailuresTotal.Inc()
		return fmt.Errorf("reconnect after %v: %w", err, rerr)
	}
	if err := s.handle().Exec(insertReport, params).Error; err != nil {
		persistFailuresTotal.Inc()
		return err
	}
	return nil
}

// Ping verifies connection liveness, swapping in a fresh handle when the
// current one is dead.
func (s *Store) Ping() error {
	if sqlDB, err := s.handle().DB(); err == nil {
		if err := sqlDB.Ping(); err == nil {
			return nil
		}
	}
	return s.reconnect()
}

func (s *Store) handle() *gorm.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// reconnect dials a fresh handle and swaps it in. In-flight statements on
// the old pool finish (or fail) independently; the old pool is closed on a
// best-effort basis.
func (s *Store) reconnect() error {
	fresh, err := open(s.cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, err := s.db.DB(); err == nil {
		_ = old.Close()
	}
	s.db = fresh
	return nil
}

// isConnError distinguishes connection-level faults, which are worth one
// reconnect, from server-reported errors such as constraint violations,
// which would fail identically on a fresh connection.
func isConnError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
