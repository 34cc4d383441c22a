// Package store persists completed monthly analyses. The primary backend
// is Postgres with the analysis document in a JSONB column; a memory
// backend serves tests and DB-less deployments.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/cianfru/aerowake/pkg/models"
)

// ErrNotFound is returned when no analysis matches the lookup.
var ErrNotFound = errors.New("store: analysis not found")

// Record is a stored analysis with its storage metadata.
type Record struct {
	ID        string                 `json:"id"`
	PilotID   string                 `json:"pilot_id"`
	Month     string                 `json:"month"`
	Preset    string                 `json:"preset"`
	CreatedAt time.Time              `json:"created_at"`
	Analysis  models.MonthlyAnalysis `json:"analysis"`
}

// Summary is the listing projection: everything but the document body.
type Summary struct {
	ID        string    `json:"id"`
	PilotID   string    `json:"pilot_id"`
	Month     string    `json:"month"`
	Preset    string    `json:"preset"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence surface the API handlers depend on.
type Store interface {
	Save(ctx context.Context, pilotID, month, preset string, a models.MonthlyAnalysis) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, pilotID string, limit int) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ---------------------------------------------------------------------------
// Postgres backend
// ---------------------------------------------------------------------------

// Postgres stores analyses in a single JSONB-backed table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects using the DB_* environment variables and creates
// the schema if missing.
func OpenPostgres() (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "aerowake"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_NAME", "aerowake"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	p := &Postgres{db: db}
	if err = p.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return p, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (p *Postgres) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			pilot_id VARCHAR(64) NOT NULL,
			month VARCHAR(7) NOT NULL,
			preset VARCHAR(32) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			document JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_pilot ON analyses(pilot_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_month ON analyses(pilot_id, month)`,
	}
	for _, q := range queries {
		if _, err := p.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Save writes an analysis and returns the stored record.
func (p *Postgres) Save(ctx context.Context, pilotID, month, preset string, a models.MonthlyAnalysis) (Record, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return Record{}, fmt.Errorf("store: marshal: %w", err)
	}

	rec := Record{
		ID:        uuid.New().String(),
		PilotID:   pilotID,
		Month:     month,
		Preset:    preset,
		CreatedAt: time.Now().UTC(),
		Analysis:  a,
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO analyses (id, pilot_id, month, preset, created_at, document)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.PilotID, rec.Month, rec.Preset, rec.CreatedAt, doc)
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return rec, nil
}

// Get fetches one analysis by ID.
func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	var doc []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id, pilot_id, month, preset, created_at, document
		 FROM analyses WHERE id = $1`, id).
		Scan(&rec.ID, &rec.PilotID, &rec.Month, &rec.Preset, &rec.CreatedAt, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get: %w", err)
	}
	if err = json.Unmarshal(doc, &rec.Analysis); err != nil {
		return Record{}, fmt.Errorf("store: unmarshal: %w", err)
	}
	return rec, nil
}

// List returns summaries for a pilot, newest first.
func (p *Postgres) List(ctx context.Context, pilotID string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, pilot_id, month, preset, created_at
		 FROM analyses WHERE pilot_id = $1
		 ORDER BY created_at DESC LIMIT $2`, pilotID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.PilotID, &s.Month, &s.Preset, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes one analysis by ID.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// ---------------------------------------------------------------------------
// Memory backend
// ---------------------------------------------------------------------------

// Memory is an in-process Store for tests and DB-less runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save stores the analysis under a fresh UUID.
func (m *Memory) Save(_ context.Context, pilotID, month, preset string, a models.MonthlyAnalysis) (Record, error) {
	rec := Record{
		ID:        uuid.New().String(),
		PilotID:   pilotID,
		Month:     month,
		Preset:    preset,
		CreatedAt: time.Now().UTC(),
		Analysis:  a,
	}
	m.mu.Lock()
	m.records[rec.ID] = rec
	m.mu.Unlock()
	return rec, nil
}

// Get fetches one analysis by ID.
func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns summaries for a pilot, newest first.
func (m *Memory) List(_ context.Context, pilotID string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	m.mu.RLock()
	var out []Summary
	for _, rec := range m.records {
		if rec.PilotID != pilotID {
			continue
		}
		out = append(out, Summary{
			ID: rec.ID, PilotID: rec.PilotID, Month: rec.Month,
			Preset: rec.Preset, CreatedAt: rec.CreatedAt,
		})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes one analysis by ID.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
