// Package sqlite persists store snapshots in a SQLite database.
//
// The schema is owned by goose migrations embedded in the binary and applied
// on Open. Each snapshot is one row of store_snapshots keyed by its storage
// key.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// DatabaseFile is the database name inside the data directory.
const DatabaseFile = "dustnbones.db"

//go:embed queries/load-snapshot.sql
var loadSnapshotQuery string

//go:embed queries/save-snapshot.sql
var saveSnapshotQuery string

//go:embed queries/delete-snapshot.sql
var deleteSnapshotQuery string

//go:embed queries/list-snapshots.sql
var listSnapshotsQuery string

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Key     string    `json:"key"`
	Version int       `json:"version"`
	Size    int       `json:"size"`
	SavedAt time.Time `json:"savedAt"`
}

// Persister stores snapshots in SQLite. It is safe for concurrent use.
type Persister struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open creates dataDir if needed, opens the database inside it, and applies
// pending migrations.
func Open(ctx context.Context, dataDir string, logger *slog.Logger) (*Persister, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single connection serializes writers and keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring %s: %w", path, err)
		}
	}
	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("state database ready", "path", path)
	return &Persister{db: db, path: path, logger: logger}, nil
}

// Path returns the database file.
func (p *Persister) Path() string {
	return p.path
}

// DB exposes the underlying handle.
func (p *Persister) DB() *sql.DB {
	return p.db
}

func (p *Persister) Load(ctx context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, types.ErrStorageClosed
	}

	var payload []byte
	err := p.db.QueryRowContext(ctx, loadSnapshotQuery, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", key, err)
	}
	return payload, nil
}

// Save upserts the snapshot for key. The version column mirrors the
// payload's version field; a payload that is not a JSON object is refused
// with ErrInvalidData.
func (p *Persister) Save(ctx context.Context, key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return types.ErrStorageClosed
	}

	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		p.logger.Debug("refusing snapshot", "key", key, "error", err)
		return fmt.Errorf("saving snapshot %s: %w: %w", key, types.ErrInvalidData, err)
	}

	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := p.db.ExecContext(ctx, saveSnapshotQuery, key, head.Version, data, savedAt); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", key, err)
	}
	return nil
}

func (p *Persister) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return types.ErrStorageClosed
	}
	if _, err := p.db.ExecContext(ctx, deleteSnapshotQuery, key); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", key, err)
	}
	return nil
}

// List describes every stored snapshot, ordered by key.
func (p *Persister) List(ctx context.Context) ([]SnapshotInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, types.ErrStorageClosed
	}

	rows, err := p.db.QueryContext(ctx, listSnapshotsQuery)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var savedAt string
		if err := rows.Scan(&info.Key, &info.Version, &info.Size, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		info.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close releases the database. Close is idempotent; later calls to the other
// methods return types.ErrStorageClosed.
func (p *Persister) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
