// Package statestore persists ledger snapshots in sqlite so consecutive CLI
// runs share one chain. A file lock serializes writers across processes.
package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

// DefaultName is the snapshot slot used by the CLI.
const DefaultName = "default"

var ErrLocked = errors.New("state is locked by another process")

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

// Snapshot is a persisted chain together with the deployment it was seeded with.
type Snapshot struct {
	Name        string
	ChainID     int64
	BlockNumber uint64
	Deployment  registry.Deployment
	Dump        *ledger.Dump
	SavedAt     time.Time
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite state: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			chain_id INTEGER NOT NULL,
			block_number INTEGER NOT NULL,
			deployment BLOB NOT NULL,
			payload BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		);`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init state schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lock.Locked() {
		_ = s.lock.Unlock()
	}
	return s.db.Close()
}

// Lock takes the cross-process state lock for the duration of a command. It
// waits up to timeout.
func (s *Store) Lock(ctx context.Context, timeout time.Duration) error {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLocked
		}
		return fmt.Errorf("lock state: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Load returns the named snapshot. ok is false when none was saved.
func (s *Store) Load(name string) (Snapshot, bool, error) {
	var (
		chainID, blockNumber, savedUnix int64
		deployment, payload             []byte
	)
	err := s.db.QueryRow(
		"SELECT chain_id, block_number, deployment, payload, saved_at FROM snapshots WHERE name = ?", name,
	).Scan(&chainID, &blockNumber, &deployment, &payload, &savedUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("state read: %w", err)
	}
	snap := Snapshot{
		Name:        name,
		ChainID:     chainID,
		BlockNumber: uint64(blockNumber),
		Dump:        &ledger.Dump{},
		SavedAt:     time.Unix(savedUnix, 0).UTC(),
	}
	if err := json.Unmarshal(deployment, &snap.Deployment); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode deployment: %w", err)
	}
	if err := snap.Dump.UnmarshalBinary(payload); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save writes snap under its name. The caller must hold the lock.
func (s *Store) Save(snap Snapshot) error {
	if snap.Name == "" {
		return fmt.Errorf("save state: missing snapshot name")
	}
	if snap.Dump == nil || len(snap.Dump.Headers) == 0 {
		return fmt.Errorf("save state: empty dump")
	}
	if !s.lock.Locked() {
		return fmt.Errorf("save state: lock not held")
	}
	deployment, err := json.Marshal(snap.Deployment)
	if err != nil {
		return fmt.Errorf("encode deployment: %w", err)
	}
	payload, err := snap.Dump.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	head := snap.Dump.Headers[len(snap.Dump.Headers)-1].Number.Uint64()
	_, err = s.db.Exec(`
		INSERT INTO snapshots (name, chain_id, block_number, deployment, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			chain_id=excluded.chain_id,
			block_number=excluded.block_number,
			deployment=excluded.deployment,
			payload=excluded.payload,
			saved_at=excluded.saved_at
	`, snap.Name, snap.ChainID, int64(head), deployment, payload, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("state write: %w", err)
	}
	return nil
}

// Delete drops the named snapshot. The caller must hold the lock.
func (s *Store) Delete(name string) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name); err != nil {
		return fmt.Errorf("state delete: %w", err)
	}
	return nil
}
