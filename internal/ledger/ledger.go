// Package ledger persists world checksums keyed by the params digest so a
// later run can prove it reproduced the same world.
package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"worldgen/internal/pipeline"
)

const keyPrefix = "params/"

// Config controls how the store is opened.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logs. Nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns a durable on-disk configuration.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a throwaway configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Entry is one recorded world.
type Entry struct {
	Digest      string            `json:"digest"`
	Seed        int64             `json:"seed"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Checksum    string            `json:"checksum"`
	LayerHashes map[string]string `json:"layer_hashes"`
	RunID       string            `json:"run_id"`
	RecordedAt  time.Time         `json:"recorded_at"`
}

// EntryFor builds the ledger entry of a finalized result.
func EntryFor(res *pipeline.Result, at time.Time) Entry {
	e := Entry{
		Digest:      hex.EncodeToString(res.Params.Digest()),
		Seed:        res.Params.Seed,
		Width:       res.Params.Width,
		Height:      res.Params.Height,
		Checksum:    res.Checksum.String(),
		LayerHashes: make(map[string]string, len(res.LayerHashes)),
		RunID:       res.RunID,
		RecordedAt:  at.UTC(),
	}
	for name, h := range res.LayerHashes {
		e.LayerHashes[string(name)] = h.String()
	}
	return e
}

// Status is the outcome of Verify.
type Status int

const (
	Unknown Status = iota
	Match
	Mismatch
)

func (s Status) String() string {
	switch s {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	}
	return "unknown"
}

// Verdict reports how a result compares with the recorded entry.
type Verdict struct {
	Status   Status
	Recorded Entry
	// Differing lists layers whose hashes changed, sorted.
	Differing []string
}

// Ledger is a badger-backed checksum store.
type Ledger struct {
	db *badger.DB
}

// Open opens or creates the store.
func Open(cfg Config) (*Ledger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("ledger: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("ledger: create %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ledger: open badger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the store.
func (l *Ledger) Close() error { return l.db.Close() }

func key(digest string) []byte { return []byte(keyPrefix + digest) }

// Record stores e, replacing any earlier entry for the same digest.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(e.Digest), raw)
	})
}

// Lookup returns the entry recorded for a params digest.
func (l *Ledger) Lookup(ctx context.Context, digest []byte) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	var e Entry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hex.EncodeToString(digest)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("ledger: lookup: %w", err)
	}
	return e, true, nil
}

// Verify compares res against the entry recorded for its params.
func (l *Ledger) Verify(ctx context.Context, res *pipeline.Result) (Verdict, error) {
	rec, ok, err := l.Lookup(ctx, res.Params.Digest())
	if err != nil || !ok {
		return Verdict{Status: Unknown}, err
	}
	v := Verdict{Status: Match, Recorded: rec}
	got := EntryFor(res, time.Time{})
	for name, h := range got.LayerHashes {
		if rec.LayerHashes[name] != h {
			v.Differing = append(v.Differing, name)
		}
	}
	for name := range rec.LayerHashes {
		if _, ok := got.LayerHashes[name]; !ok {
			v.Differing = append(v.Differing, name)
		}
	}
	slices.Sort(v.Differing)
	if rec.Checksum != got.Checksum || len(v.Differing) > 0 {
		v.Status = Mismatch
	}
	return v, nil
}
