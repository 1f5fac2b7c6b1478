package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/brandonbloom/proposals/internal/config"
	"github.com/brandonbloom/proposals/internal/proposal"
	"github.com/natefinch/atomic"
)

const defaultLockTimeout = 5 * time.Second

// ErrCorrupt indicates the backing file exists but does not hold a JSON
// object. Add only reports it for strict stores.
var ErrCorrupt = errors.New("backing file is not a JSON object")

// LoadOutcome describes how the existing collection was obtained.
type LoadOutcome int

const (
	// LoadExisting means the backing file parsed cleanly.
	LoadExisting LoadOutcome = iota
	// LoadMissing means no backing file existed yet.
	LoadMissing
	// LoadDiscarded means unparsable content was thrown away.
	LoadDiscarded
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadExisting:
		return "existing"
	case LoadMissing:
		return "missing"
	case LoadDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("LoadOutcome(%d)", int(o))
	}
}

// Result is the outcome of a successful Add.
type Result struct {
	ID       string
	Proposal proposal.Proposal
	Path     string
	Load     LoadOutcome
	// Count is the number of entries written, including the new one.
	Count int
}

// Store appends proposals to a single JSON file.
type Store struct {
	Path string
	// Strict makes unparsable content an error instead of starting empty.
	Strict      bool
	LockTimeout time.Duration
	NewID       proposal.IDGenerator
	Logger      *slog.Logger
}

// New returns a store for path with default settings.
func New(path string) *Store {
	return &Store{Path: path}
}

// FromConfig returns a store configured by cfg.
func FromConfig(cfg config.Config) (*Store, error) {
	timeout, err := cfg.LockTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return &Store{
		Path:        cfg.StorePath(),
		Strict:      cfg.OnCorrupt == config.OnCorruptFail,
		LockTimeout: timeout,
	}, nil
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Store) newID() (string, error) {
	if s.NewID == nil {
		return proposal.NewID()
	}
	return s.NewID()
}

// LockPath is the advisory lock file guarding Path.
func (s *Store) LockPath() string {
	return s.Path + ".lock"
}

// Add inserts a pending proposal with the given description and rewrites
// the backing file. The whole read-modify-write runs under the store lock.
func (s *Store) Add(ctx context.Context, description string) (Result, error) {
	log := s.logger().With("path", s.Path)

	unlock, err := acquireLockFile(ctx, s.LockPath(), s.lockTimeout())
	if err != nil {
		return Result{}, fmt.Errorf("lock %s: %w", s.Path, err)
	}
	defer unlock()

	coll, outcome, err := s.load(log)
	if err != nil {
		return Result{}, err
	}

	id, err := s.newID()
	if err != nil {
		return Result{}, fmt.Errorf("generate id: %w", err)
	}
	p := proposal.New(description)
	if err := coll.Insert(id, p); err != nil {
		return Result{}, err
	}
	log.Debug("adding proposal", "id", id, "description", description, "status", p.Status)

	if err := s.write(coll, outcome == LoadMissing); err != nil {
		return Result{}, err
	}
	log.Debug("wrote proposals", "count", coll.Len())
	log.Info("added proposal", "id", id)

	return Result{
		ID:       id,
		Proposal: p,
		Path:     s.Path,
		Load:     outcome,
		Count:    coll.Len(),
	}, nil
}

func (s *Store) lockTimeout() time.Duration {
	if s.LockTimeout <= 0 {
		return defaultLockTimeout
	}
	return s.LockTimeout
}

func (s *Store) load(log *slog.Logger) (*proposal.Collection, LoadOutcome, error) {
	coll, outcome, err := s.Inspect()
	switch {
	case err == nil:
	case errors.Is(err, ErrCorrupt) && !s.Strict:
		log.Warn("discarding unparsable store", "reason", err)
		return proposal.NewCollection(), LoadDiscarded, nil
	default:
		return nil, 0, err
	}
	if outcome == LoadMissing {
		log.Debug("store not found, starting a new collection")
	} else {
		log.Debug("loaded proposals", "count", coll.Len())
	}
	return coll, outcome, nil
}

// write replaces the backing file. atomic.WriteFile keeps the mode of an
// existing file but renames a 0600 temp file into place otherwise, so a
// fresh store is created first with the usual 0644 (less umask).
func (s *Store) write(coll *proposal.Collection, fresh bool) error {
	data, err := coll.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Path, err)
	}
	if fresh {
		f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("create %s: %w", s.Path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("create %s: %w", s.Path, err)
		}
	}
	if err := atomic.WriteFile(s.Path, bytes.NewReader(data)); err != nil {
		if fresh {
			_ = os.Remove(s.Path)
		}
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return nil
}

// Inspect reads the backing file without modifying it, applying the same
// parse rules as Add. A missing file yields an empty collection.
func (s *Store) Inspect() (*proposal.Collection, LoadOutcome, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return proposal.NewCollection(), LoadMissing, nil
		}
		return nil, 0, fmt.Errorf("read %s: %w", s.Path, err)
	}
	coll, err := proposal.Parse(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %w", s.Path, ErrCorrupt, err)
	}
	return coll, LoadExisting, nil
}

// CheckLock takes and releases the store lock.
func (s *Store) CheckLock(ctx context.Context) error {
	unlock, err := acquireLockFile(ctx, s.LockPath(), s.lockTimeout())
	if err != nil {
		return err
	}
	unlock()
	return nil
}
