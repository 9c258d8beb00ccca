package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/jmylchreest/auctionwatch/internal/auction"
	"github.com/jmylchreest/auctionwatch/internal/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore keeps the whole sheet in memory and rewrites the file after
// every change. Writes go to a temp file that is renamed over the original,
// guarded by an advisory lock on a sidecar ".lock" file.
type CSVStore struct {
	path     string
	lock     *flock.Flock
	lockWait time.Duration

	mu      sync.Mutex
	header  []string
	rows    [][]string
	columns map[string]int
	bom     bool
	mode    fs.FileMode
}

// NewCSVStore creates a store backed by the CSV file at path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{
		path:     path,
		lock:     flock.New(path + ".lock"),
		lockWait: 2 * time.Second,
		mode:     0o644,
	}
}

// Load reads the sheet. If the output column is missing it is added and the
// sheet saved straight away. A locked store at that point is logged and the
// snapshot still returned.
func (s *CSVStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.mode = info.Mode().Perm()
	}

	s.bom = bytes.HasPrefix(data, utf8BOM)
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s has no header", ErrMissingColumn, s.path)
	}

	s.header = records[0]
	s.rows = records[1:]
	s.columns = make(map[string]int, len(s.header))
	for i, name := range s.header {
		s.columns[strings.TrimSpace(name)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := s.columns[col]; !ok {
			return Snapshot{}, fmt.Errorf("%w: %q in %s", ErrMissingColumn, col, s.path)
		}
	}

	created := false
	if _, ok := s.columns[auction.ColumnNewAuctions]; !ok {
		s.columns[auction.ColumnNewAuctions] = len(s.header)
		s.header = append(s.header, auction.ColumnNewAuctions)
		created = true
	}
	for i, row := range s.rows {
		if len(row) < len(s.header) {
			s.rows[i] = append(row, make([]string, len(s.header)-len(row))...)
		}
	}

	if created {
		logger.Info("adding column", "column", auction.ColumnNewAuctions, "path", s.path)
		if err := s.save(ctx); err != nil {
			if !errors.Is(err, ErrLocked) {
				return Snapshot{}, err
			}
			// the header keeps the column; the next successful save writes it
			logger.Warn("could not save new column, store is locked", "path", s.path, "error", err)
		}
	}

	var snap Snapshot
	for i, row := range s.rows {
		snap.Sources = append(snap.Sources, auction.Source{
			Row:    i,
			County: strings.TrimSpace(row[s.columns[auction.ColumnCounty]]),
			State:  strings.TrimSpace(row[s.columns[auction.ColumnState]]),
			URL:    strings.TrimSpace(row[s.columns[auction.ColumnLink]]),
		})
		snap.Known = append(snap.Known, knownDates(
			row[s.columns[auction.ColumnNextAuction]],
			row[s.columns[auction.ColumnNewAuctions]],
		)...)
	}

	logger.Debug("csv store loaded", "path", s.path, "sources", len(snap.Sources), "known", len(snap.Known))
	return snap, nil
}

// Append adds the record line to its row and rewrites the file.
func (s *CSVStore) Append(ctx context.Context, rec auction.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return errors.New("csv store not loaded")
	}
	if rec.Source.Row < 0 || rec.Source.Row >= len(s.rows) {
		return fmt.Errorf("row %d out of range", rec.Source.Row)
	}

	col := s.columns[auction.ColumnNewAuctions]
	row := s.rows[rec.Source.Row]
	row[col] = auction.AppendLine(row[col], rec)

	return s.save(ctx)
}

// save rewrites the whole file. The caller holds s.mu.
func (s *CSVStore) save(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	locked, err := s.lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return classify(fmt.Errorf("lock %s: %w", s.path, err))
	}
	if !locked {
		return fmt.Errorf("%w: %s is held by another process", ErrLocked, s.path)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			logger.Debug("csv unlock failed", "path", s.path, "error", err)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return classify(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if s.bom {
		if _, err := tmp.Write(utf8BOM); err != nil {
			tmp.Close()
			return classify(fmt.Errorf("write %s: %w", tmpName, err))
		}
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(s.header); err != nil {
		tmp.Close()
		return classify(fmt.Errorf("write %s: %w", tmpName, err))
	}
	if err := w.WriteAll(s.rows); err != nil {
		tmp.Close()
		return classify(fmt.Errorf("write %s: %w", tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		return classify(fmt.Errorf("close %s: %w", tmpName, err))
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		return classify(fmt.Errorf("chmod %s: %w", tmpName, err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return classify(fmt.Errorf("replace %s: %w", s.path, err))
	}
	return nil
}

// Close releases the lock file handle.
func (s *CSVStore) Close() error {
	return s.lock.Close()
}

// classify marks permission failures as ErrLocked.
func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}
	return err
}
