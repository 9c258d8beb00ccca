package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/jmylchreest/auctionwatch/internal/auction"
	"github.com/jmylchreest/auctionwatch/internal/logger"
)

var tableNameExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore keeps the sheet in a SQLite table whose columns carry the
// same names as the CSV header. Rows are ordered by rowid.
type SQLiteStore struct {
	db    *sql.DB
	table string

	mu     sync.Mutex
	rowIDs []int64
	cells  []string // "New Upcoming Auctions" per row
	dirty  map[int]bool
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path, table string) (*SQLiteStore, error) {
	if table == "" {
		table = "auctions"
	}
	if !tableNameExpr.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &SQLiteStore{db: db, table: table}, nil
}

// DB exposes the underlying handle, mainly for seeding sources.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Load reads all rows. A missing table is created with the full column set;
// a missing output column is added.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	columns, err := s.columns(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	if len(columns) == 0 {
		if err := s.createTable(ctx); err != nil {
			return Snapshot{}, err
		}
		logger.Warn("created empty auction table", "table", s.table)
		return Snapshot{}, nil
	}

	for _, col := range requiredColumns {
		if !columns[col] {
			return Snapshot{}, fmt.Errorf("%w: %q in table %s", ErrMissingColumn, col, s.table)
		}
	}

	if !columns[auction.ColumnNewAuctions] {
		logger.Info("adding column", "column", auction.ColumnNewAuctions, "table", s.table)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", quoteIdent(s.table), quoteIdent(auction.ColumnNewAuctions))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return Snapshot{}, classifySQL(fmt.Errorf("add column: %w", err))
		}
	}

	query, args, err := sq.Select(
		"rowid",
		quoteIdent(auction.ColumnCounty),
		quoteIdent(auction.ColumnState),
		quoteIdent(auction.ColumnLink),
		quoteIdent(auction.ColumnNextAuction),
		quoteIdent(auction.ColumnNewAuctions),
	).From(quoteIdent(s.table)).OrderBy("rowid").ToSql()
	if err != nil {
		return Snapshot{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("select sources: %w", err)
	}
	defer rows.Close()

	var snap Snapshot
	s.rowIDs = s.rowIDs[:0]
	s.cells = s.cells[:0]
	s.dirty = make(map[int]bool)
	for rows.Next() {
		var (
			id                                  int64
			county, state, link, next, newCells sql.NullString
		)
		if err := rows.Scan(&id, &county, &state, &link, &next, &newCells); err != nil {
			return Snapshot{}, fmt.Errorf("scan source: %w", err)
		}

		snap.Sources = append(snap.Sources, auction.Source{
			Row:    len(s.rowIDs),
			County: strings.TrimSpace(county.String),
			State:  strings.TrimSpace(state.String),
			URL:    strings.TrimSpace(link.String),
		})
		snap.Known = append(snap.Known, knownDates(next.String, newCells.String)...)
		s.rowIDs = append(s.rowIDs, id)
		s.cells = append(s.cells, newCells.String)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("read sources: %w", err)
	}

	logger.Debug("sqlite store loaded", "table", s.table, "sources", len(snap.Sources), "known", len(snap.Known))
	return snap, nil
}

// Append updates the row's output cell and writes every cell changed since
// the last successful write in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, rec auction.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Source.Row < 0 || rec.Source.Row >= len(s.rowIDs) {
		return fmt.Errorf("row %d out of range", rec.Source.Row)
	}

	s.cells[rec.Source.Row] = auction.AppendLine(s.cells[rec.Source.Row], rec)
	s.dirty[rec.Source.Row] = true

	return s.flush(ctx)
}

func (s *SQLiteStore) flush(ctx context.Context) error {
	rows := make([]int, 0, len(s.dirty))
	for row := range s.dirty {
		rows = append(rows, row)
	}
	slices.Sort(rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifySQL(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	for _, row := range rows {
		query, args, err := sq.Update(quoteIdent(s.table)).
			Set(quoteIdent(auction.ColumnNewAuctions), s.cells[row]).
			Where(sq.Eq{"rowid": s.rowIDs[row]}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return classifySQL(fmt.Errorf("update row %d: %w", row, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return classifySQL(fmt.Errorf("commit: %w", err))
	}
	clear(s.dirty)
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// columns returns the table's column names; empty if the table is absent.
func (s *SQLiteStore) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(s.table)))
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns[strings.TrimSpace(name)] = true
	}
	return columns, rows.Err()
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	cols := make([]string, 0, len(requiredColumns)+1)
	for _, c := range requiredColumns {
		cols = append(cols, quoteIdent(c)+" TEXT")
	}
	cols = append(cols, quoteIdent(auction.ColumnNewAuctions)+" TEXT")
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(s.table), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return classifySQL(fmt.Errorf("create table: %w", err))
	}
	return nil
}

// quoteIdent quotes a SQL identifier; column names contain spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// classifySQL marks busy and read-only failures as ErrLocked. A deadline hit
// while waiting on the busy handler counts as busy.
func classifySQL(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "readonly database") {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}
	return err
}
