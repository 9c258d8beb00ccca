// Package store persists auction sources and the upcoming auctions found
// for them. A store is a table with one row per source; newly found
// auctions are appended as record lines to the row's "New Upcoming
// Auctions" column.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/auctionwatch/internal/auction"
)

// Error types for distinguishing failure reasons.
var (
	// ErrLocked indicates another process holds the store or it cannot be written.
	ErrLocked = errors.New("store is locked or not writable")
	// ErrMissingColumn indicates a required input column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Driver names accepted by Open.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// requiredColumns must exist before a store can be used.
var requiredColumns = []string{
	auction.ColumnCounty,
	auction.ColumnState,
	auction.ColumnLink,
	auction.ColumnNextAuction,
}

// Snapshot is the state read from a store at startup.
type Snapshot struct {
	Sources []auction.Source
	// Known holds every date string already recorded, from both the
	// "Next Auction" column and existing record lines.
	Known []string
}

// Store is a tabular record store.
type Store interface {
	// Load reads sources and known dates, creating the output column if
	// it does not exist yet.
	Load(ctx context.Context) (Snapshot, error)

	// Append adds rec to its source row and persists the change. When
	// persisting fails the change is kept in memory and included in the
	// next successful write.
	Append(ctx context.Context, rec auction.Record) error

	// Close releases the store.
	Close() error
}

// Open creates a store for driver. table is only used by SQL drivers.
func Open(driver, path, table string) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverCSV, "":
		return NewCSVStore(path), nil
	case DriverSQLite:
		return OpenSQLite(path, table)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}

// knownDates collects the seed values for one row.
func knownDates(nextAuction, newAuctions string) []string {
	var known []string
	if s := strings.TrimSpace(nextAuction); s != "" {
		known = append(known, s)
	}
	return append(known, auction.DatesFromCell(newAuctions)...)
}
