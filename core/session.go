package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/ledger"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/csvimport"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/internal/musicdb"
)

var (
	// ErrNoMusicDatabase is returned when no music database path is configured.
	ErrNoMusicDatabase = errors.New("no music database configured, set --music-db")
	// ErrNoScoreFiles is returned when there is no score CSV to load.
	ErrNoScoreFiles = errors.New("no score CSV files found")
)

// Session is the reference data and score ledger of one player.
type Session struct {
	Database    *musicdb.Database
	Table       *availability.Table
	Ledger      *ledger.Ledger
	Files       []*csvimport.File
	Diagnostics []string
}

// LoadSession loads the music database and every configured score CSV, then
// fills a ledger with them. The import cache of mgr is used when present.
func LoadSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	if cfg.MusicDatabase == "" {
		return nil, ErrNoMusicDatabase
	}
	if len(cfg.CSVPaths) == 0 {
		return nil, ErrNoScoreFiles
	}

	table, db, err := musicdb.LoadTable(cfg.MusicDatabase)
	if err != nil {
		return nil, err
	}

	var cache contract.CacheStore
	if mgr != nil {
		cache = mgr.GetImportStore()
	}
	files, err := csvimport.NewLoader(db, table, cache, cfg.Workers).LoadFiles(ctx, cfg.CSVPaths)
	if err != nil {
		return nil, err
	}
	return NewSession(db, table, files, cfg.IidxID, cfg.ScoreVersion)
}

// NewSession ingests parsed files in order. An empty iidxID takes the id of the first file;
// a negative scoreVersion lets each file use its own.
func NewSession(db *musicdb.Database, table *availability.Table, files []*csvimport.File, iidxID string, scoreVersion int) (*Session, error) {
	if iidxID == "" && len(files) > 0 {
		iidxID = files[0].IidxID
	}
	s := &Session{
		Database: db,
		Table:    table,
		Ledger:   ledger.New(iidxID),
		Files:    files,
	}
	for _, f := range files {
		s.Diagnostics = append(s.Diagnostics, f.Diagnostics...)
		skipped, err := csvimport.Ingest(s.Ledger, f, scoreVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", f.Path, err)
		}
		s.Diagnostics = append(s.Diagnostics, skipped...)
	}
	s.Diagnostics = append(s.Diagnostics, s.Ledger.Diagnostics()...)
	return s, nil
}

// logDiagnostics writes soft anomalies at warn level.
func logDiagnostics(diagnostics []string) {
	for _, d := range diagnostics {
		logging.Warn().Msg(d)
	}
}
