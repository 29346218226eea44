package csvimport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/ledger"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/internal/musicdb"
	"golang.org/x/sync/errgroup"
)

// cacheFormatVersion is bumped whenever File changes shape.
const cacheFormatVersion = 1

// ErrIidxIDMismatch is returned when a file belongs to another player than the ledger.
var ErrIidxIDMismatch = errors.New("score CSV belongs to another IIDX id")

// Loader parses score CSV files against one music database.
type Loader struct {
	db      *musicdb.Database
	table   *availability.Table
	cache   contract.CacheStore
	workers int
}

// NewLoader creates a loader. cache may be nil to disable the import cache.
func NewLoader(db *musicdb.Database, table *availability.Table, cache contract.CacheStore, workers int) *Loader {
	return &Loader{db: db, table: table, cache: cache, workers: max(workers, 1)}
}

// LoadFiles parses every path in parallel and returns the files in input order.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// LoadFile parses one file, using the import cache when available.
func (l *Loader) LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read score CSV: %w", err)
	}

	key := l.cacheKey(path, data)
	if f, ok := l.cached(key); ok {
		f.Path = path
		logging.Debug().Str("path", path).Msg("Loaded score CSV from import cache")
		return f, nil
	}

	f, err := ParseBytes(data, path, l.db, l.table)
	if err != nil {
		return nil, err
	}
	l.store(key, f)
	return f, nil
}

// cacheKey digests the music database, the file name and the content.
func (l *Loader) cacheKey(path string, data []byte) string {
	h := sha256.New()
	_, _ = h.Write([]byte(l.db.Digest))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(filepath.Base(path)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func (l *Loader) cached(key string) (*File, bool) {
	if l.cache == nil {
		return nil, false
	}
	value, formatVersion, _, err := l.cache.Get(key)
	if err != nil || formatVersion != cacheFormatVersion {
		return nil, false
	}
	var f File
	if err := json.Unmarshal(value, &f); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable import cache entry")
		return nil, false
	}
	return &f, true
}

func (l *Loader) store(key string, f *File) {
	if l.cache == nil {
		return
	}
	value, err := json.Marshal(f)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode import cache entry")
		return
	}
	if err := l.cache.Set(key, value, cacheFormatVersion, time.Now().Unix()); err != nil {
		logging.Warn().Err(err).Msg("Failed to write import cache entry")
	}
}

// Ingest files every music score of f into the ledger under scoreVersion,
// or under the file's own score version when scoreVersion is negative.
// Scores last played before that version began are skipped and reported.
func Ingest(l *ledger.Ledger, f *File, scoreVersion int) ([]string, error) {
	if l.IidxID != "" && f.IidxID != l.IidxID {
		return nil, fmt.Errorf("%w: %s is not %s", ErrIidxIDMismatch, f.IidxID, l.IidxID)
	}
	if scoreVersion < 0 {
		scoreVersion = f.ScoreVersion
	}

	var skipped []string
	for _, score := range f.MusicScores {
		err := l.AddMusicScore(scoreVersion, score)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrBeforeScoreVersion):
			skipped = append(skipped, err.Error())
		default:
			return skipped, fmt.Errorf("%s: %w", filepath.Base(f.Path), err)
		}
	}
	return skipped, nil
}
