// Package musicdb loads the music reference database: titles, and for every
// chart the versions that carry it with their level and note count.
package musicdb

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a database file.
type Format string

// Supported formats.
const (
	JSONFormat Format = "json"
	YAMLFormat Format = "yaml"
)

// ErrUnknownFormat is returned for files that are neither JSON nor YAML.
var ErrUnknownFormat = errors.New("unknown music database format")

// Music is one song of the database.
// Difficulty maps a style difficulty such as "SPA" to range expressions and their chart info.
type Music struct {
	ID         int                                    `json:"id" yaml:"id"`
	Title      string                                 `json:"title" yaml:"title"`
	Difficulty map[string]map[string]schema.ChartInfo `json:"difficulty" yaml:"difficulty"`
}

// Database is the decoded reference file.
type Database struct {
	Musics []Music `json:"musics" yaml:"musics"`

	// CSVTitleMapping maps titles as written in score CSV files to database titles.
	CSVTitleMapping map[string]string `json:"csv_title_mapping,omitempty" yaml:"csv_title_mapping,omitempty"`

	// Digest is the SHA-256 of the decoded content.
	Digest string `json:"-" yaml:"-"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONFormat, nil
	case ".yaml", ".yml":
		return YAMLFormat, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and validates a database file.
func Load(path string) (*Database, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read music database: %w", err)
	}
	db, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Parse decodes and validates database content.
func Parse(data []byte, format Format) (*Database, error) {
	var db Database
	switch format {
	case JSONFormat:
		if err := json.Unmarshal(data, &db); err != nil {
			return nil, fmt.Errorf("failed to decode music database: %w", err)
		}
	case YAMLFormat:
		if err := yaml.Unmarshal(data, &db); err != nil {
			return nil, fmt.Errorf("failed to decode music database: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err := db.validate(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	db.Digest = hex.EncodeToString(sum[:])
	return &db, nil
}

func (db *Database) validate() error {
	ids := make(map[int]struct{}, len(db.Musics))
	titles := make(map[string]struct{}, len(db.Musics))
	for _, music := range db.Musics {
		if music.Title == "" {
			return fmt.Errorf("music %s has an empty title", schema.FormatMusicID(music.ID))
		}
		if music.ID < 0 || music.ID/1000 >= version.Count {
			return fmt.Errorf("music %q has invalid id %d", music.Title, music.ID)
		}
		if _, dup := ids[music.ID]; dup {
			return fmt.Errorf("duplicate music id %s", schema.FormatMusicID(music.ID))
		}
		if _, dup := titles[music.Title]; dup {
			return fmt.Errorf("duplicate music title %q", music.Title)
		}
		ids[music.ID] = struct{}{}
		titles[music.Title] = struct{}{}

		for key := range music.Difficulty {
			if _, err := schema.ParseStyleDifficulty(key); err != nil {
				return fmt.Errorf("music %q: %w", music.Title, err)
			}
		}
	}
	return nil
}

// ResolveTitle maps a CSV title to its database title.
func (db *Database) ResolveTitle(csvTitle string) string {
	if mapped, ok := db.CSVTitleMapping[csvTitle]; ok {
		return mapped
	}
	return csvTitle
}

// BuildTable feeds every music and chart into a new availability table.
func (db *Database) BuildTable() (*availability.Table, error) {
	table := availability.NewTable()
	for _, music := range db.Musics {
		table.AddMusic(music.ID, music.Title)

		keys := make([]string, 0, len(music.Difficulty))
		for key := range music.Difficulty {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			sd, err := schema.ParseStyleDifficulty(key)
			if err != nil {
				return nil, fmt.Errorf("music %q: %w", music.Title, err)
			}
			entries, err := sortedEntries(music.Difficulty[key])
			if err != nil {
				return nil, fmt.Errorf("music %q %s: %w", music.Title, sd, err)
			}
			if err := table.AddAvailability(schema.ToChartIDFromStyleDifficulty(music.ID, sd), entries); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

// sortedEntries orders range expressions by their first version.
func sortedEntries(ranges map[string]schema.ChartInfo) ([]availability.Entry, error) {
	type keyed struct {
		first int
		entry availability.Entry
	}
	items := make([]keyed, 0, len(ranges))
	for expr, info := range ranges {
		rangeList, err := version.ParseRangeList(expr)
		if err != nil {
			return nil, err
		}
		versions := rangeList.Versions()
		if len(versions) == 0 {
			// Console-only releases carry no arcade versions
			continue
		}
		items = append(items, keyed{first: versions[0], entry: availability.Entry{Versions: expr, Info: info}})
	}
	slices.SortFunc(items, func(a, b keyed) int { return a.first - b.first })

	entries := make([]availability.Entry, len(items))
	for i, item := range items {
		entries[i] = item.entry
	}
	return entries, nil
}

// LoadTable loads a database file and builds its availability table.
func LoadTable(path string) (*availability.Table, *Database, error) {
	db, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	table, err := db.BuildTable()
	if err != nil {
		return nil, nil, err
	}
	return table, db, nil
}
