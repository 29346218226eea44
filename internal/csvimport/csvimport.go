// Package csvimport reads the official score CSV export into music scores
// and files them into a ledger.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/musicdb"
	"github.com/huangsam/score2dx/schema"
)

// Column layout of the score CSV.
const (
	versionColumn = iota
	titleColumn
	genreColumn
	artistColumn
	playCountColumn
	musicColumnCount
)

// Per difficulty columns, repeated for each difficulty after the music columns.
const (
	levelColumn = iota
	exScoreColumn
	pgreatColumn
	greatColumn
	missCountColumn
	clearTypeColumn
	djLevelColumn
	scoreColumnCount
)

const (
	dateTimeColumn = musicColumnCount + schema.DifficultyCount*scoreColumnCount
	columnCount    = dateTimeColumn + 1

	// firstStyleVersionName is how the CSV names musics of both 1st style and substream.
	firstStyleVersionName = "1st&substream"
	noValue               = "---"
)

var (
	// ErrInvalidFilename is returned for files not named like 1234-5678_sp_score.csv.
	ErrInvalidFilename = errors.New("invalid score CSV filename")
	// ErrEmptyFile is returned for files without any score line.
	ErrEmptyFile = errors.New("score CSV has no score lines")
	// ErrUnknownMusic is returned for titles missing from the music database.
	ErrUnknownMusic = errors.New("music title is not in the database")
)

var filenamePattern = regexp.MustCompile(`^(\d{4}-\d{4})_(sp|dp)_score(_.*)?\.csv$`)

// File is one parsed score CSV.
type File struct {
	Path         string              `json:"path"`
	IidxID       string              `json:"iidx_id"`
	PlayStyle    schema.PlayStyle    `json:"play_style"`
	VersionName  string              `json:"version_name"`
	ScoreVersion int                 `json:"score_version"`
	LastDateTime time.Time           `json:"last_date_time"`
	PlayCount    int                 `json:"play_count"`
	MusicScores  []schema.MusicScore `json:"music_scores"`
	Diagnostics  []string            `json:"diagnostics,omitempty"`
}

// ParseFilename extracts the IIDX id and play style from a score CSV name.
func ParseFilename(path string) (string, schema.PlayStyle, error) {
	name := filepath.Base(path)
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidFilename, name)
	}
	style := schema.SinglePlay
	if m[2] == "dp" {
		style = schema.DoublePlay
	}
	return m[1], style, nil
}

// Parse reads a score CSV. Titles resolve through db to the music ids of table.
func Parse(r io.Reader, path string, db *musicdb.Database, table *availability.Table) (*File, error) {
	iidxID, style, err := ParseFilename(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columnCount
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	file := &File{Path: path, IidxID: iidxID, PlayStyle: style}
	seen := make(map[int]struct{})
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if header {
			header = false
			continue
		}

		line, _ := reader.FieldPos(0)
		score, skip, err := file.parseRecord(record, db, table)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		if skip {
			continue
		}
		if _, dup := seen[score.MusicID]; dup {
			file.Diagnostics = append(file.Diagnostics, fmt.Sprintf("line %d: duplicate music %s, keeping the first one",
				line, schema.FormatMusicID(score.MusicID)))
			continue
		}
		seen[score.MusicID] = struct{}{}
		file.MusicScores = append(file.MusicScores, score)
	}

	if len(file.MusicScores) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}

	slices.SortFunc(file.MusicScores, func(a, b schema.MusicScore) int { return a.MusicID - b.MusicID })
	for _, score := range file.MusicScores {
		if score.DateTime.After(file.LastDateTime) {
			file.LastDateTime = score.DateTime
		}
	}
	scoreVersion, ok := version.FindVersionIndex(file.LastDateTime)
	if !ok {
		return nil, fmt.Errorf("%s: last play %s precedes all versions", filepath.Base(path), version.FormatDateTime(file.LastDateTime))
	}
	file.ScoreVersion = scoreVersion
	return file, nil
}

// ParseBytes is Parse over an in-memory file.
func ParseBytes(data []byte, path string, db *musicdb.Database, table *availability.Table) (*File, error) {
	return Parse(bytes.NewReader(data), path, db, table)
}

// parseRecord converts one CSV line. skip is set for new musics the database does not know yet.
func (f *File) parseRecord(record []string, db *musicdb.Database, table *availability.Table) (schema.MusicScore, bool, error) {
	versionName := strings.TrimSpace(record[versionColumn])
	csvTitle := record[titleColumn]
	f.VersionName = versionName

	musicID, ok := table.FindMusicID(db.ResolveTitle(csvTitle))
	if !ok {
		if versionIndex, known := version.FindVersionIndexByName(versionName); known && versionIndex == version.LatestVersionIndex {
			f.Diagnostics = append(f.Diagnostics, fmt.Sprintf("new music %q of %s is not in the database, skipped", csvTitle, versionName))
			return schema.MusicScore{}, true, nil
		}
		if versionName != firstStyleVersionName {
			if _, known := version.FindVersionIndexByName(versionName); !known {
				return schema.MusicScore{}, false, fmt.Errorf("unknown version name %q", versionName)
			}
		}
		return schema.MusicScore{}, false, fmt.Errorf("%w: %q", ErrUnknownMusic, csvTitle)
	}

	playCount, err := strconv.Atoi(strings.TrimSpace(record[playCountColumn]))
	if err != nil {
		return schema.MusicScore{}, false, fmt.Errorf("invalid play count %q: %w", record[playCountColumn], err)
	}
	f.PlayCount += playCount

	dateTime, err := version.ParseDateTime(strings.TrimSpace(record[dateTimeColumn]))
	if err != nil {
		return schema.MusicScore{}, false, err
	}

	score := schema.NewMusicScore(musicID, f.PlayStyle, playCount, dateTime)
	for _, diff := range schema.Difficulties {
		columns := record[musicColumnCount+int(diff)*scoreColumnCount : musicColumnCount+(int(diff)+1)*scoreColumnCount]
		if strings.TrimSpace(columns[levelColumn]) == "0" {
			continue
		}
		chartScore, err := parseChartScore(columns)
		if err != nil {
			return schema.MusicScore{}, false, fmt.Errorf("%s %s: %w", csvTitle, diff, err)
		}
		score.SetChartScore(diff, chartScore)
	}
	return score, false, nil
}

func parseChartScore(columns []string) (schema.ChartScore, error) {
	var score schema.ChartScore
	var err error
	if score.ExScore, err = atoi(columns[exScoreColumn]); err != nil {
		return score, err
	}
	if score.PGreatCount, err = atoi(columns[pgreatColumn]); err != nil {
		return score, err
	}
	if score.GreatCount, err = atoi(columns[greatColumn]); err != nil {
		return score, err
	}
	// A failed hard gauge play has a score but no miss count
	if miss := strings.TrimSpace(columns[missCountColumn]); miss != noValue {
		n, err := atoi(miss)
		if err != nil {
			return score, err
		}
		score.MissCount = &n
	}
	if score.ClearType, err = schema.ParseClearType(columns[clearTypeColumn]); err != nil {
		return score, err
	}
	if score.DjLevel, err = schema.ParseDjLevel(columns[djLevelColumn]); err != nil {
		return score, err
	}
	return score, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
