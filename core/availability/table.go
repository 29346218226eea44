package availability

import (
	"fmt"
	"slices"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

// ActiveChart is a chart available at some version, with that version's metadata.
type ActiveChart struct {
	ChartID schema.ChartID
	Info    schema.ChartInfo
}

// Table holds the timelines of every chart in the music database.
type Table struct {
	timelines map[schema.ChartID]*Timeline
	titles    map[int]string
	musicIDs  map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		timelines: make(map[schema.ChartID]*Timeline),
		titles:    make(map[int]string),
		musicIDs:  make(map[string]int),
	}
}

// AddMusic registers the title of a music.
func (t *Table) AddMusic(musicID int, title string) {
	t.titles[musicID] = title
	t.musicIDs[title] = musicID
}

// AddAvailability loads the reference entries of one chart.
func (t *Table) AddAvailability(chartID schema.ChartID, entries []Entry) error {
	timeline, ok := t.timelines[chartID]
	if !ok {
		timeline = NewTimeline()
		t.timelines[chartID] = timeline
	}
	if err := timeline.AddAvailability(entries); err != nil {
		return fmt.Errorf("chart %s: %w", chartID, err)
	}
	return nil
}

// Timeline returns the timeline of a chart.
func (t *Table) Timeline(chartID schema.ChartID) (*Timeline, bool) {
	timeline, ok := t.timelines[chartID]
	return timeline, ok
}

// Title returns the title of a music.
func (t *Table) Title(musicID int) (string, bool) {
	title, ok := t.titles[musicID]
	return title, ok
}

// FindMusicID returns the music with the given title.
func (t *Table) FindMusicID(title string) (int, bool) {
	musicID, ok := t.musicIDs[title]
	return musicID, ok
}

// MusicCount returns the number of registered musics.
func (t *Table) MusicCount() int {
	return len(t.titles)
}

// ActiveCharts lists the charts available at a version, sorted by chart id.
func (t *Table) ActiveCharts(versionIndex int) []ActiveChart {
	var charts []ActiveChart
	for chartID, timeline := range t.timelines {
		a, err := timeline.Availability(versionIndex)
		if err != nil || !a.Status.IsAvailable() {
			continue
		}
		charts = append(charts, ActiveChart{ChartID: chartID, Info: a.Info})
	}
	slices.SortFunc(charts, func(a, b ActiveChart) int { return int(a.ChartID) - int(b.ChartID) })
	return charts
}

// IsActiveVersion reports whether the table can be analyzed at a version:
// it must have a date window and at least one available chart.
func (t *Table) IsActiveVersion(versionIndex int) bool {
	if !version.IsSupportedScoreVersion(versionIndex) {
		return false
	}
	for _, timeline := range t.timelines {
		if a, err := timeline.Availability(versionIndex); err == nil && a.Status.IsAvailable() {
			return true
		}
	}
	return false
}

// ActiveVersions lists every version for which IsActiveVersion holds.
func (t *Table) ActiveVersions() []int {
	var versions []int
	for _, v := range version.SupportedScoreVersions() {
		if t.IsActiveVersion(v) {
			versions = append(versions, v)
		}
	}
	return versions
}
