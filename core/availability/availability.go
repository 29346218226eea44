// Package availability derives, per chart, which versions carry the chart and
// which chart revision (note layout) each version uses.
package availability

import (
	"errors"
	"fmt"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

// ErrVersionOutOfRange is returned when a range expression names a version beyond the catalog.
var ErrVersionOutOfRange = errors.New("availability version out of range")

// Entry is one range expression of a chart's reference data, e.g. {"01-04, 06", {Level: 5, Note: 363}}.
type Entry struct {
	Versions string           `json:"versions" yaml:"versions"`
	Info     schema.ChartInfo `json:"info" yaml:"info"`
}

// ChartAvailability is the state of a chart at one version.
// Revision and Info are only meaningful when Status is available.
type ChartAvailability struct {
	Status   schema.ChartStatus
	Revision int
	Info     schema.ChartInfo
}

// Timeline holds the availability of one chart at every version.
type Timeline struct {
	versions [version.Count]ChartAvailability
	ranges   []version.RangeList
	notes    []int
}

// NewTimeline returns a timeline where the chart is never available.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// AddAvailability fills the timeline from the chart's reference entries.
// Entries are expected to be ordered by first version and not to overlap.
func (t *Timeline) AddAvailability(entries []Entry) error {
	for _, entry := range entries {
		rangeList, err := version.ParseRangeList(entry.Versions)
		if err != nil {
			return err
		}

		for _, v := range rangeList.Versions() {
			if v >= version.Count {
				return fmt.Errorf("%w: %s in %q", ErrVersionOutOfRange, version.FormatVersion(v), entry.Versions)
			}
		}

		revision := t.revisionOf(entry.Info.Note)
		for _, v := range rangeList.Versions() {
			t.versions[v] = ChartAvailability{
				Status:   schema.Available,
				Revision: revision,
				Info:     entry.Info,
			}
		}
		t.ranges = append(t.ranges, rangeList)
	}

	previous := schema.NotAvailable
	for v := range t.versions {
		current := &t.versions[v]
		switch {
		case current.Status == schema.Available && (previous == schema.NotAvailable || previous == schema.Removed):
			current.Status = schema.BeginAvailable
		case current.Status == schema.NotAvailable && previous != schema.NotAvailable:
			current.Status = schema.Removed
		}
		previous = current.Status
	}
	return nil
}

// revisionOf assigns revisions to distinct note counts in first-seen order.
func (t *Timeline) revisionOf(note int) int {
	for i, n := range t.notes {
		if n == note {
			return i
		}
	}
	t.notes = append(t.notes, note)
	return len(t.notes) - 1
}

// Availability returns the state of the chart at a version.
func (t *Timeline) Availability(versionIndex int) (ChartAvailability, error) {
	if versionIndex < 0 || versionIndex >= version.Count {
		return ChartAvailability{}, fmt.Errorf("%w: %d", ErrVersionOutOfRange, versionIndex)
	}
	return t.versions[versionIndex], nil
}

// RevisionCount returns the number of distinct chart revisions.
func (t *Timeline) RevisionCount() int {
	return len(t.notes)
}

// FindSameChartVersions lists the versions that carry the same revision as versionIndex.
// It is empty when the chart is not available at versionIndex.
func (t *Timeline) FindSameChartVersions(versionIndex int) []int {
	a, err := t.Availability(versionIndex)
	if err != nil || !a.Status.IsAvailable() {
		return nil
	}
	var versions []int
	for v, other := range t.versions {
		if other.Status.IsAvailable() && other.Revision == a.Revision {
			versions = append(versions, v)
		}
	}
	return versions
}

// FirstAvailableVersions returns, by revision, the first version carrying it.
func (t *Timeline) FirstAvailableVersions() []int {
	firsts := make([]int, len(t.notes))
	seen := make([]bool, len(t.notes))
	for v, a := range t.versions {
		if a.Status.IsAvailable() && !seen[a.Revision] {
			firsts[a.Revision] = v
			seen[a.Revision] = true
		}
	}
	return firsts
}

// ContainingRange returns the explicit range, as written in the reference
// data, that contains versionIndex.
func (t *Timeline) ContainingRange(versionIndex int) (version.Range, bool) {
	for _, rangeList := range t.ranges {
		if r, ok := rangeList.Find(versionIndex); ok {
			return r, true
		}
	}
	return version.Range{}, false
}
