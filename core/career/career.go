// Package career indexes, per chart, the version best of the active version
// against the best records of the whole career.
package career

import (
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/score2dx/schema"
)

var (
	// ErrDuplicateChart is returned when a chart is added twice.
	ErrDuplicateChart = errors.New("chart already has a career record")
	// ErrUnknownChart is returned when querying a chart that was never added.
	ErrUnknownChart = errors.New("chart has no career record")
)

// Record is the career view of one chart.
//
// CareerBest always points either at VersionBest or at OtherBest.
type Record struct {
	VersionBest *schema.ChartScoreRecord
	OtherBest   [schema.RecordTypeCount]*schema.ChartScoreRecord
	CareerBest  [schema.RecordTypeCount]*schema.ChartScoreRecord
}

// Index holds the career records of every analyzed chart.
type Index struct {
	activeVersion int
	records       map[schema.ChartID]*Record
}

// New creates an empty index for the active version.
func New(activeVersion int) *Index {
	return &Index{activeVersion: activeVersion, records: make(map[schema.ChartID]*Record)}
}

type versionedRecord struct {
	version int
	record  *schema.ChartScoreRecord
}

// Add builds the career record of a chart from its records grouped by version.
// Records of each version are in chronological order; the last record of the
// active version is the version best.
func (i *Index) Add(chartID schema.ChartID, recordsByVersion map[int][]schema.ChartScoreRecord) error {
	if _, ok := i.records[chartID]; ok {
		return fmt.Errorf("%s: %w", chartID, ErrDuplicateChart)
	}

	versions := make([]int, 0, len(recordsByVersion))
	for v := range recordsByVersion {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	var flattened []versionedRecord
	for _, v := range versions {
		for _, r := range recordsByVersion[v] {
			r.Score = r.Score.Clone()
			flattened = append(flattened, versionedRecord{version: v, record: &r})
		}
	}

	record := &Record{}
	if active := recordsByVersion[i.activeVersion]; len(active) > 0 {
		last := active[len(active)-1]
		last.Score = last.Score.Clone()
		record.VersionBest = &last
	}

	for rt := range schema.RecordTypeCount {
		recordType := schema.RecordType(rt)
		best, second := findBestTwo(recordType, flattened)
		if best == nil {
			continue
		}
		if best.version == i.activeVersion && record.VersionBest != nil &&
			schema.HasRecord(recordType, record.VersionBest.Score) &&
			!schema.IsBetterRecord(recordType, best.record.Score, record.VersionBest.Score) {
			record.CareerBest[rt] = record.VersionBest
			if second != nil {
				record.OtherBest[rt] = second.record
			}
			continue
		}
		record.OtherBest[rt] = best.record
		record.CareerBest[rt] = record.OtherBest[rt]
	}

	i.records[chartID] = record
	return nil
}

// findBestTwo returns the best and second best records with the same
// promotion rule as the best score tracker. Records equal to the best are ignored.
func findBestTwo(rt schema.RecordType, records []versionedRecord) (best, second *versionedRecord) {
	for idx := range records {
		r := &records[idx]
		if !schema.HasRecord(rt, r.record.Score) {
			continue
		}
		switch {
		case best == nil:
			best = r
		case schema.IsBetterRecord(rt, r.record.Score, best.record.Score):
			second = best
			best = r
		case schema.IsBetterRecord(rt, best.record.Score, r.record.Score):
			if second == nil || schema.IsBetterRecord(rt, r.record.Score, second.record.Score) {
				second = r
			}
		}
	}
	return best, second
}

// Record returns the full career record of a chart.
func (i *Index) Record(chartID schema.ChartID) (*Record, error) {
	record, ok := i.records[chartID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", chartID, ErrUnknownChart)
	}
	return record, nil
}

// GetRecord returns one record of a chart, or nil if the chart has none of that kind.
func (i *Index) GetRecord(chartID schema.ChartID, bestType schema.BestType, rt schema.RecordType) (*schema.ChartScoreRecord, error) {
	record, err := i.Record(chartID)
	if err != nil {
		return nil, err
	}
	switch bestType {
	case schema.VersionBest:
		return record.VersionBest, nil
	case schema.OtherBest:
		return record.OtherBest[rt], nil
	case schema.CareerBest:
		return record.CareerBest[rt], nil
	}
	return nil, fmt.Errorf("invalid best type %d", int(bestType))
}

// IsVersionBestCareerBest reports whether the active version holds the career best.
func (i *Index) IsVersionBestCareerBest(chartID schema.ChartID, rt schema.RecordType) (bool, error) {
	record, err := i.Record(chartID)
	if err != nil {
		return false, err
	}
	return record.VersionBest != nil && record.CareerBest[rt] == record.VersionBest, nil
}

// Len returns the number of charts in the index.
func (i *Index) Len() int {
	return len(i.records)
}

// ChartIDs lists the indexed charts in ascending order.
func (i *Index) ChartIDs() []schema.ChartID {
	ids := make([]schema.ChartID, 0, len(i.records))
	for id := range i.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
