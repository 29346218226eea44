// Package version is the catalog of IIDX versions and their release date windows.
package version

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/score2dx/schema"
)

// Names lists every version name by index.
var Names = [...]string{
	"1st style",
	"substream",
	"2nd style",
	"3rd style",
	"4th style",
	"5th style",
	"6th style",
	"7th style",
	"8th style",
	"9th style",
	"10th style",
	"IIDX RED",
	"HAPPY SKY",
	"DistorteD",
	"GOLD",
	"DJ TROOPERS",
	"EMPRESS",
	"SIRIUS",
	"Resort Anthem",
	"Lincle",
	"tricoro",
	"SPADA",
	"PENDUAL",
	"copula",
	"SINOBUZ",
	"CANNON BALLERS",
	"Rootage",
	"HEROIC VERSE",
	"BISTROVER",
	"CastHour",
}

// Count is the number of versions in the catalog.
const Count = len(Names)

// LatestVersionIndex is the newest version.
const LatestVersionIndex = Count - 1

// FirstDateTimeVersionIndex is the first version with a known date window.
// Score data before it cannot be placed on the timeline.
const FirstDateTimeVersionIndex = 17

// ErrNoWindow is returned for versions without a date window.
var ErrNoWindow = errors.New("version has no date window")

// ErrVersionOutOfRange is returned for indices outside the catalog.
var ErrVersionOutOfRange = errors.New("version index out of range")

// Release dates from FirstDateTimeVersionIndex on. tricoro uses the
// Ver.UP release rather than the limited machine release.
var beginDates = [...]string{
	"2009-10-21 00:00", // 17 SIRIUS
	"2010-09-15 00:00",
	"2011-09-15 00:00",
	"2012-09-25 00:00",
	"2013-11-13 00:00",
	"2014-09-17 00:00",
	"2015-11-11 00:00",
	"2016-10-26 00:00",
	"2017-12-21 00:00",
	"2018-11-07 00:00",
	"2019-10-16 00:00",
	"2020-10-28 00:00",
	"2021-10-13 00:00", // 29 CastHour
}

var beginTimes = func() []time.Time {
	times := make([]time.Time, len(beginDates))
	for i, s := range beginDates {
		t, err := ParseDateTime(s)
		if err != nil {
			panic(err)
		}
		times[i] = t
	}
	return times
}()

// Window is the half-open date window [Begin, End) of a version.
// End is zero for the latest version.
type Window struct {
	Version int
	Begin   time.Time
	End     time.Time
}

// IsOpen reports whether the window has no end.
func (w Window) IsOpen() bool {
	return w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Begin) {
		return false
	}
	return w.IsOpen() || t.Before(w.End)
}

// Last returns the last minute of the window, or the zero time for an open window.
// Scores recorded after the window are reported at this time.
func (w Window) Last() time.Time {
	if w.IsOpen() {
		return time.Time{}
	}
	return w.End.Add(-time.Minute)
}

func (w Window) String() string {
	end := ""
	if !w.IsOpen() {
		end = FormatDateTime(w.Last())
	}
	return fmt.Sprintf("[%s, %s]", FormatDateTime(w.Begin), end)
}

// FindWindow returns the date window of a version.
func FindWindow(versionIndex int) (Window, error) {
	if versionIndex < 0 || versionIndex >= Count {
		return Window{}, fmt.Errorf("%w: %d", ErrVersionOutOfRange, versionIndex)
	}
	if versionIndex < FirstDateTimeVersionIndex {
		return Window{}, fmt.Errorf("%w: %s", ErrNoWindow, FormatVersion(versionIndex))
	}
	i := versionIndex - FirstDateTimeVersionIndex
	w := Window{Version: versionIndex, Begin: beginTimes[i]}
	if i+1 < len(beginTimes) {
		w.End = beginTimes[i+1]
	}
	return w, nil
}

// FindVersionIndex returns the version whose window contains t.
// It returns false when t precedes the first known window.
func FindVersionIndex(t time.Time) (int, bool) {
	if t.Before(beginTimes[0]) {
		return 0, false
	}
	versionIndex := FirstDateTimeVersionIndex
	for i, begin := range beginTimes {
		if !t.Before(begin) {
			versionIndex = FirstDateTimeVersionIndex + i
		}
	}
	return versionIndex, true
}

// IsSupportedScoreVersion reports whether scores can be recorded for the version.
func IsSupportedScoreVersion(versionIndex int) bool {
	return versionIndex >= FirstDateTimeVersionIndex && versionIndex < Count
}

// SupportedScoreVersions lists versions that accept score data.
func SupportedScoreVersions() []int {
	versions := make([]int, 0, Count-FirstDateTimeVersionIndex)
	for v := FirstDateTimeVersionIndex; v < Count; v++ {
		versions = append(versions, v)
	}
	return versions
}

// FindVersionIndexByName looks up a version by its database name, e.g. "IIDX RED".
func FindVersionIndexByName(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// FormatVersion formats a version index as two digits.
func FormatVersion(versionIndex int) string {
	return fmt.Sprintf("%02d", versionIndex)
}

// ParseDateTime parses the minute-resolution date time used by score sources.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(schema.DateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date time %q: %w", s, err)
	}
	return t, nil
}

// FormatDateTime is the inverse of ParseDateTime.
func FormatDateTime(t time.Time) string {
	return t.Format(schema.DateTimeLayout)
}
