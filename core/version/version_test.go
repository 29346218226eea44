package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := ParseDateTime(s)
	require.NoError(t, err)
	return tm
}

func TestNames(t *testing.T) {
	assert.Equal(t, 30, Count)
	assert.Equal(t, "1st style", Names[0])
	assert.Equal(t, "CastHour", Names[LatestVersionIndex])

	v, ok := FindVersionIndexByName("IIDX RED")
	assert.True(t, ok)
	assert.Equal(t, 11, v)

	v, ok = FindVersionIndexByName("substream")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = FindVersionIndexByName("st style")
	assert.False(t, ok)
}

func TestFindWindow(t *testing.T) {
	w, err := FindWindow(28)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2020-10-28 00:00"), w.Begin)
	assert.Equal(t, mustTime(t, "2021-10-13 00:00"), w.End)
	assert.Equal(t, mustTime(t, "2021-10-12 23:59"), w.Last())
	assert.False(t, w.IsOpen())

	latest, err := FindWindow(LatestVersionIndex)
	require.NoError(t, err)
	assert.True(t, latest.IsOpen())
	assert.True(t, latest.Last().IsZero())
	assert.True(t, latest.Contains(mustTime(t, "2030-01-01 00:00")))

	_, err = FindWindow(16)
	assert.ErrorIs(t, err, ErrNoWindow)

	_, err = FindWindow(Count)
	assert.ErrorIs(t, err, ErrVersionOutOfRange)
}

func TestWindowsAreContiguous(t *testing.T) {
	for v := FirstDateTimeVersionIndex; v < LatestVersionIndex; v++ {
		w, err := FindWindow(v)
		require.NoError(t, err)
		next, err := FindWindow(v + 1)
		require.NoError(t, err)
		assert.Equal(t, next.Begin, w.End, "version %d", v)
		assert.True(t, w.Begin.Before(w.End))
	}
}

func TestFindVersionIndex(t *testing.T) {
	tests := []struct {
		name     string
		dateTime string
		expected int
		ok       bool
	}{
		{"before first window", "2009-10-20 23:59", 0, false},
		{"first window begin", "2009-10-21 00:00", 17, true},
		{"last minute of 28", "2021-10-12 23:59", 28, true},
		{"begin of 29", "2021-10-13 00:00", 29, true},
		{"far future", "2040-01-01 00:00", 29, true},
		{"middle of 22", "2015-01-01 12:00", 22, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := FindVersionIndex(mustTime(t, tt.dateTime))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestSupportedScoreVersions(t *testing.T) {
	versions := SupportedScoreVersions()
	assert.Len(t, versions, 13)
	assert.Equal(t, 17, versions[0])
	assert.Equal(t, 29, versions[len(versions)-1])
	assert.False(t, IsSupportedScoreVersion(16))
	assert.True(t, IsSupportedScoreVersion(29))
	assert.False(t, IsSupportedScoreVersion(30))
}

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "05", FormatVersion(5))
	assert.Equal(t, "29", FormatVersion(29))

	tm := mustTime(t, "2022-04-01 13:59")
	assert.Equal(t, "2022-04-01 13:59", FormatDateTime(tm))
	assert.Equal(t, time.UTC, tm.Location())

	_, err := ParseDateTime("2022/04/01")
	assert.Error(t, err)
}

func TestParseRangeList(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected RangeList
		wantErr  bool
	}{
		{"single", "26", RangeList{{26, 26}}, false},
		{"range", "11-24", RangeList{{11, 24}}, false},
		{"mixed", "01-04, 06, 10-15", RangeList{{1, 4}, {6, 6}, {10, 15}}, false},
		{"adjacent merge", "01-04, 05", RangeList{{1, 5}}, false},
		{"unordered", "10, 05", RangeList{{5, 5}, {10, 10}}, false},
		{"console only", "cs10, 12", RangeList{}, false},
		{"empty", "", RangeList{}, false},
		{"bad width", "1-4", nil, true},
		{"bad separator", "01~04", nil, true},
		{"reversed", "10-05", nil, true},
		{"not a number", "ab", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := ParseRangeList(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, list)
		})
	}
}

func TestRangeListQueries(t *testing.T) {
	list, err := ParseRangeList("01-04, 06, 10-15")
	require.NoError(t, err)

	assert.True(t, list.Contains(3))
	assert.False(t, list.Contains(5))
	assert.Equal(t, []int{1, 2, 3, 4, 6, 10, 11, 12, 13, 14, 15}, list.Versions())

	r, ok := list.Find(12)
	assert.True(t, ok)
	assert.Equal(t, Range{10, 15}, r)
	assert.Equal(t, "10-15", r.String())
	assert.Equal(t, "01-04, 06, 10-15", list.String())
}
