package timeparse

import (
	"encoding/json"
	"testing"
	"time"

	"ContestSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestParseString_DayMonYearUsesSourceZone(t *testing.T) {
	got, err := ParseString("31 Dec 2023 12:30:00", ist)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 12, 31, 12, 30, 0, 0, ist)), "got %s", got)
	assert.True(t, got.Equal(time.Date(2023, 12, 31, 7, 0, 0, 0, time.UTC)))
}

func TestParse_Encodings(t *testing.T) {
	want := time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		name  string
		value any
		loc   *time.Location
	}{
		{"unix int", int64(want.Unix()), nil},
		{"unix int plain", int(want.Unix()), nil},
		{"unix float", float64(want.Unix()), nil},
		{"unix string", "1709389800", nil},
		{"unix millis", want.UnixMilli(), nil},
		{"json number", json.Number("1709389800"), nil},
		{"rfc3339", "2024-03-02T14:30:00Z", nil},
		{"rfc3339 offset", "2024-03-02T20:00:00+05:30", nil},
		{"rfc3339 fraction", "2024-03-02T14:30:00.000Z", nil},
		{"iso local", "2024-03-02T14:30:00", time.UTC},
		{"iso space", "2024-03-02 14:30:00", time.UTC},
		{"iso local in zone", "2024-03-02 20:00:00", ist},
		{"day mon year", "2 Mar 2024 14:30:00", time.UTC},
		{"locale date clock", "3/2/2024 2:30 PM", time.UTC},
		{"locale lower pm", "3/2/2024 2:30 pm", time.UTC},
		{"month name", "Mar 2, 2024 2:30 PM", time.UTC},
		{"generic fallback", "2024/03/02 14:30:00", time.UTC},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.value, tc.loc)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestParse_Unparsable(t *testing.T) {
	for _, v := range []any{nil, "", "   ", "not a date", "tbd", -5, 0, struct{}{}, time.Time{},
		"99999999999999999999999", "9223372036854775807000", int64(1e15), 1e18, json.Number("123456789012345678")} {
		_, err := Parse(v, time.UTC)
		require.Error(t, err, "value %#v", v)
		assert.ErrorIs(t, err, model.ErrUnparsableTimestamp)
	}
}

func TestParseString_RejectsOverflowingDay(t *testing.T) {
	_, ok := parseDayMonYear("31 Feb 2024 10:00:00", time.UTC)
	assert.False(t, ok)
}

func TestParseDateAndClock(t *testing.T) {
	got, err := ParseDateAndClock("2024-03-02", "2:30 PM", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)))

	got, err = ParseDateAndClock("2024-03-02", "", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))

	_, err = ParseDateAndClock("", "2:30 PM", time.UTC)
	assert.ErrorIs(t, err, model.ErrUnparsableTimestamp)
}
