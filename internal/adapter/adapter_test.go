package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromStringSkipsCommentsAndBlankLines(t *testing.T) {
	text := "# comment\n\n39.9,116.4,1700000000000\n// also a comment\n39.91\t116.41\t1700000001000\n"
	fixes := ParseFromString(text)
	require.Len(t, fixes, 2)
	assert.Equal(t, 39.9, fixes[0].Lat)
	assert.Equal(t, int64(1700000000000), fixes[0].TimeMs)
	assert.Equal(t, 39.91, fixes[1].Lat)
}

func TestParseFromStringSkipsOutOfRangeCoordinates(t *testing.T) {
	fixes := ParseFromString("95.0,200.0,1700000000000\n39.9,116.4,1700000000000\n")
	require.Len(t, fixes, 1)
	assert.Equal(t, 39.9, fixes[0].Lat)
}

func TestParseFromStringSynthesizesMissingTimestamp(t *testing.T) {
	fixes := ParseFromString("39.9,116.4\n")
	require.Len(t, fixes, 1)
	assert.NotZero(t, fixes[0].TimeMs)
}

func TestParseTimestampSecondsVsMilliseconds(t *testing.T) {
	secs, err := parseTimestamp("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), secs)

	ms, err := parseTimestamp("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms)
}

func TestParseTimestampCivilDatetime(t *testing.T) {
	ms, err := parseTimestamp("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms)
}

func TestLoadFromJSONArray(t *testing.T) {
	raw := []byte(`[{"lat":39.9,"lng":116.4,"timestamp":1700000000000},{"latitude":39.91,"longitude":116.41}]`)
	fixes, err := LoadFromJSON(raw)
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	assert.Equal(t, 39.9, fixes[0].Lat)
	assert.Equal(t, 39.91, fixes[1].Lat)
}

func TestLoadFromJSONWrappedObject(t *testing.T) {
	raw := []byte(`{"locations":[{"lat":39.9,"lng":116.4,"timestamp":1700000000000}]}`)
	fixes, err := LoadFromJSON(raw)
	require.NoError(t, err)
	require.Len(t, fixes, 1)
}

func TestLoadFromJSONNestedSectionFallback(t *testing.T) {
	raw := []byte(`{"data":[{"section":{"locations":[{"lat":39.9,"lng":116.4}]}}]}`)
	fixes, err := LoadFromJSON(raw)
	require.NoError(t, err)
	require.Len(t, fixes, 1)
}

func TestLoadFromJSONDiscardsOutOfRangeCandidate(t *testing.T) {
	raw := []byte(`[{"lat":95.0,"lng":116.4},{"lat":39.9,"lng":116.4}]`)
	fixes, err := LoadFromJSON(raw)
	require.NoError(t, err)
	require.Len(t, fixes, 1)
}

func TestParseCSVSniffsHeader(t *testing.T) {
	csvText := "lat,lng,timestamp\n39.9,116.4,1700000000000\n39.91,116.41,1700000001000\n"
	fixes, err := ParseCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, fixes, 2)
}

func TestParseCSVWithoutHeader(t *testing.T) {
	csvText := "39.9,116.4,1700000000000\n"
	fixes, err := ParseCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, fixes, 1)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	fixes, err := LoadFromJSON([]byte(`[{"lat":39.9,"lng":116.4,"timestamp":1700000000000}]`))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, fixes))

	roundTripped, err := ParseCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, fixes, roundTripped)
}
