package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVHeaderAndRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "submissions.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordSubmission(sampleSubmission("S1", at)))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "S1", row[0])
	assert.Equal(t, "2024-01-02T03:04:05Z", row[1])
	assert.Equal(t, "BTC", row[2])
	assert.Equal(t, "0.015", row[4])
	assert.Equal(t, "", row[6])
	assert.Equal(t, "63000.5", row[7])
	assert.Equal(t, "3", row[8])
	assert.Equal(t, "false", row[9])
	assert.Equal(t, "77738308", row[14])
}

func TestCSVAppendsWithoutSecondHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "submissions.csv")

	for _, id := range []string{"S1", "S2"} {
		j, err := NewCSV(path)
		require.NoError(t, err)
		require.NoError(t, j.RecordSubmission(sampleSubmission(id, time.Now())))
		require.NoError(t, j.Close())
	}

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "S2", rows[2][0])
}
