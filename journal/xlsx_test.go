package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.xlsx")

	rejected := sampleSubmission("R1", time.Now())
	rejected.State = "rejected"
	subs := []Submission{sampleSubmission("A1", time.Now()), rejected, sampleSubmission("A2", time.Now())}
	require.NoError(t, WriteXLSX(subs, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	rows, err := fx.GetRows(submissionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "R1", rows[2][0])

	summary, err := fx.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"State", "Count"}, {"acked", "2"}, {"rejected", "1"}}, summary)
}
