package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCSVMapsAliasedHeaders(t *testing.T) {
	input := strings.Join([]string{
		`Student ID,First Name,Last Name,Email,District,Account Status,Created,Last Access,Course Title,Course Status,% Complete`,
		`101,Alice,Wong,alice@example.com,North,active,2024-01-02,2024-06-01,Math,enrolled,40`,
		`101,Alice,Wong,alice@example.com,North,active,2024-01-02,2024-06-01,Science,enrolled,87.5%`,
	}, "\n")

	records, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, 101, records[0].LearnerID)
	require.Equal(t, "Alice", records[0].FirstName)
	require.Equal(t, "Wong", records[0].LastName)
	require.Equal(t, "North", records[0].District)
	require.Equal(t, "Math", records[0].CourseTitle)
	require.InDelta(t, 40, records[0].Completion, 0.0001)
	require.InDelta(t, 87.5, records[1].Completion, 0.0001, "percent suffix stripped")
}

func TestDecodeCSVCoercesDirtyCells(t *testing.T) {
	input := strings.Join([]string{
		`id,first name,email,course,completion`,
		`7,Nina,,Math,n/a`,
		`7,Nina,nina@example.com,Science,`,
		`oops,Broken,b@example.com,Math,50`,
		`8,Short`,
	}, "\n")

	records, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3, "non-numeric learner id rows are skipped")

	require.Equal(t, 0.0, records[0].Completion, "malformed completion degrades to 0")
	require.Equal(t, "", records[0].Email, "blank cells stay empty strings")
	require.Equal(t, 0.0, records[1].Completion)
	require.Equal(t, 8, records[2].LearnerID)
	require.Equal(t, "", records[2].CourseTitle, "short rows pad with empty cells")
}

func TestDecodeCSVRejectsMissingLearnerColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("name,score\nAlice,40\n"))
	require.ErrorIs(t, err, ErrNoLearnerColumn)
}

func TestDecodeCSVEmptyInput(t *testing.T) {
	records, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, records)
}
