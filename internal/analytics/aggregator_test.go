package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pantau-go-api/internal/models"
)

func row(learnerID int, first, last, course string, completion float64) models.RawRecord {
	return models.RawRecord{
		LearnerID:    learnerID,
		FirstName:    first,
		LastName:     last,
		Email:        first + "@example.com",
		District:     "North",
		CourseTitle:  course,
		CourseStatus: "enrolled",
		Completion:   completion,
	}
}

func snap(name string, rows ...models.RawRecord) models.Snapshot {
	return models.Snapshot{Name: name, Rows: rows}
}

func TestAggregateRowsMergesDuplicateIDs(t *testing.T) {
	first := row(7, "Nina", "Sari", "Math", 40)
	second := row(7, "Renamed", "Later", "Science", 80)
	second.Email = "other@example.com"
	second.District = "South"

	roster := AggregateRows([]models.RawRecord{first, second})

	require.Equal(t, 1, roster.Len())
	record, ok := roster.Get(7)
	require.True(t, ok)
	require.Len(t, record.Courses, 2)
	require.Equal(t, "Nina Sari", record.Name, "first row wins identity fields")
	require.Equal(t, "Nina@example.com", record.Email)
	require.Equal(t, "North", record.District)
	require.InDelta(t, 120, record.CompletionSum, 0.0001)
	require.Equal(t, 60, record.AvgCompletion)
}

func TestAggregateRowsBucketBoundaries(t *testing.T) {
	roster := AggregateRows([]models.RawRecord{
		row(1, "A", "B", "C1", 100),
		row(1, "A", "B", "C2", 99.9),
		row(1, "A", "B", "C3", 1),
		row(1, "A", "B", "C4", 0.5),
		row(1, "A", "B", "C5", 0),
		row(1, "A", "B", "C6", -5),
	})

	record, ok := roster.Get(1)
	require.True(t, ok)
	require.Equal(t, 1, record.Completed)
	require.Equal(t, 2, record.InProgress, "99.9 and 1 are in progress")
	require.Equal(t, 3, record.NotStarted, "0.5 falls below the in-progress floor")
}

func TestAggregateRowsBucketPartition(t *testing.T) {
	rows := []models.RawRecord{
		row(1, "A", "B", "C1", 100),
		row(1, "A", "B", "C2", 55),
		row(2, "C", "D", "C1", 0),
		row(2, "C", "D", "C2", 130),
		row(2, "C", "D", "C3", 0.2),
	}

	for _, record := range AggregateRows(rows).Records() {
		require.Equal(t, len(record.Courses), record.Completed+record.InProgress+record.NotStarted)
	}
}

func TestAggregateRowsLevels(t *testing.T) {
	roster := AggregateRows([]models.RawRecord{
		row(1, "A", "B", "C1", 100),
		row(1, "A", "B", "C2", 100),
		row(1, "A", "B", "C3", 100),
		row(2, "C", "D", "C1", 100),
		row(3, "E", "F", "C1", 50),
	})

	advanced, _ := roster.Get(1)
	intermediate, _ := roster.Get(2)
	beginner, _ := roster.Get(3)
	require.Equal(t, LevelAdvanced, advanced.Level)
	require.Equal(t, LevelIntermediate, intermediate.Level)
	require.Equal(t, LevelBeginner, beginner.Level)
}

func TestRoundedAverageHalfUp(t *testing.T) {
	roster := AggregateRows([]models.RawRecord{
		row(1, "A", "B", "C1", 50),
		row(1, "A", "B", "C2", 51),
	})
	record, _ := roster.Get(1)
	require.Equal(t, 51, record.AvgCompletion, "50.5 rounds up")

	require.Equal(t, 1, roundedAverage(0.5, 1))
	require.Equal(t, 2, roundedAverage(1.5, 1))
	require.Equal(t, 3, roundedAverage(2.5, 1))
	require.Equal(t, 0, roundedAverage(10, 0), "zero course count degrades to 0")
}

func TestAggregateRowsEmpty(t *testing.T) {
	roster := AggregateRows(nil)
	require.Equal(t, 0, roster.Len())
	require.Empty(t, roster.Records())
}
