package analytics

import (
	"math"
	"strings"

	"github.com/noah-isme/pantau-go-api/internal/models"
)

// Roster holds one snapshot's aggregated learner records, indexed by learner
// id and iterable in first-appearance order so repeated computations over the
// same rows produce identical output.
type Roster struct {
	byID  map[int]*LearnerRecord
	order []int
}

// AggregateRows collapses one snapshot's raw rows into per-learner records.
// Rows sharing a learner id merge into one record; the first row wins for
// name, email and district. Every row contributes one course and bumps the
// matching completion bucket.
func AggregateRows(rows []models.RawRecord) *Roster {
	roster := &Roster{byID: make(map[int]*LearnerRecord)}

	for _, row := range rows {
		record, ok := roster.byID[row.LearnerID]
		if !ok {
			record = &LearnerRecord{
				ID:       row.LearnerID,
				Name:     displayName(row),
				Email:    row.Email,
				District: row.District,
			}
			roster.byID[row.LearnerID] = record
			roster.order = append(roster.order, row.LearnerID)
		}

		record.Courses = append(record.Courses, Course{
			Title:      row.CourseTitle,
			Completion: row.Completion,
			Status:     row.CourseStatus,
		})
		record.CompletionSum += row.Completion

		switch {
		case row.Completion >= completedThreshold:
			record.Completed++
		case row.Completion >= inProgressThreshold:
			record.InProgress++
		default:
			record.NotStarted++
		}
	}

	for _, id := range roster.order {
		record := roster.byID[id]
		record.AvgCompletion = roundedAverage(record.CompletionSum, len(record.Courses))
		record.Level = levelFor(record.Completed)
	}

	return roster
}

// Get returns the record for a learner id, if present.
func (r *Roster) Get(id int) (*LearnerRecord, bool) {
	record, ok := r.byID[id]
	return record, ok
}

// Len reports the number of distinct learners.
func (r *Roster) Len() int {
	return len(r.order)
}

// Records returns copies of all learner records in first-appearance order.
func (r *Roster) Records() []LearnerRecord {
	records := make([]LearnerRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, *r.byID[id])
	}
	return records
}

func levelFor(completed int) string {
	switch {
	case completed >= 3:
		return LevelAdvanced
	case completed >= 1:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

func displayName(row models.RawRecord) string {
	return strings.TrimSpace(row.FirstName + " " + row.LastName)
}

// roundedAverage divides sum by count and rounds half away from zero. A count
// of zero degrades to 0 rather than dividing.
func roundedAverage(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}
