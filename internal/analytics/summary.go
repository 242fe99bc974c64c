package analytics

import (
	"fmt"

	"github.com/noah-isme/pantau-go-api/internal/models"
)

// Summarize produces one PeriodSummary per snapshot, preserving sequence
// order. Learners are bucketed by their per-snapshot average completion, and
// the period average is the rounded mean of those per-learner averages.
func Summarize(snapshots []models.Snapshot) []PeriodSummary {
	summaries := make([]PeriodSummary, 0, len(snapshots))

	for index, snapshot := range snapshots {
		averages, order := snapshotAverages(snapshot.Rows)

		summary := PeriodSummary{
			Label:         labelFor(snapshot, index),
			Learners:      len(order),
			AvgCompletion: populationAverage(averages, order),
		}

		for _, id := range order {
			switch avg := averages[id]; {
			case avg >= completedThreshold:
				summary.Completed++
			case avg >= inProgressThreshold:
				summary.InProgress++
			default:
				summary.NotStarted++
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

func labelFor(snapshot models.Snapshot, index int) string {
	if snapshot.Name != "" {
		return snapshot.Name
	}
	return fmt.Sprintf("Week %d", index+1)
}
