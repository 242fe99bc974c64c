package analytics

import "github.com/noah-isme/pantau-go-api/internal/models"

// recentWindowSize is the number of trailing snapshots exposed in RecentAvgs.
const recentWindowSize = 4

// Compute derives the full analytics structure from the ordered snapshot
// sequence (oldest first). It returns nil when the sequence is empty. The
// function is pure and total: it allocates all output fresh, mutates nothing
// it was given, and never fails regardless of input shape.
func Compute(snapshots []models.Snapshot) *Analytics {
	n := len(snapshots)
	if n == 0 {
		return nil
	}

	roster := AggregateRows(snapshots[n-1].Rows)

	averages := make([]map[int]int, n)
	orders := make([][]int, n)
	for i := range snapshots {
		averages[i], orders[i] = snapshotAverages(snapshots[i].Rows)
	}

	result := &Analytics{
		TotalLearners:        roster.Len(),
		AverageCompletion:    populationAverage(averages[n-1], orders[n-1]),
		Learners:             roster.Records(),
		ImprovedList:         make([]EnrichedLearner, 0),
		SupportList:          make([]EnrichedLearner, 0),
		SupportNeeded:        make([]EnrichedLearner, 0),
		FailedStudents:       make([]LearnerRecord, 0),
		FinishedStudents:     make([]LearnerRecord, 0),
		ConsistentCompleters: make([]LearnerRecord, 0),
		MonthlyData:          Summarize(snapshots),
	}

	if n >= 2 {
		previous := averages[n-2]
		current := averages[n-1]

		for _, id := range unionIDs(orders[n-1], orders[n-2]) {
			v1 := previous[id]
			v2 := current[id]
			if v1 == v2 {
				enriched := buildEnriched(snapshots, roster, averages, id, v1, v2)
				result.SupportList = append(result.SupportList, enriched)
				continue
			}
			if v1 < v2 {
				enriched := buildEnriched(snapshots, roster, averages, id, v1, v2)
				result.ImprovedList = append(result.ImprovedList, enriched)
			}
			// v1 > v2: regressed learners land in neither list.
		}
	}

	finished := make(map[int]struct{})
	for _, id := range roster.order {
		count := 0
		for _, averageMap := range averages {
			if avg, ok := averageMap[id]; ok && avg >= completedThreshold {
				count++
			}
		}
		if count >= 2 {
			record, _ := roster.Get(id)
			result.FinishedStudents = append(result.FinishedStudents, *record)
			result.ConsistentCompleters = append(result.ConsistentCompleters, *record)
			finished[id] = struct{}{}
		}
	}

	// A learner with repeated full completion is never flagged for support,
	// even when the two most recent averages are equal.
	if len(finished) > 0 {
		filtered := result.SupportList[:0]
		for _, learner := range result.SupportList {
			if _, done := finished[learner.ID]; !done {
				filtered = append(filtered, learner)
			}
		}
		result.SupportList = filtered
	}

	for _, id := range roster.order {
		record := roster.byID[id]
		if record.AvgCompletion < 25 && record.InProgress > 0 {
			result.FailedStudents = append(result.FailedStudents, *record)
		}
	}

	result.ImprovedLearners = len(result.ImprovedList)
	result.SupportNeeded = append(result.SupportNeeded, result.SupportList...)

	return result
}

// snapshotAverages maps each learner id in the rows to the rounded average
// completion across that learner's rows, plus the first-appearance id order.
func snapshotAverages(rows []models.RawRecord) (map[int]int, []int) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	order := make([]int, 0)

	for _, row := range rows {
		if _, seen := counts[row.LearnerID]; !seen {
			order = append(order, row.LearnerID)
		}
		sums[row.LearnerID] += row.Completion
		counts[row.LearnerID]++
	}

	averages := make(map[int]int, len(order))
	for _, id := range order {
		averages[id] = roundedAverage(sums[id], counts[id])
	}
	return averages, order
}

// unionIDs merges the current snapshot's id order with ids appearing only in
// the previous snapshot, preserving first-appearance order in both.
func unionIDs(current, previous []int) []int {
	seen := make(map[int]struct{}, len(current))
	union := make([]int, 0, len(current)+len(previous))
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	for _, id := range previous {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union
}

func buildEnriched(snapshots []models.Snapshot, roster *Roster, averages []map[int]int, id, v1, v2 int) EnrichedLearner {
	var base LearnerRecord
	if record, ok := roster.Get(id); ok {
		base = *record
	} else {
		base = synthesizeRecord(snapshots, id)
	}
	base.AvgCompletion = v2

	return EnrichedLearner{
		LearnerRecord: base,
		Week1Avg:      v1,
		Week2Avg:      v2,
		RecentAvgs:    recentWindow(averages, id),
	}
}

// synthesizeRecord builds a learner record for an id missing from the last
// snapshot by merging that learner's rows from the current and previous
// snapshots. Identity fields come from the most recent snapshot containing
// the id; the level tag stays empty for synthesized records.
func synthesizeRecord(snapshots []models.Snapshot, id int) LearnerRecord {
	n := len(snapshots)
	merged := make([]models.RawRecord, 0)
	merged = append(merged, rowsForLearner(snapshots[n-1].Rows, id)...)
	if n >= 2 {
		merged = append(merged, rowsForLearner(snapshots[n-2].Rows, id)...)
	}

	record := LearnerRecord{ID: id, Courses: make([]Course, 0)}
	if sub, ok := AggregateRows(merged).Get(id); ok {
		record = *sub
	}
	record.Level = ""

	for i := n - 1; i >= 0; i-- {
		if row, ok := firstRowForLearner(snapshots[i].Rows, id); ok {
			record.Name = displayName(row)
			record.Email = row.Email
			record.District = row.District
			break
		}
	}

	return record
}

// recentWindow returns the learner's rounded averages for the trailing
// window of snapshots, chronological order, exactly recentWindowSize entries.
// Entries are nil where the learner is absent (or before the first snapshot).
func recentWindow(averages []map[int]int, id int) []*int {
	n := len(averages)
	window := make([]*int, 0, recentWindowSize)
	for i := n - recentWindowSize; i < n; i++ {
		if i < 0 {
			window = append(window, nil)
			continue
		}
		if avg, ok := averages[i][id]; ok {
			value := avg
			window = append(window, &value)
		} else {
			window = append(window, nil)
		}
	}
	return window
}

func rowsForLearner(rows []models.RawRecord, id int) []models.RawRecord {
	matched := make([]models.RawRecord, 0)
	for _, row := range rows {
		if row.LearnerID == id {
			matched = append(matched, row)
		}
	}
	return matched
}

func firstRowForLearner(rows []models.RawRecord, id int) (models.RawRecord, bool) {
	for _, row := range rows {
		if row.LearnerID == id {
			return row, true
		}
	}
	return models.RawRecord{}, false
}

// populationAverage is the rounded mean of the per-learner averages, 0 when
// the snapshot holds no learners.
func populationAverage(averages map[int]int, order []int) int {
	if len(order) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range order {
		sum += float64(averages[id])
	}
	return roundedAverage(sum, len(order))
}
