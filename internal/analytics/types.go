package analytics

// Completion bucket boundaries. A course (or a learner average) counts as
// completed at >=100, in progress between 1 inclusive and 100 exclusive, and
// not started below 1 — a completion of 0.5 is therefore "not started".
const (
	completedThreshold  = 100
	inProgressThreshold = 1
)

// Level tags derived from the number of completed courses.
const (
	LevelAdvanced     = "Advanced"
	LevelIntermediate = "Intermediate"
	LevelBeginner     = "Beginner"
)

// Course is one course row attributed to a learner within a snapshot.
type Course struct {
	Title      string  `json:"title"`
	Completion float64 `json:"completion"`
	Status     string  `json:"status"`
}

// LearnerRecord is the per-snapshot aggregate of one learner's courses.
type LearnerRecord struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	District      string   `json:"district"`
	Courses       []Course `json:"courses"`
	CompletionSum float64  `json:"completionSum"`
	Completed     int      `json:"completed"`
	InProgress    int      `json:"inProgress"`
	NotStarted    int      `json:"notStarted"`
	AvgCompletion int      `json:"avgCompletion"`
	Level         string   `json:"level"`
}

// EnrichedLearner augments a LearnerRecord with the two-period comparison and
// the recent-history window. RecentAvgs always holds exactly four entries in
// chronological order; entries are nil where the learner was absent from that
// snapshot.
type EnrichedLearner struct {
	LearnerRecord
	Week1Avg   int    `json:"week1Avg"`
	Week2Avg   int    `json:"week2Avg"`
	RecentAvgs []*int `json:"recentAvgs"`
}

// PeriodSummary aggregates one snapshot for time-series reporting. Buckets
// here classify learners by their per-snapshot average, not per course.
type PeriodSummary struct {
	Label         string `json:"label"`
	Learners      int    `json:"learners"`
	AvgCompletion int    `json:"avgCompletion"`
	Completed     int    `json:"completed"`
	InProgress    int    `json:"inProgress"`
	NotStarted    int    `json:"notStarted"`
}

// Analytics is the full cross-snapshot result computed from the current
// snapshot sequence. It is derived from scratch on every computation; nothing
// in it is maintained incrementally.
type Analytics struct {
	TotalLearners        int               `json:"totalLearners"`
	ImprovedLearners     int               `json:"improvedLearners"`
	AverageCompletion    int               `json:"averageCompletion"`
	Learners             []LearnerRecord   `json:"learners"`
	ImprovedList         []EnrichedLearner `json:"improvedList"`
	SupportList          []EnrichedLearner `json:"supportList"`
	SupportNeeded        []EnrichedLearner `json:"supportNeeded"`
	FailedStudents       []LearnerRecord   `json:"failedStudents"`
	FinishedStudents     []LearnerRecord   `json:"finishedStudents"`
	ConsistentCompleters []LearnerRecord   `json:"consistentCompleters"`
	MonthlyData          []PeriodSummary   `json:"monthlyData"`
}
