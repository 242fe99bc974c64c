package dto

// Export list and column-mode selectors.
const (
	ExportListLearners = "learners"
	ExportListImproved = "improved"
	ExportListSupport  = "support"
	ExportListFailed   = "failed"
	ExportListFinished = "finished"

	ExportModeCompact  = "compact"
	ExportModeDetailed = "detailed"
)

// ExportRequest selects which learner list to export and how wide the rows
// should be.
type ExportRequest struct {
	List string `json:"list" validate:"omitempty,oneof=learners improved support failed finished"`
	Mode string `json:"mode" validate:"omitempty,oneof=compact detailed"`
}

// ExportResult is a rendered CSV document.
type ExportResult struct {
	FileName string `json:"fileName"`
	Content  []byte `json:"-"`
}
