package dto

import "time"

// SnapshotResponse describes one imported report in the sequence.
type SnapshotResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	RowCount  int       `json:"rowCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImportRequest carries the optional metadata accompanying an upload.
type ImportRequest struct {
	Name string `json:"name" validate:"omitempty,max=255"`
}

// ImportResponse reports the outcome of a snapshot import.
type ImportResponse struct {
	Snapshot     SnapshotResponse `json:"snapshot"`
	RowsImported int              `json:"rowsImported"`
}
