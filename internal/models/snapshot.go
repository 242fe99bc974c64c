package models

import "time"

// Snapshot is one imported progress report covering a single reporting period.
// Snapshots form an ordered sequence; Position is the upload order and is
// semantically significant (oldest first, newest last).
type Snapshot struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"size:255" json:"name"`
	Position  int         `gorm:"not null;index" json:"position"`
	Rows      []RawRecord `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"rows,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
