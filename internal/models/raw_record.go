package models

// RawRecord is one row of an imported progress report: a single course for a
// single learner. A learner with several courses contributes several rows to
// the same snapshot. SnapshotID is nullable so the legacy flat format (rows
// without snapshot boundaries) can be loaded and normalized at startup.
type RawRecord struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	SnapshotID     *uint   `gorm:"index" json:"-"`
	LearnerID      int     `gorm:"not null;index" json:"learnerId"`
	FirstName      string  `gorm:"size:255" json:"firstName"`
	LastName       string  `gorm:"size:255" json:"lastName"`
	Email          string  `gorm:"size:255" json:"email"`
	District       string  `gorm:"size:255" json:"district"`
	AccountStatus  string  `gorm:"size:64" json:"accountStatus"`
	AccountCreated string  `gorm:"size:64" json:"accountCreated"`
	LastAccess     string  `gorm:"size:64" json:"lastAccess"`
	CourseTitle    string  `gorm:"size:255" json:"courseTitle"`
	CourseStatus   string  `gorm:"size:64" json:"courseStatus"`
	Completion     float64 `json:"completion"`
}
