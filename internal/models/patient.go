package models

import (
	"time"
)

// Report represents one stored file belonging to a patient. Reports are
// immutable after upload; the only lifecycle transition is removal.
type Report struct {
	ID             string     `json:"id"`
	Filename       string     `json:"filename"`
	Path           string     `json:"path"`
	Description    string     `json:"description"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	UploadedAt     time.Time  `json:"uploadedAt"`
}

// Patient is the aggregate root: demographic fields plus the ordered report
// list. Reports are serialized into a single JSON column so the aggregate is
// loaded and saved as one document, the way the records were originally kept.
type Patient struct {
	BaseModel
	Name    string `gorm:"size:255;not null" json:"name"`
	Age     int    `gorm:"not null" json:"age"`
	Address string `gorm:"size:512;not null" json:"address"`
	Phone   string `gorm:"size:64;not null" json:"phone"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Active  bool   `json:"active"`

	// Version guards whole-document saves against lost updates. It is
	// compared and incremented by the repository on every Save.
	Version int `gorm:"not null;default:0" json:"-"`

	Reports []Report `gorm:"serializer:json;type:json" json:"reports"`
}

// ReportIndex returns the position of the report with the given id in the
// sequence, or -1 when it is not present.
func (p *Patient) ReportIndex(reportID string) int {
	for i := range p.Reports {
		if p.Reports[i].ID == reportID {
			return i
		}
	}
	return -1
}

// RemoveReportAt drops the report at index i, preserving the relative order
// of the remaining reports.
func (p *Patient) RemoveReportAt(i int) {
	p.Reports = append(p.Reports[:i], p.Reports[i+1:]...)
}
