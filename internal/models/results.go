package models

const (
	EventTypeEarnings = "earnings"
	EventTypeDividend = "dividend"
	EventTypeEvents   = "events"

	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// CorporateResult is an entry in the corporate calendar: results dates,
// dividends and other company events.
type CorporateResult struct {
	Meta
	CompanyName string `json:"companyName" gorm:"not null;index" validate:"required"`
	Title       string `json:"title" gorm:"not null" validate:"required"`
	Type        string `json:"type" gorm:"not null" validate:"required,oneof=earnings dividend events"`
	Importance  string `json:"importance" gorm:"not null" validate:"required,oneof=high medium low"`
	EventDate   Date   `json:"eventDate" gorm:"not null;index" validate:"required"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

func (CorporateResult) TableName() string { return "corporate_results" }

func (r *CorporateResult) Normalize() {
	r.CompanyName = trim(r.CompanyName)
	r.Title = trim(r.Title)
	r.Type = lower(r.Type)
	r.Importance = lower(r.Importance)
	r.Description = trim(r.Description)
}
