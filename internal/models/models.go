package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Record is implemented by every content resource.
type Record interface {
	GetMeta() *Meta
	// Normalize trims strings, lower-cases enumerated fields and recomputes
	// derived fields. It runs before every validation.
	Normalize()
}

// Meta is embedded in every content record.
type Meta struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	IsActive  *bool     `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) GetMeta() *Meta { return m }

// ApplyDefaults injects isActive=true when absent.
func (m *Meta) ApplyDefaults() {
	if m.IsActive == nil {
		m.IsActive = Bool(true)
	}
}

func Bool(v bool) *bool { return &v }

func Price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func trim(s string) string { return strings.TrimSpace(s) }

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Sentiment is shared by both news resources.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is a calendar day held as UTC midnight. It accepts either a date
// ("2024-03-15") or a full RFC 3339 timestamp, which is reduced to its UTC
// day.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = calendarDay(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format("2006-01-02") + `"`), nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = calendarDay(v)
	case string:
		t, err := parseDate(v)
		if err != nil {
			return err
		}
		d.Time = calendarDay(t)
	case []byte:
		t, err := parseDate(string(v))
		if err != nil {
			return err
		}
		d.Time = calendarDay(t)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (Date) GormDataType() string { return "time" }

// calendarDay drops the time of day and any session timezone the driver
// applied on read.
func calendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}
