package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// IntradayStock is a trading pick published for the session.
type IntradayStock struct {
	Meta
	Symbol      string                       `json:"symbol" gorm:"not null;index" validate:"required"`
	CompanyName string                       `json:"companyName,omitempty"`
	EntryPrice  *decimal.Decimal             `json:"entryPrice" gorm:"type:numeric;not null" validate:"required,gte=0"`
	StopLoss    *decimal.Decimal             `json:"stopLoss" gorm:"type:numeric;not null" validate:"required,gte=0"`
	Targets     datatypes.JSONSlice[float64] `json:"targets" validate:"required,min=1,dive,gte=0"`
	Note        string                       `json:"note,omitempty" gorm:"type:text"`
}

func (IntradayStock) TableName() string { return "intraday_stocks" }

func (s *IntradayStock) Normalize() {
	s.Symbol = upper(s.Symbol)
	s.CompanyName = trim(s.CompanyName)
	s.Note = trim(s.Note)
}

const (
	ResultStatusSuccess = "success"

	ProfitByeSide  = "bye side"
	ProfitSellSide = "sell side"
)

// IntradayResult records how a pick closed out.
type IntradayResult struct {
	Meta
	Symbol      string           `json:"symbol" gorm:"not null;index" validate:"required"`
	EntryPrice  *decimal.Decimal `json:"entryPrice" gorm:"type:numeric;not null" validate:"required,gte=0"`
	ExitPrice   *decimal.Decimal `json:"exitPrice" gorm:"type:numeric;not null" validate:"required,gte=0"`
	Status      string           `json:"status" gorm:"not null" validate:"required,oneof=success"`
	Profit      string           `json:"profit" gorm:"not null" validate:"required,oneof='bye side' 'sell side'"`
	GainPercent decimal.Decimal  `json:"gainPercent" gorm:"type:numeric"`
}

func (IntradayResult) TableName() string { return "intraday_results" }

func (r *IntradayResult) Normalize() {
	r.Symbol = upper(r.Symbol)
	r.Status = lower(r.Status)
	r.Profit = lower(r.Profit)
	r.GainPercent = GainPercent(r.EntryPrice, r.ExitPrice, r.Profit)
}

var hundred = decimal.NewFromInt(100)

// GainPercent is the percentage move from entry to exit in the direction of
// the trade, rounded to two places. A zero or missing entry yields zero.
func GainPercent(entry, exit *decimal.Decimal, side string) decimal.Decimal {
	if entry == nil || exit == nil || entry.IsZero() {
		return decimal.Zero
	}
	move := exit.Sub(*entry)
	if side == ProfitSellSide {
		move = move.Neg()
	}
	return move.Div(*entry).Mul(hundred).Round(2)
}
