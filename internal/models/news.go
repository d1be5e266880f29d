package models

import "gorm.io/datatypes"

const (
	StockNewsEarnings       = "earnings"
	StockNewsPartnership    = "partnership"
	StockNewsBusinessUpdate = "business update"
	StockNewsProductLaunch  = "product launch"
	StockNewsContract       = "contract"
	StockNewsRegulatory     = "regulatory"
)

// StockNews is company-specific news, shown for the current day only.
type StockNews struct {
	Meta
	CompanyName string                      `json:"companyName" gorm:"not null;index" validate:"required"`
	Title       string                      `json:"title" gorm:"not null" validate:"required"`
	Summary     string                      `json:"summary" gorm:"type:text;not null" validate:"required"`
	Category    string                      `json:"category" gorm:"not null" validate:"required,oneof=earnings partnership 'business update' 'product launch' contract regulatory"`
	Sentiment   string                      `json:"sentiment" gorm:"not null" validate:"required,oneof=positive neutral negative"`
	Source      string                      `json:"source,omitempty"`
	ImageURL    string                      `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Tags        datatypes.JSONSlice[string] `json:"tags,omitempty"`
}

func (StockNews) TableName() string { return "stock_news" }

func (n *StockNews) Normalize() {
	n.CompanyName = trim(n.CompanyName)
	n.Title = trim(n.Title)
	n.Summary = trim(n.Summary)
	n.Category = lower(n.Category)
	n.Sentiment = lower(n.Sentiment)
	n.Source = trim(n.Source)
	n.ImageURL = trim(n.ImageURL)
	n.Tags = normalizeTags(n.Tags)
}

const (
	MarketNewsMarkets     = "markets"
	MarketNewsPolicy      = "policy"
	MarketNewsCommodities = "commodities"
	MarketNewsGlobal      = "global"
	MarketNewsForex       = "forex"
)

// MarketNews is broad market coverage.
type MarketNews struct {
	Meta
	Title     string                      `json:"title" gorm:"not null" validate:"required"`
	Summary   string                      `json:"summary" gorm:"type:text;not null" validate:"required"`
	Category  string                      `json:"category" gorm:"not null;index" validate:"required,oneof=markets policy commodities global forex"`
	Sentiment string                      `json:"sentiment" gorm:"not null" validate:"required,oneof=positive neutral negative"`
	Source    string                      `json:"source,omitempty"`
	ImageURL  string                      `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Tags      datatypes.JSONSlice[string] `json:"tags,omitempty"`
}

func (MarketNews) TableName() string { return "market_news" }

func (n *MarketNews) Normalize() {
	n.Title = trim(n.Title)
	n.Summary = trim(n.Summary)
	n.Category = lower(n.Category)
	n.Sentiment = lower(n.Sentiment)
	n.Source = trim(n.Source)
	n.ImageURL = trim(n.ImageURL)
	n.Tags = normalizeTags(n.Tags)
}

// normalizeTags trims and drops empty tags.
func normalizeTags(tags datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	if tags == nil {
		return nil
	}
	out := make(datatypes.JSONSlice[string], 0, len(tags))
	for _, t := range tags {
		if t = trim(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
