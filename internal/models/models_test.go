package models

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestGainPercent(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		exit  string
		side  string
		want  string
	}{
		{"bye side gain", "100", "110", ProfitByeSide, "10"},
		{"bye side loss", "200", "190", ProfitByeSide, "-5"},
		{"sell side gain", "250", "240", ProfitSellSide, "4"},
		{"rounded", "300", "301", ProfitByeSide, "0.33"},
		{"zero entry", "0", "10", ProfitByeSide, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GainPercent(Price(tt.entry), Price(tt.exit), tt.side)
			assert.True(t, got.Equal(*Price(tt.want)), "got %s", got)
		})
	}
}

func TestIntradayResultNormalize(t *testing.T) {
	r := IntradayResult{
		Symbol:     " tcs ",
		EntryPrice: Price("100"),
		ExitPrice:  Price("105.5"),
		Status:     "SUCCESS",
		Profit:     "Bye Side",
	}
	r.Normalize()

	assert.Equal(t, "TCS", r.Symbol)
	assert.Equal(t, ResultStatusSuccess, r.Status)
	assert.Equal(t, ProfitByeSide, r.Profit)
	assert.Equal(t, "5.5", r.GainPercent.String())
}

func TestStockNewsNormalize(t *testing.T) {
	n := StockNews{
		CompanyName: "  Acme ",
		Category:    " Business Update",
		Sentiment:   "POSITIVE",
		Tags:        []string{" q1 ", "", "beat"},
	}
	n.Normalize()

	assert.Equal(t, "Acme", n.CompanyName)
	assert.Equal(t, StockNewsBusinessUpdate, n.Category)
	assert.Equal(t, SentimentPositive, n.Sentiment)
	assert.Equal(t, []string{"q1", "beat"}, []string(n.Tags))
}

func TestDateJSON(t *testing.T) {
	var r CorporateResult
	require.NoError(t, json.Unmarshal([]byte(`{"eventDate":"2024-05-10"}`), &r))
	assert.Equal(t, NewDate(2024, time.May, 10).Time, r.EventDate.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"eventDate":"2024-05-11T09:30:00Z"}`), &r))
	assert.Equal(t, 11, r.EventDate.Day())

	out, err := json.Marshal(r.EventDate)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-11"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"eventDate":"next week"}`), &r))
}

func TestDateSurvivesSessionTimezone(t *testing.T) {
	var written CorporateResult
	require.NoError(t, json.Unmarshal([]byte(`{"eventDate":"2024-04-18"}`), &written))
	v, err := written.EventDate.Value()
	require.NoError(t, err)

	for _, zone := range []string{"America/New_York", "Asia/Kolkata", "Pacific/Auckland"} {
		t.Run(zone, func(t *testing.T) {
			loc, err := time.LoadLocation(zone)
			require.NoError(t, err)

			var read Date
			require.NoError(t, read.Scan(v.(time.Time).In(loc)))
			out, err := json.Marshal(read)
			require.NoError(t, err)
			assert.Equal(t, `"2024-04-18"`, string(out))
			assert.Equal(t, written.EventDate.Time, read.Time)
		})
	}

	var r CorporateResult
	require.NoError(t, json.Unmarshal([]byte(`{"eventDate":"2024-04-18T21:00:00-05:00"}`), &r))
	assert.Equal(t, NewDate(2024, time.April, 19).Time, r.EventDate.Time)

	var s Date
	require.NoError(t, s.Scan("2024-04-18 00:00:00+00:00"))
	assert.Equal(t, NewDate(2024, time.April, 18).Time, s.Time)
}

func TestPriceMarshalsAsNumber(t *testing.T) {
	out, err := json.Marshal(IntradayStock{EntryPrice: Price("1520.5")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"entryPrice":1520.5`)
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	u := User{}
	assert.False(t, u.ChangedPasswordAfter(issued))

	changed := issued.Add(time.Minute)
	u.PasswordChangedAt = &changed
	assert.True(t, u.ChangedPasswordAfter(issued))
	assert.False(t, u.ChangedPasswordAfter(changed.Add(time.Second)))
}

func TestPriceColumnsAreUnbounded(t *testing.T) {
	cases := map[string]struct {
		model  interface{}
		fields []string
	}{
		"intraday stock":  {&IntradayStock{}, []string{"entry_price", "stop_loss"}},
		"intraday result": {&IntradayResult{}, []string{"entry_price", "exit_price", "gain_percent"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := schema.Parse(tc.model, &sync.Map{}, schema.NamingStrategy{})
			require.NoError(t, err)
			for _, col := range tc.fields {
				f := s.LookUpField(col)
				require.NotNil(t, f, col)
				assert.Equal(t, "numeric", f.TagSettings["TYPE"], col)
			}
		})
	}
}
