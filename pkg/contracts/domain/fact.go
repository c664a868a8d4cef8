package domain

import (
	"encoding/json"
	"strconv"
)

// Source identifies which raw table a fact came from
type Source string

const (
	SourceMarket   Source = "market"
	SourceLandings Source = "landings"
)

// ForeignOrigin is the canonical origin assigned to every import/overseas origin string
const ForeignOrigin = "foreign"

// NullFloat is a float64 that may be absent.
// It is used wherever a measure can legitimately have no value: the price of a
// zero-quantity row, a year-over-year ratio without a usable prior year, a share
// of a zero total.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some returns a present value
func Some(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// None returns an absent value
func None() NullFloat {
	return NullFloat{}
}

// String renders the value for tabular output; absent values render empty
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes absent values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// FactRecord is one cleaned row from either source.
// Market rows carry Category and OriginPref; landings rows carry Area and Method.
// Month is zero for yearly facts and 1..12 for melted monthly facts.
type FactRecord struct {
	Source     Source    `json:"source"`
	Year       int       `json:"year"`
	Month      int       `json:"month,omitempty"`
	FishKey    string    `json:"fish_key"`
	FishLabel  string    `json:"fish_label"`
	Origin     string    `json:"origin,omitempty"`
	OriginPref string    `json:"origin_pref,omitempty"`
	Category   string    `json:"category,omitempty"`
	Area       string    `json:"area,omitempty"`
	Method     string    `json:"method,omitempty"`
	Qty        float64   `json:"qty"`
	Amt        float64   `json:"amt"`
	Price      NullFloat `json:"price"`
}

// Key returns the full dimension tuple of the record
func (r FactRecord) Key() Key {
	return Key{
		Year:       r.Year,
		Month:      r.Month,
		FishKey:    r.FishKey,
		Category:   r.Category,
		OriginPref: r.OriginPref,
		Area:       r.Area,
		Method:     r.Method,
	}
}

// WideLandingsRow is a landings row before its monthly columns are melted.
// Fact holds the identifying dimensions and the yearly totals; Cells holds every
// numeric month column by its header name.
type WideLandingsRow struct {
	Fact  FactRecord
	Cells map[string]float64
}
