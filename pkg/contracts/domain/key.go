package domain

import (
	"cmp"
	"fmt"
)

// Dim names a grouping dimension of a fact table
type Dim string

const (
	DimYear       Dim = "year"
	DimMonth      Dim = "month"
	DimFishKey    Dim = "fish_key"
	DimCategory   Dim = "category"
	DimOriginPref Dim = "origin_pref"
	DimArea       Dim = "area"
	DimMethod     Dim = "method"
)

// Key is a comparable dimension tuple. Only the dimensions a grouping names are
// populated; the others stay at their zero value so Key can be used as a map key.
type Key struct {
	Year       int
	Month      int
	FishKey    string
	Category   string
	OriginPref string
	Area       string
	Method     string
}

// Project keeps the named dimensions and zeroes the rest
func (k Key) Project(dims []Dim) Key {
	var p Key
	for _, d := range dims {
		switch d {
		case DimYear:
			p.Year = k.Year
		case DimMonth:
			p.Month = k.Month
		case DimFishKey:
			p.FishKey = k.FishKey
		case DimCategory:
			p.Category = k.Category
		case DimOriginPref:
			p.OriginPref = k.OriginPref
		case DimArea:
			p.Area = k.Area
		case DimMethod:
			p.Method = k.Method
		default:
			panic(fmt.Sprintf("domain: unknown dimension %q", d))
		}
	}
	return p
}

// Compare orders two keys by the given dimensions, in order.
// It returns -1, 0 or +1.
func (k Key) Compare(other Key, dims []Dim) int {
	for _, d := range dims {
		var c int
		switch d {
		case DimYear:
			c = cmp.Compare(k.Year, other.Year)
		case DimMonth:
			c = cmp.Compare(k.Month, other.Month)
		default:
			c = cmp.Compare(k.Value(d), other.Value(d))
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Value returns the value of a dimension as text
func (k Key) Value(d Dim) string {
	switch d {
	case DimFishKey:
		return k.FishKey
	case DimCategory:
		return k.Category
	case DimOriginPref:
		return k.OriginPref
	case DimArea:
		return k.Area
	case DimMethod:
		return k.Method
	case DimYear:
		return fmt.Sprint(k.Year)
	case DimMonth:
		return fmt.Sprint(k.Month)
	}
	panic(fmt.Sprintf("domain: unknown dimension %q", d))
}
