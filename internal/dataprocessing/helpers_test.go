package dataprocessing

import (
	"fishintel/pkg/contracts/domain"
)

func fact(year int, fish string, qty, amt float64) domain.FactRecord {
	return domain.FactRecord{Year: year, FishKey: fish, FishLabel: fish, Qty: qty, Amt: amt}
}

func yearFish(year int, fish string, qty, amt float64) domain.AggregatedRow {
	return domain.AggregatedRow{
		Key:   domain.Key{Year: year, FishKey: fish},
		Qty:   qty,
		Amt:   amt,
		Price: Price(qty, amt),
	}
}

func yearFishOrigin(year int, fish, origin string, qty, amt float64) domain.AggregatedRow {
	r := yearFish(year, fish, qty, amt)
	r.Key.OriginPref = origin
	return r
}

func yearFishCategory(year int, fish, category string, qty, amt float64) domain.AggregatedRow {
	r := yearFish(year, fish, qty, amt)
	r.Key.Category = category
	return r
}
