package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishintel/pkg/contracts/domain"
)

func series(fish string, startYear int, qty, amt []float64) []domain.AggregatedRow {
	out := make([]domain.AggregatedRow, len(qty))
	for i := range qty {
		out[i] = yearFish(startYear+i, fish, qty[i], amt[i])
	}
	return out
}

func TestCorrelate_MinimumYears(t *testing.T) {
	market := append(
		series("four", 2020, []float64{1, 2, 3, 4}, []float64{10, 20, 30, 40}),
		series("five", 2020, []float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50})...,
	)
	landings := append(
		series("four", 2020, []float64{2, 4, 6, 8}, []float64{5, 6, 7, 8}),
		series("five", 2020, []float64{2, 4, 6, 8, 11}, []float64{50, 40, 30, 20, 10})...,
	)

	got := Correlate(market, landings, DefaultMinCorrelationYears)

	require.Len(t, got, 1)
	row := got[0]
	assert.Equal(t, "five", row.FishKey)
	assert.Equal(t, 5, row.NYears)
	assert.Equal(t, 0.996, row.CorrQty)
	assert.Equal(t, -1.0, row.CorrAmt)
}

func TestCorrelate_UndefinedIsZero(t *testing.T) {
	market := series("flat", 2019, []float64{5, 5, 5, 5, 5}, []float64{1, 2, 3, 4, 5})
	landings := series("flat", 2019, []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5})

	got := Correlate(market, landings, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].CorrQty)
	assert.Equal(t, 1.0, got[0].CorrAmt)
}

func TestCorrelate_InnerJoinOnYear(t *testing.T) {
	market := series("a", 2015, []float64{1, 2, 3, 4, 5, 6}, []float64{1, 2, 3, 4, 5, 6})
	landings := series("a", 2017, []float64{1, 2, 3, 4, 5, 6}, []float64{1, 2, 3, 4, 5, 6})

	// only 2017..2020 overlap
	assert.Empty(t, Correlate(market, landings, 5))
	got := Correlate(market, landings, 4)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].NYears)
}

func TestCorrelate_PriceSkipsZeroQuantityYears(t *testing.T) {
	market := series("a", 2020, []float64{1, 2, 0, 4, 5, 6}, []float64{10, 40, 10, 160, 250, 360})
	landings := series("a", 2020, []float64{1, 1, 1, 1, 1, 1}, []float64{10, 20, 30, 40, 50, 60})

	got := Correlate(market, landings, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 6, got[0].NYears)
	assert.Equal(t, 1.0, got[0].CorrPrice)
}

func TestPearson(t *testing.T) {
	assert.Equal(t, 0.0, Pearson(nil, nil))
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}))
	assert.Equal(t, 0.0, Pearson([]float64{1, 1, 1}, []float64{2, 4, 6}))
}
