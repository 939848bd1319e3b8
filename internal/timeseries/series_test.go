package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func index(dates ...string) []Date {
	out := make([]Date, len(dates))
	for i, d := range dates {
		out[i] = MustParseDate(d)
	}
	return out
}

func TestSeriesPutKeepsChronologicalOrder(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-16"), 2.0)
	s.Put(MustParseDate("2025-07-14"), 1.0)
	s.Put(MustParseDate("2025-07-15"), 1.5)

	assert.Equal(t, index("2025-07-14", "2025-07-15", "2025-07-16"), s.Dates())
	assert.Equal(t, []float64{1.0, 1.5, 2.0}, s.Values())

	// Overwrite on an existing day.
	s.Put(MustParseDate("2025-07-15"), 9.0)
	v, ok := s.Get(MustParseDate("2025-07-15"))
	require.True(t, ok)
	assert.Equal(t, 9.0, v)
	assert.Equal(t, 3, s.Len())
}

func TestSeriesAsOfResolvesAtOrBefore(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-10"), 7.75)
	s.Put(MustParseDate("2025-07-20"), 7.80)

	// A day between the two points resolves to the earlier one, never
	// the nearest or a later one.
	v, ok := s.AsOf(MustParseDate("2025-07-15"))
	require.True(t, ok)
	assert.Equal(t, 7.75, v)

	// Exact hit.
	v, ok = s.AsOf(MustParseDate("2025-07-20"))
	require.True(t, ok)
	assert.Equal(t, 7.80, v)

	// Before the first point there is nothing to resolve.
	_, ok = s.AsOf(MustParseDate("2025-07-09"))
	assert.False(t, ok)
}

func TestSeriesAsOfSkipsMissing(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-10"), 3.0)
	s.Put(MustParseDate("2025-07-11"), Missing())

	v, ok := s.AsOf(MustParseDate("2025-07-11"))
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestSeriesReindexAndFill(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-15"), 10.0)
	s.Put(MustParseDate("2025-07-17"), 12.0)

	idx := index("2025-07-14", "2025-07-15", "2025-07-16", "2025-07-17", "2025-07-18")
	re := s.Reindex(idx)
	assert.True(t, IsMissing(re.Values()[0]))
	assert.Equal(t, 10.0, re.Values()[1])
	assert.True(t, IsMissing(re.Values()[2]))

	filled := re.ForwardFill()
	assert.True(t, IsMissing(filled.Values()[0]), "head gap survives forward fill")
	assert.Equal(t, 10.0, filled.Values()[2])
	assert.Equal(t, 12.0, filled.Values()[4])

	complete := filled.BackFill()
	assert.Equal(t, 10.0, complete.Values()[0])
}

func TestSeriesAlignTo(t *testing.T) {
	var fx Series
	fx.Put(MustParseDate("2025-07-16"), 0.128)

	idx := index("2025-07-15", "2025-07-16", "2025-07-17")
	aligned := fx.AlignTo(idx)

	// Head back-filled from the first available value, tail forward-filled.
	assert.Equal(t, []float64{0.128, 0.128, 0.128}, aligned.Values())
}

func TestSeriesMul(t *testing.T) {
	idx := index("2025-07-15", "2025-07-16")
	prices := Constant(idx, 100.0)

	var fx Series
	fx.Put(MustParseDate("2025-07-15"), 0.5)
	fx.Put(MustParseDate("2025-07-16"), Missing())

	out := prices.Mul(fx)
	assert.Equal(t, 50.0, out.Values()[0])
	assert.True(t, IsMissing(out.Values()[1]))
}

func TestSeriesConstantAndMissing(t *testing.T) {
	idx := index("2025-07-15", "2025-07-16")
	s := Constant(idx, 1.0)
	assert.Equal(t, []float64{1.0, 1.0}, s.Values())
	assert.False(t, s.AllMissing())

	empty := Constant(idx, Missing())
	assert.True(t, empty.AllMissing())
	_, ok := empty.LastValid()
	assert.False(t, ok)

	v, ok := s.LastValid()
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestSeriesMapSkipsMissing(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-15"), 8.0)
	s.Put(MustParseDate("2025-07-16"), Missing())

	out := s.Map(func(v float64) float64 { return 1 / v })
	assert.Equal(t, 0.125, out.Values()[0])
	assert.True(t, IsMissing(out.Values()[1]))
}

func TestSeriesFillMissing(t *testing.T) {
	var s Series
	s.Put(MustParseDate("2025-07-15"), Missing())
	s.Put(MustParseDate("2025-07-16"), 4.0)

	out := s.FillMissing(2.5)
	assert.Equal(t, []float64{2.5, 4.0}, out.Values())
}
