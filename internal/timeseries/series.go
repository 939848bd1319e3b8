package timeseries

import (
	"math"
	"slices"
	"sort"
)

// Missing is the sentinel for absent values inside a Series.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Series stores a chronological sequence of float64 values, each
// associated with a calendar day. Days are unique and always sorted.
// Absent values are represented as NaN so fill operations can
// distinguish "no quote" from a zero quote.
type Series struct {
	days   []Date
	values []float64
}

// Constant builds a series holding the same value on every day of the
// index.
func Constant(index []Date, value float64) Series {
	s := Series{
		days:   slices.Clone(index),
		values: make([]float64, len(index)),
	}
	for i := range s.values {
		s.values[i] = value
	}
	return s
}

// Len returns the number of points in the series, missing included.
func (s Series) Len() int { return len(s.days) }

// Put adds a point, overwriting any existing value on that day.
func (s *Series) Put(on Date, v float64) {
	i, found := s.search(on)
	if found {
		s.values[i] = v
		return
	}
	s.days = slices.Insert(s.days, i, on)
	s.values = slices.Insert(s.values, i, v)
}

// Get returns the value at the exact day. A missing point or an absent
// day both report ok=false.
func (s Series) Get(on Date) (float64, bool) {
	i, found := s.search(on)
	if !found || IsMissing(s.values[i]) {
		return 0, false
	}
	return s.values[i], true
}

// AsOf returns the latest non-missing value at or before the given
// day. Points after the day are never considered.
func (s Series) AsOf(on Date) (float64, bool) {
	i, found := s.search(on)
	if !found {
		i-- // last index strictly before `on`
	}
	for ; i >= 0; i-- {
		if !IsMissing(s.values[i]) {
			return s.values[i], true
		}
	}
	return 0, false
}

// LastValid returns the most recent non-missing value.
func (s Series) LastValid() (float64, bool) {
	for i := len(s.values) - 1; i >= 0; i-- {
		if !IsMissing(s.values[i]) {
			return s.values[i], true
		}
	}
	return 0, false
}

// AllMissing reports whether the series holds no usable value.
func (s Series) AllMissing() bool {
	_, ok := s.LastValid()
	return !ok
}

// Dates returns the day index of the series.
func (s Series) Dates() []Date { return slices.Clone(s.days) }

// Values returns the raw values aligned with Dates.
func (s Series) Values() []float64 { return slices.Clone(s.values) }

// Reindex projects the series onto a new day index. Days without an
// exact point become missing.
func (s Series) Reindex(index []Date) Series {
	out := Series{
		days:   slices.Clone(index),
		values: make([]float64, len(index)),
	}
	for i, day := range index {
		if j, found := s.search(day); found {
			out.values[i] = s.values[j]
		} else {
			out.values[i] = Missing()
		}
	}
	return out
}

// ForwardFill replaces each missing value with the latest earlier
// value. Leading gaps remain missing.
func (s Series) ForwardFill() Series {
	out := s.clone()
	last := Missing()
	for i, v := range out.values {
		if IsMissing(v) {
			out.values[i] = last
		} else {
			last = v
		}
	}
	return out
}

// BackFill replaces each missing value with the nearest later value.
// Trailing gaps remain missing.
func (s Series) BackFill() Series {
	out := s.clone()
	next := Missing()
	for i := len(out.values) - 1; i >= 0; i-- {
		if IsMissing(out.values[i]) {
			out.values[i] = next
		} else {
			next = out.values[i]
		}
	}
	return out
}

// FillMissing replaces any remaining missing values with a constant.
func (s Series) FillMissing(v float64) Series {
	out := s.clone()
	for i, val := range out.values {
		if IsMissing(val) {
			out.values[i] = v
		}
	}
	return out
}

// AlignTo projects the series onto the given index, forward-filling
// gaps and back-filling a still-missing head. This is the alignment
// used when an FX series starts later than an instrument's history or
// skips its local holidays.
func (s Series) AlignTo(index []Date) Series {
	return s.Reindex(index).ForwardFill().BackFill()
}

// Mul multiplies two series elementwise. Both must share the same day
// index; missing in either side yields missing.
func (s Series) Mul(other Series) Series {
	out := s.clone()
	for i, day := range out.days {
		v, ok := other.Get(day)
		if !ok || IsMissing(out.values[i]) {
			out.values[i] = Missing()
			continue
		}
		out.values[i] *= v
	}
	return out
}

// Map applies f to every non-missing value.
func (s Series) Map(f func(float64) float64) Series {
	out := s.clone()
	for i, v := range out.values {
		if !IsMissing(v) {
			out.values[i] = f(v)
		}
	}
	return out
}

func (s Series) clone() Series {
	return Series{days: slices.Clone(s.days), values: slices.Clone(s.values)}
}

// search locates the insertion index of a day.
func (s Series) search(on Date) (int, bool) {
	return sort.Find(len(s.days), func(i int) int { return on.Compare(s.days[i]) })
}
