package timeseries

import "sort"

// Add combines two series with an inner join on exact date match, summing the
// aligned values.
func (s Series) Add(other Series) Series {
	return s.combine(other, func(a, b float64) (float64, bool) { return a + b, true })
}

// Multiply combines two series with an inner join on exact date match,
// multiplying the aligned values.
func (s Series) Multiply(other Series) Series {
	return s.combine(other, func(a, b float64) (float64, bool) { return a * b, true })
}

// Divide combines two series with an inner join on exact date match, dividing
// numerator by denominator. Rows with a zero denominator are dropped before
// the divide and non-finite results are dropped after, so the result keeps
// the series invariants.
func (s Series) Divide(den Series) Series {
	return s.combine(den, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	})
}

// DividePositive is Divide restricted to strictly positive denominators, for
// ratios where a non-positive denominator has no meaning (P/E on negative
// earnings, EV/EBITDA on negative EBITDA).
func (s Series) DividePositive(den Series) Series {
	return s.combine(den, func(a, b float64) (float64, bool) {
		if b <= 0 {
			return 0, false
		}
		return a / b, true
	})
}

func (s Series) combine(other Series, op func(a, b float64) (float64, bool)) Series {
	if len(s.points) == 0 || len(other.points) == 0 {
		return Series{}
	}
	points := make([]Point, 0, min(len(s.points), len(other.points)))
	i, j := 0, 0
	for i < len(s.points) && j < len(other.points) {
		left, right := s.points[i], other.points[j]
		switch {
		case left.Date.Before(right.Date):
			i++
		case right.Date.Before(left.Date):
			j++
		default:
			if value, ok := op(left.Value, right.Value); ok {
				points = append(points, Point{Date: left.Date, Value: value})
			}
			i++
			j++
		}
	}
	return New(points)
}

// AlignAsOf projects the series onto the dates of target using a backward-fill
// join: each target date picks up the most recent observation at or before it.
// Target dates preceding the first observation are omitted; the join never
// looks forward.
func (s Series) AlignAsOf(target Series) Series {
	if len(s.points) == 0 || len(target.points) == 0 {
		return Series{}
	}
	points := make([]Point, 0, len(target.points))
	for _, t := range target.points {
		idx := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(t.Date) })
		if idx == 0 {
			continue
		}
		points = append(points, Point{Date: t.Date, Value: s.points[idx-1].Value})
	}
	return New(points)
}
