// Package scale maps data values to pixel coordinates.
//
// Linear maps a continuous domain onto a pixel interval. Band assigns each
// category an equal, padded slot, matching the usual band-scale semantics:
// the same padding is applied between bands and at both outer edges, and
// leftover space is split evenly (align 0.5).
package scale

import (
	"gonum.org/v1/gonum/floats"
)

// Linear is a linear mapping from Domain to Range. Values outside the
// domain extrapolate; nothing is clamped.
type Linear struct {
	Domain [2]float64
	Range  [2]float64
}

// NewLinear returns a linear scale.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

// Map converts a domain value to a range value.
func (s Linear) Map(v float64) float64 {
	dd := s.Domain[1] - s.Domain[0]
	if dd == 0 {
		return (s.Range[0] + s.Range[1]) / 2
	}
	t := (v - s.Domain[0]) / dd
	return s.Range[0] + t*(s.Range[1]-s.Range[0])
}

// Invert converts a range value back to the domain.
func (s Linear) Invert(px float64) float64 {
	dr := s.Range[1] - s.Range[0]
	if dr == 0 {
		return (s.Domain[0] + s.Domain[1]) / 2
	}
	t := (px - s.Range[0]) / dr
	return s.Domain[0] + t*(s.Domain[1]-s.Domain[0])
}

// WithRange returns a copy of the scale with a different pixel range.
func (s Linear) WithRange(r0, r1 float64) Linear {
	s.Range = [2]float64{r0, r1}
	return s
}

// Ticks returns lo, lo+step, ... up to and including hi.
// A non-positive step or inverted bounds yields nil.
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	n := int((hi-lo)/step+1e-9) + 1
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, lo+float64(n-1)*step)
}

// Band maps discrete keys onto equal padded intervals.
type Band struct {
	keys      []string
	index     map[string]int
	r0, r1    float64
	padding   float64
	step      float64
	bandwidth float64
	start     float64
}

// NewBand builds a band scale over keys in order. padding is used for both
// the inner (between bands) and outer (edge) padding, clamped to [0, 1].
func NewBand(keys []string, r0, r1, padding float64) Band {
	if padding < 0 {
		padding = 0
	}
	if padding > 1 {
		padding = 1
	}
	b := Band{
		keys:    append([]string(nil), keys...),
		index:   make(map[string]int, len(keys)),
		r0:      r0,
		r1:      r1,
		padding: padding,
	}
	for i, k := range b.keys {
		if _, seen := b.index[k]; !seen {
			b.index[k] = i
		}
	}
	b.rescale()
	return b
}

func (b *Band) rescale() {
	const align = 0.5
	n := float64(len(b.keys))
	span := b.r1 - b.r0
	denom := n - b.padding + 2*b.padding
	if denom < 1 {
		denom = 1
	}
	b.step = span / denom
	b.start = b.r0 + (span-b.step*(n-b.padding))*align
	b.bandwidth = b.step * (1 - b.padding)
}

// Keys returns the domain in band order.
func (b Band) Keys() []string { return append([]string(nil), b.keys...) }

// Len returns the number of bands.
func (b Band) Len() int { return len(b.keys) }

// Bandwidth is the width of a single band.
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Step is the distance between the starts of adjacent bands.
func (b Band) Step() float64 { return b.step }

// Padding is the configured padding fraction.
func (b Band) Padding() float64 { return b.padding }

// Position returns the start of key's band.
func (b Band) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Center returns the midpoint of key's band.
func (b Band) Center(key string) (float64, bool) {
	p, ok := b.Position(key)
	if !ok {
		return 0, false
	}
	return p + b.bandwidth/2, true
}

// WithKeys returns a band scale over a new domain with the same range and padding.
func (b Band) WithKeys(keys []string) Band {
	return NewBand(keys, b.r0, b.r1, b.padding)
}
