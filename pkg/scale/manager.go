package scale

import (
	"fmt"
	"strings"
)

// DomainPolicy selects how the value axis upper bound is chosen.
type DomainPolicy int

const (
	// DomainGlobal fixes the value domain once at load time to the maximum
	// severity of the whole unfiltered dataset. The axis stays still while
	// filters change.
	DomainGlobal DomainPolicy = iota
	// DomainFiltered recomputes the value domain on every pass from the
	// largest value currently plotted.
	DomainFiltered
)

func (p DomainPolicy) String() string {
	switch p {
	case DomainFiltered:
		return "filtered"
	default:
		return "global"
	}
}

// ParseDomainPolicy parses "global" or "filtered".
func ParseDomainPolicy(s string) (DomainPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global", "fixed":
		return DomainGlobal, nil
	case "filtered", "dynamic":
		return DomainFiltered, nil
	default:
		return DomainGlobal, fmt.Errorf("unknown domain policy %q (want global or filtered)", s)
	}
}

// Manager owns the band and value scales of one chart. Domains only change
// inside Update, which the controller calls once per render pass.
type Manager struct {
	Policy DomainPolicy
	X      *Band
	Y      *Linear

	fixedMax float64
}

// NewManager returns scales for a plot area of the given size. The value
// range is inverted so zero sits on the baseline at y=height.
func NewManager(width, height, padding float64, policy DomainPolicy) *Manager {
	return &Manager{
		Policy: policy,
		X:      NewBand(0, width, padding),
		Y:      NewLinear(0, 1, height, 0),
	}
}

// SetGlobalMax records the unfiltered dataset maximum used by DomainGlobal.
func (m *Manager) SetGlobalMax(max float64) {
	m.fixedMax = max
	if m.Policy == DomainGlobal {
		m.Y.SetDomain(0, upperBound(max))
	}
}

// GlobalMax returns the value recorded by SetGlobalMax.
func (m *Manager) GlobalMax() float64 {
	return m.fixedMax
}

// Update sets the band domain to keys and, under DomainFiltered, the value
// domain to [0, plottedMax].
func (m *Manager) Update(keys []string, plottedMax float64) {
	m.X.SetDomain(keys)
	if m.Policy == DomainFiltered {
		m.Y.SetDomain(0, upperBound(plottedMax))
	}
}

// Baseline returns the pixel y of value zero.
func (m *Manager) Baseline() float64 {
	return m.Y.Map(0)
}

// upperBound keeps the domain non-degenerate so an all-zero or empty chart
// still has a usable axis.
func upperBound(max float64) float64 {
	if max <= 0 {
		return 1
	}
	return max
}
