// Package rarity defines the ordered card rarity ladder, the duplicate
// cost to advance between adjacent tiers and the configurable draw
// weight table used by the draw engine.
package rarity

import (
	"fmt"
	"math"
	"strings"
)

type Tier int

const (
	Common Tier = iota
	Rare
	VeryRare
	Epic
	Legendary

	NumTiers = 5
)

var tierNames = [NumTiers]string{"common", "rare", "very_rare", "epic", "legendary"}

// tierPoints is informational only, consumed by stats/reporting.
var tierPoints = [NumTiers]int64{1, 3, 6, 10, 20}

func (t Tier) Valid() bool {
	return t >= Common && t <= Legendary
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Parse converts a config/DB string back into a Tier.
func Parse(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rarity tier %q", s)
}

// Next returns the tier directly above t. The second return value is
// false when t is the terminal tier and has no successor.
func (t Tier) Next() (Tier, bool) {
	if t >= Legendary || !t.Valid() {
		return t, false
	}
	return t + 1, true
}

// UpgradeCost returns the number of duplicates required to advance from
// t to the next tier: 2^(index+2), so common=4, rare=8, very_rare=16,
// epic=32. The second return value is false for the terminal tier.
func (t Tier) UpgradeCost() (int64, bool) {
	if t >= Legendary || !t.Valid() {
		return 0, false
	}
	return int64(1) << (int(t) + 2), true
}

// Points returns the per-rarity score used by collection stats.
func (t Tier) Points() int64 {
	if !t.Valid() {
		return 0
	}
	return tierPoints[t]
}

func Tiers() []Tier {
	tiers := make([]Tier, NumTiers)
	for i := range tiers {
		tiers[i] = Tier(i)
	}
	return tiers
}

const weightEpsilon = 1e-9

// WeightTable holds the published draw probability per tier. The exact
// distribution is a balance knob, so it is loaded from configuration
// rather than compiled in; NewWeightTable enforces the shape the draw
// engine relies on.
type WeightTable struct {
	weights [NumTiers]float64
}

// NewWeightTable validates and builds a weight table. Weights must be
// strictly decreasing from common to legendary and sum to 1.
func NewWeightTable(weights []float64) (WeightTable, error) {
	var wt WeightTable
	if len(weights) != NumTiers {
		return wt, fmt.Errorf("weight table needs %d entries, got %d", NumTiers, len(weights))
	}

	sum := 0.0
	for i, w := range weights {
		if w <= 0 {
			return wt, fmt.Errorf("weight for %s must be positive, got %v", Tier(i), w)
		}
		if i > 0 && w >= weights[i-1] {
			return wt, fmt.Errorf("weights must be strictly decreasing: %s (%v) >= %s (%v)",
				Tier(i), w, Tier(i-1), weights[i-1])
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return wt, fmt.Errorf("weights must sum to 1, got %v", sum)
	}

	copy(wt.weights[:], weights)
	return wt, nil
}

// DefaultWeightTable returns the shipped distribution. Deployments
// override it via the [game] draw_weights config entry.
func DefaultWeightTable() WeightTable {
	wt, err := NewWeightTable([]float64{0.55, 0.25, 0.12, 0.06, 0.02})
	if err != nil {
		panic(err)
	}
	return wt
}

// Weight returns the probability mass assigned to t.
func (wt WeightTable) Weight(t Tier) float64 {
	if !t.Valid() {
		return 0
	}
	return wt.weights[t]
}

// Sample maps a uniform roll in [0,1) onto a tier by cumulative weight,
// ties broken in tier order. Rolls at or beyond the total mass land on
// the last tier so float rounding can never miss.
func (wt WeightTable) Sample(roll float64) Tier {
	cumulative := 0.0
	for i := 0; i < NumTiers-1; i++ {
		cumulative += wt.weights[i]
		if roll < cumulative {
			return Tier(i)
		}
	}
	return Legendary
}
