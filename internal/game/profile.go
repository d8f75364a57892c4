// internal/game/profile.go
//
// Player progression profile consumed and produced by the result submitters.
//
// Fields are optional on the wire: a nil pointer, map or slice means the field
// was absent (or null) in the stored document, while an empty map or slice is
// written as {} or []. Each submitter decides whether an
// absent field is an error or defaults to zero.

package game

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	// Profiles are persisted as JSON documents where mana is a plain number.
	decimal.MarshalJSONWithoutQuotes = true
}

// Stat counter names.
const (
	StatFoodItemsIdentified    = "foodItemsIdentified"
	StatItemsSoldAtMarket      = "itemsSoldAtMarket"
	StatPoemsCompleted         = "poemsCompleted"
	StatColorsIdentified       = "colorsIdentified"
	StatColorChaosHighestCombo = "colorChaosHighestCombo"
)

// Achievement identifiers.
const (
	AchFirstSale       = "ACH_FIRST_SALE"
	AchComboMasterLvl1 = "Combo Master lvl 1"
)

// Profile is a player's currency, experience, counters and achievements.
type Profile struct {
	Mana         *decimal.Decimal `json:"mana,omitempty"`
	XP           *int64           `json:"xp,omitempty"`
	Stats        map[string]int64 `json:"stats"`
	Achievements []string         `json:"achievements"`
}

// NewProfile returns a profile with every field present and every known
// counter at zero.
func NewProfile(startingMana int64) Profile {
	mana := decimal.NewFromInt(startingMana)
	var xp int64
	return Profile{
		Mana: &mana,
		XP:   &xp,
		Stats: map[string]int64{
			StatFoodItemsIdentified:    0,
			StatItemsSoldAtMarket:      0,
			StatPoemsCompleted:         0,
			StatColorsIdentified:       0,
			StatColorChaosHighestCombo: 0,
		},
		Achievements: []string{},
	}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	var out Profile
	if p.Mana != nil {
		m := *p.Mana
		out.Mana = &m
	}
	if p.XP != nil {
		x := *p.XP
		out.XP = &x
	}
	if p.Stats != nil {
		out.Stats = make(map[string]int64, len(p.Stats))
		for k, v := range p.Stats {
			out.Stats[k] = v
		}
	}
	if p.Achievements != nil {
		out.Achievements = append(make([]string, 0, len(p.Achievements)), p.Achievements...)
	}
	return out
}

// Stat returns the named counter, 0 when absent.
func (p Profile) Stat(name string) int64 {
	return p.Stats[name]
}

// HasAchievement reports whether id is unlocked.
func (p Profile) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// unlock appends id unless it is already present.
func (p *Profile) unlock(id string) {
	if !p.HasAchievement(id) {
		p.Achievements = append(p.Achievements, id)
	}
}

func (p *Profile) addMana(d decimal.Decimal) {
	m := p.Mana.Add(d)
	p.Mana = &m
}

func (p *Profile) addXP(n int64) {
	x := saturatingAdd(*p.XP, n)
	p.XP = &x
}

// addStat increments a counter, creating it at 0 when absent.
func (p *Profile) addStat(name string, n int64) {
	p.Stats[name] = saturatingAdd(p.Stats[name], n)
}

// saturatingAdd adds a non-negative n, pinning at MaxInt64 instead of wrapping.
func saturatingAdd(v, n int64) int64 {
	if n > 0 && v > math.MaxInt64-n {
		return math.MaxInt64
	}
	return v + n
}

// Submission is the outcome of a scored result submission.
type Submission struct {
	Score   int     `json:"score"`
	Profile Profile `json:"updated_profile"`
	Message string  `json:"message,omitempty"`
}
