// internal/game/color.go
//
// Color Chaos: a color name is called out in Hangeul and the player hits the
// matching swatch. Rewards are continuous: mana grows by a fraction of the
// score, so mana may stop being a whole number after this game.

package game

import (
	"github.com/shopspring/decimal"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
)

// ManaPerPoint is the mana granted per Color Chaos score point (0.1).
var ManaPerPoint = decimal.New(1, -1)

// ComboMasterThreshold unlocks "Combo Master lvl 1".
const ComboMasterThreshold = 15

const colorMinSwatches = 3

var colorSwatchCounts = []int{colorMinSwatches, 4}

// Swatch is one clickable color; the Hangeul name is withheld.
type Swatch struct {
	ColorID string `json:"colorId"`
	HexCode string `json:"hexCode"`
}

// ColorRound is one generated Color Chaos order.
type ColorRound struct {
	RoundID       string   `json:"roundId"`
	TargetColor   string   `json:"targetColor"`
	TargetHangeul string   `json:"targetHangeul"`
	Palette       []Swatch `json:"palette"`
}

// NewColorRound draws a target color and its decoy swatches.
func NewColorRound(rng Rand, colors []catalog.Color) (ColorRound, error) {
	if err := requireContent(Color, len(colors), 1); err != nil {
		return ColorRound{}, err
	}
	k := max(drawSize(rng, colorSwatchCounts), colorMinSwatches)
	if err := requireContent(Color, len(colors), k); err != nil {
		return ColorRound{}, err
	}

	picked := sample(rng, colors, k)
	target := picked[0]

	palette := make([]Swatch, 0, k)
	for _, c := range shuffled(rng, picked) {
		palette = append(palette, Swatch{ColorID: c.ID, HexCode: c.HexCode})
	}
	return ColorRound{
		RoundID:       newRoundID(),
		TargetColor:   target.ID,
		TargetHangeul: target.Hangeul,
		Palette:       palette,
	}, nil
}

// ColorResults are the client-reported outcome of a Color Chaos session.
type ColorResults struct {
	Score        int `json:"score"`
	HighestCombo int `json:"highestCombo"`
}

// SubmitColorResults credits a session. Missing profile fields start at zero.
func SubmitColorResults(p Profile, r ColorResults) (Profile, error) {
	if r.Score < 0 {
		return p, negative("score", r.Score)
	}
	if r.HighestCombo < 0 {
		return p, negative("highestCombo", r.HighestCombo)
	}

	out := p.Clone()
	if out.Mana == nil {
		z := decimal.Zero
		out.Mana = &z
	}
	if out.Stats == nil {
		out.Stats = map[string]int64{}
	}
	for _, k := range []string{StatColorsIdentified, StatColorChaosHighestCombo} {
		if _, ok := out.Stats[k]; !ok {
			out.Stats[k] = 0
		}
	}
	if out.Achievements == nil {
		out.Achievements = []string{}
	}

	out.addMana(decimal.NewFromInt(int64(r.Score)).Mul(ManaPerPoint))

	combo := int64(r.HighestCombo)
	out.addStat(StatColorsIdentified, combo)
	if combo > out.Stats[StatColorChaosHighestCombo] {
		out.Stats[StatColorChaosHighestCombo] = combo
	}

	if r.HighestCombo >= ComboMasterThreshold {
		out.unlock(AchComboMasterLvl1)
	}
	return out, nil
}
