// internal/game/level.go
//
// Player level derived from xp. Completing level L costs
// floor(100 * L^1.5) xp: 100 to leave level 1, 282 to leave level 2, ...

package game

import "math"

// MaxLevel bounds the curve walk; xp beyond it stays at MaxLevel.
const MaxLevel = 10000

// XPForLevel is the xp needed to complete level, 0 for level <= 0.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	return int64(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// Level is the progression view of an xp total.
type Level struct {
	Level       int   `json:"level"`
	XPIntoLevel int64 `json:"xpIntoLevel"`
	XPForNext   int64 `json:"xpForNextLevel"`
}

// LevelFor returns the level reached with xp, starting from level 1.
// Negative xp counts as 0.
func LevelFor(xp int64) Level {
	rem := max(xp, 0)
	lvl := 1
	for ; lvl < MaxLevel; lvl++ {
		need := XPForLevel(lvl)
		if rem < need {
			break
		}
		rem -= need
	}
	return Level{Level: lvl, XPIntoLevel: rem, XPForNext: XPForLevel(lvl)}
}

// Level returns the level for p's xp; absent xp is level 1.
func (p Profile) Level() Level {
	if p.XP == nil {
		return LevelFor(0)
	}
	return LevelFor(*p.XP)
}
