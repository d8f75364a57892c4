// internal/game/round.go
//
// Round generation helpers shared by every mini-game.
//
// Every generator follows the same contract:
//   - reject an empty catalog, then a catalog smaller than the round size;
//   - draw k distinct items with a Fisher-Yates shuffle over a copy;
//   - the first drawn item is the correct answer, the rest are decoys;
//   - re-shuffle the presentation list so the answer position is independent
//     of draw order.
//
// Randomness is always injected so rounds are reproducible under a fixed seed.

package game

import "github.com/google/uuid"

// Rand is the randomness a generator needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Game identifiers.
const (
	Market = "market"
	Food   = "food"
	Poem   = "poem"
	Color  = "color"
)

// Games lists every mini-game id.
var Games = []string{Market, Food, Poem, Color}

// drawSize picks one of the candidate round sizes uniformly.
func drawSize(rng Rand, sizes []int) int {
	return sizes[rng.IntN(len(sizes))]
}

// requireContent checks the catalog can supply need distinct items.
func requireContent(game string, have, need int) error {
	if have == 0 || have < need {
		return &InsufficientContentError{Game: game, Need: need, Have: have}
	}
	return nil
}

// sample returns k distinct items drawn uniformly without replacement.
// items is not modified.
func sample[T any](rng Rand, items []T, k int) []T {
	pool := append([]T(nil), items...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:k]
}

// shuffled returns a reordered copy of items.
func shuffled[T any](rng Rand, items []T) []T {
	out := append([]T(nil), items...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func newRoundID() string { return uuid.NewString() }
