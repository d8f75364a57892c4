// internal/game/market.go
//
// Namdaemun market: find the requested item among the stall's display.
// A round shows 1 correct item and 3 or 4 decoys. Results convert score to
// mana, count items sold and unlock ACH_FIRST_SALE on the first selling session.

package game

import (
	"github.com/shopspring/decimal"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
)

const marketManaDivisor = 20

// marketDecoys are the candidate decoy counts; a round has 1 + decoys items.
var marketDecoys = []int{3, 4}

// MarketRound is one generated market round.
type MarketRound struct {
	RoundID      string               `json:"roundId"`
	CorrectItem  catalog.MarketItem   `json:"correct_item"`
	DisplayItems []catalog.MarketItem `json:"display_items"`
}

// NewMarketRound draws a correct item and its decoys from items.
func NewMarketRound(rng Rand, items []catalog.MarketItem) (MarketRound, error) {
	if err := requireContent(Market, len(items), 1); err != nil {
		return MarketRound{}, err
	}
	k := 1 + drawSize(rng, marketDecoys)
	if err := requireContent(Market, len(items), k); err != nil {
		return MarketRound{}, err
	}

	picked := sample(rng, items, k)
	return MarketRound{
		RoundID:      newRoundID(),
		CorrectItem:  picked[0],
		DisplayItems: shuffled(rng, picked),
	}, nil
}

// SubmitMarketResults credits a market session and returns the updated profile.
//
// mana and stats.itemsSoldAtMarket must be present and integral; a missing
// achievements list starts empty.
func SubmitMarketResults(p Profile, score, itemsSold int) (Profile, error) {
	if p.Mana == nil {
		return p, missing("mana")
	}
	if !p.Mana.IsInteger() {
		return p, &InvalidProfileError{Field: "mana", Reason: "must be an integer"}
	}
	if p.Stats == nil {
		return p, missing("stats")
	}
	if _, ok := p.Stats[StatItemsSoldAtMarket]; !ok {
		return p, missing("stats." + StatItemsSoldAtMarket)
	}
	if score < 0 {
		return p, negative("score", score)
	}
	if itemsSold < 0 {
		return p, negative("items_sold", itemsSold)
	}

	out := p.Clone()
	if out.Achievements == nil {
		out.Achievements = []string{}
	}

	out.addMana(decimal.NewFromInt(int64(score / marketManaDivisor)))

	firstSale := out.Stats[StatItemsSoldAtMarket] == 0 && itemsSold > 0
	out.addStat(StatItemsSoldAtMarket, int64(itemsSold))

	if firstSale {
		out.unlock(AchFirstSale)
	}
	return out, nil
}
