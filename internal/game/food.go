// internal/game/food.go
//
// Food Feast: recognise a dish from its picture among Hangeul options.
//
// Scoring:
//   base    = correct / total * MaxScorePoints
//   penalty = timeTaken * TimePenaltyPerSecond
//   score   = max(0, floor(base - penalty)), or 0 when total is 0
//
// mana += score / ManaConversionFactor, xp += score / XPConversionFactor.

package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
)

const (
	MaxScorePoints       = 1000
	TimePenaltyPerSecond = 2
	ManaConversionFactor = 10
	XPConversionFactor   = 5
)

// ModeRecognition is the only implemented food round mode.
const ModeRecognition = "recognition"

const (
	foodMinOptions = 3 // 1 correct + 2 decoys
	foodMaxOptions = 4
)

var foodOptionCounts = []int{foodMinOptions, foodMaxOptions}

// FoodOptions are the round request options.
type FoodOptions struct {
	Mode string `json:"mode"`
}

// FoodQuestion is the picture the player must name.
type FoodQuestion struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// FoodOption is one answer choice.
type FoodOption struct {
	ID      string `json:"id"`
	Hangeul string `json:"hangeul"`
}

// FoodRound is one generated recognition round.
type FoodRound struct {
	RoundID         string       `json:"roundId"`
	Question        FoodQuestion `json:"question"`
	Options         []FoodOption `json:"options"`
	CorrectAnswerID string       `json:"correct_answer_id"`
}

// NewFoodRound builds a recognition round. An empty mode means recognition.
func NewFoodRound(rng Rand, items []catalog.FoodItem, opts FoodOptions) (FoodRound, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeRecognition
	}
	if mode != ModeRecognition {
		return FoodRound{}, &UnsupportedModeError{Game: Food, Mode: mode}
	}
	if err := requireContent(Food, len(items), 1); err != nil {
		return FoodRound{}, err
	}

	k := max(drawSize(rng, foodOptionCounts), foodMinOptions)
	if err := requireContent(Food, len(items), k); err != nil {
		return FoodRound{}, err
	}

	picked := sample(rng, items, k)
	correct := picked[0]

	options := make([]FoodOption, 0, k)
	for _, it := range shuffled(rng, picked) {
		options = append(options, FoodOption{ID: it.ID, Hangeul: it.Hangeul})
	}
	return FoodRound{
		RoundID:         newRoundID(),
		Question:        FoodQuestion{ID: correct.ID, ImageURL: correct.ImageURL},
		Options:         options,
		CorrectAnswerID: correct.ID,
	}, nil
}

// FoodResults are the client-reported outcome of a food session.
type FoodResults struct {
	CorrectAnswers int `json:"correctAnswers"`
	TotalQuestions int `json:"totalQuestions"`
	TimeTaken      int `json:"timeTaken"` // seconds
}

// FoodScore applies the score formula. Results must already be validated:
// non-negative and correctAnswers <= totalQuestions, so the score is within
// [0, MaxScorePoints].
func FoodScore(r FoodResults) int {
	if r.TotalQuestions == 0 {
		return 0
	}
	base := decimal.NewFromInt(int64(r.CorrectAnswers)).
		Div(decimal.NewFromInt(int64(r.TotalQuestions))).
		Mul(decimal.NewFromInt(MaxScorePoints))
	penalty := decimal.NewFromInt(int64(r.TimeTaken)).Mul(decimal.NewFromInt(TimePenaltyPerSecond))

	score := base.Sub(penalty).Floor()
	if !score.IsPositive() {
		return 0
	}
	return int(score.IntPart())
}

// SubmitFoodResults scores a session and credits mana, xp and
// stats.foodItemsIdentified. mana, xp and stats must be present.
func SubmitFoodResults(p Profile, r FoodResults) (Submission, error) {
	if p.Mana == nil {
		return Submission{}, missing("mana")
	}
	if p.XP == nil {
		return Submission{}, missing("xp")
	}
	if p.Stats == nil {
		return Submission{}, missing("stats")
	}
	switch {
	case r.CorrectAnswers < 0:
		return Submission{}, negative("correctAnswers", r.CorrectAnswers)
	case r.TotalQuestions < 0:
		return Submission{}, negative("totalQuestions", r.TotalQuestions)
	case r.TimeTaken < 0:
		return Submission{}, negative("timeTaken", r.TimeTaken)
	case r.CorrectAnswers > r.TotalQuestions:
		return Submission{}, fmt.Errorf("%w: correctAnswers %d exceeds totalQuestions %d",
			ErrInvalidResults, r.CorrectAnswers, r.TotalQuestions)
	}

	score := FoodScore(r)

	out := p.Clone()
	out.addMana(decimal.NewFromInt(int64(score / ManaConversionFactor)))
	out.addXP(int64(score / XPConversionFactor))
	out.addStat(StatFoodItemsIdentified, int64(r.CorrectAnswers))

	return Submission{Score: score, Profile: out}, nil
}
