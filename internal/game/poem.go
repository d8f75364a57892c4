// internal/game/poem.go
//
// Lost Poem: fill every blank of a poem from a list of candidate words.
// Scoring is all-or-nothing: the submitted answers must have exactly the
// solution's entries with identical words (case-sensitive).

package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
)

// PoemFinder resolves a puzzle by id.
type PoemFinder interface {
	Poem(id string) (catalog.Poem, bool)
}

// PoemRound is the client view of a puzzle: solutions and rewards stripped,
// candidate words shuffled.
type PoemRound struct {
	RoundID string    `json:"roundId"`
	PoemID  string    `json:"poemId"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Text    []*string `json:"text"`
	Choices []string  `json:"choices"`
}

// NewPoemRound picks one puzzle uniformly.
func NewPoemRound(rng Rand, poems []catalog.Poem) (PoemRound, error) {
	if err := requireContent(Poem, len(poems), 1); err != nil {
		return PoemRound{}, err
	}
	p := sample(rng, poems, 1)[0]

	text := make([]*string, len(p.Text))
	for i, s := range p.Text {
		if s != nil {
			v := *s
			text[i] = &v
		}
	}
	return PoemRound{
		RoundID: newRoundID(),
		PoemID:  p.ID,
		Title:   p.Title,
		Author:  p.Author,
		Text:    text,
		Choices: shuffled(rng, p.Choices),
	}, nil
}

// PoemSolved reports whether answers match solutions exactly.
func PoemSolved(solutions, answers map[string]string) bool {
	if len(answers) != len(solutions) {
		return false
	}
	for k, want := range solutions {
		got, ok := answers[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// SubmitPoemResults grades answers for poemID.
//
// An unknown poem is a reported outcome, not an error: the input profile is
// returned as-is with a message and a zero score.
func SubmitPoemResults(p Profile, poems PoemFinder, poemID string, answers map[string]string) (Submission, error) {
	if p.Mana == nil {
		return Submission{}, missing("mana")
	}
	if p.XP == nil {
		return Submission{}, missing("xp")
	}
	if p.Stats == nil {
		return Submission{}, missing("stats")
	}
	if _, ok := p.Stats[StatPoemsCompleted]; !ok {
		return Submission{}, missing("stats." + StatPoemsCompleted)
	}

	poem, ok := poems.Poem(poemID)
	if !ok {
		return Submission{
			Score:   0,
			Profile: p,
			Message: fmt.Sprintf("Poem with ID '%s' not found.", poemID),
		}, nil
	}

	if !PoemSolved(poem.Solutions, answers) {
		return Submission{Score: 0, Profile: p}, nil
	}

	out := p.Clone()
	out.addMana(decimal.NewFromInt(poem.Reward.Mana))
	out.addXP(poem.Reward.XP)
	out.addStat(StatPoemsCompleted, 1)

	return Submission{Score: poem.MaxScore, Profile: out}, nil
}
