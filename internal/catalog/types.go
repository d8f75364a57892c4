// internal/catalog/types.go
//
// Content record types for the four mini-games.
// Records are created when a catalog is loaded and never mutated afterwards;
// identity is the ID field, everything else is display payload.

package catalog

// MarketItem is a Namdaemun market stall item.
type MarketItem struct {
	ID       string `yaml:"id" json:"id"`
	NameKR   string `yaml:"name_kr" json:"name_kr"`
	NameFR   string `yaml:"name_fr" json:"name_fr"`
	ImageURL string `yaml:"imageUrl" json:"imageUrl"`
}

// FoodItem is a Food Feast vocabulary entry.
type FoodItem struct {
	ID       string `yaml:"id" json:"id"`
	Hangeul  string `yaml:"hangeul" json:"hangeul"`
	NameFR   string `yaml:"name_fr" json:"name_fr"`
	Category string `yaml:"category" json:"category"`
	ImageURL string `yaml:"imageUrl" json:"imageUrl"`
	AudioURL string `yaml:"audioUrl" json:"audioUrl"`
}

// Color is a Color Chaos color definition.
type Color struct {
	ID      string `yaml:"colorId" json:"colorId"`
	Hangeul string `yaml:"hangeul" json:"hangeul"`
	HexCode string `yaml:"hexCode" json:"hexCode"`
}

// Reward is granted on a perfect poem completion.
type Reward struct {
	Mana int64 `yaml:"mana" json:"mana"`
	XP   int64 `yaml:"xp" json:"xp"`
}

// Poem is a fill-in-the-blank puzzle.
//
// Text alternates literal fragments and blanks; a nil entry is a blank.
// Solutions maps blank keys ("blank_1", "blank_2", ...) to the expected word.
type Poem struct {
	ID        string            `yaml:"id" json:"id"`
	Title     string            `yaml:"title" json:"title"`
	Author    string            `yaml:"author" json:"author"`
	Text      []*string         `yaml:"text" json:"text"`
	Solutions map[string]string `yaml:"solutions" json:"solutions"`
	Choices   []string          `yaml:"choices" json:"choices"`
	Reward    Reward            `yaml:"reward" json:"reward"`
	MaxScore  int               `yaml:"max_score" json:"max_score"`
}

// Blanks counts the nil fragments of the poem text.
func (p Poem) Blanks() int {
	n := 0
	for _, s := range p.Text {
		if s == nil {
			n++
		}
	}
	return n
}
