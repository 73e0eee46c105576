package ti4

// StrategyCard is one of the numbered priority cards picked each round.
// The card number doubles as the player's turn order for that round.
type StrategyCard struct {
	Number int
	Name   string
}

// Ruleset is the set of strategy cards in play. The turn-order domain is
// derived from it rather than hard-coded, so expansions with a different
// card count only need a new ruleset.
type Ruleset struct {
	Cards []StrategyCard
}

// BaseRuleset returns the eight strategy cards of the base game.
func BaseRuleset() Ruleset {
	return Ruleset{
		Cards: []StrategyCard{
			{Number: 1, Name: "Leadership"},
			{Number: 2, Name: "Diplomacy"},
			{Number: 3, Name: "Politics"},
			{Number: 4, Name: "Construction"},
			{Number: 5, Name: "Trade"},
			{Number: 6, Name: "Warfare"},
			{Number: 7, Name: "Technology"},
			{Number: 8, Name: "Imperial"},
		},
	}
}

// Size is the highest card number in the ruleset, which bounds the
// turn-order wrap scan.
func (r Ruleset) Size() int {
	max := 0
	for _, card := range r.Cards {
		if card.Number > max {
			max = card.Number
		}
	}
	return max
}

func (r Ruleset) Contains(number int) bool {
	for _, card := range r.Cards {
		if card.Number == number {
			return true
		}
	}
	return false
}

func (r Ruleset) CardName(number int) string {
	for _, card := range r.Cards {
		if card.Number == number {
			return card.Name
		}
	}
	return ""
}
