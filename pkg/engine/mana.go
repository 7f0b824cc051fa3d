package engine

// CalculateMana credits the turn owner's mana pool for the START phase:
// every mage hero (on the map or away on a quest) contributes its fixed
// per-turn output in its color, and every controlled special land adds
// one mana of its color provided a mage of the matching class serves
// the empire, or the empire holds the Heartstone of Orrivane, which
// channels special lands unaided. Pools clamp to MaxMana afterwards.
func CalculateMana(gs *GameState, playerID string) {
	player := gs.Player(playerID)
	if player == nil {
		return
	}

	gains := make(map[ManaColor]int, 5)

	for _, h := range gs.HeroesOf(playerID) {
		if color, ok := MageColor(h.Class); ok && h.Mana > 0 {
			gains[color] += h.Mana
		}
	}
	for _, q := range player.Quests {
		if color, ok := MageColor(q.Hero.Class); ok && q.Hero.Mana > 0 {
			gains[color] += q.Hero.Mana
		}
	}

	heartstone := player.HoldsRelic(HeartstoneOfOrrivane)
	for landID := range player.LandsOwned {
		land := gs.Land(landID)
		if land == nil {
			continue
		}
		color := LandTraitOf(land.Kind).ManaColor
		if color == "" {
			continue
		}
		if heartstone || gs.HasMageOf(playerID, MageClassFor(color)) {
			gains[color]++
		}
	}

	for color, amount := range gains {
		player.AddMana(color, amount)
	}
}
