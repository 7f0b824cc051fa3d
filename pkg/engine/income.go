package engine

import "math"

// incomeBoostFactor is the Banner of Unity's aggregate income bonus.
const incomeBoostFactor = 1.25

// fertileLandBonus is Fertile Land's per-land income bonus.
const fertileLandBonus = 0.5

// CalculateIncome sums a player's gold income for one turn: each owned
// land yields its gold per turn (raised by half, rounded up, under a
// Fertile Land effect) plus its buildings' yields. The Banner of Unity
// raises the aggregate by a quarter.
func CalculateIncome(gs *GameState, playerID string) int {
	player := gs.Player(playerID)
	if player == nil {
		return 0
	}

	total := 0
	for landID := range player.LandsOwned {
		land := gs.Land(landID)
		if land == nil {
			continue
		}
		gold := land.GoldPerTurn
		if land.HasEffect(MagicFertileLand) {
			gold += int(math.Ceil(float64(land.GoldPerTurn) * fertileLandBonus))
		}
		for _, b := range land.Buildings {
			gold += BuildingTraitOf(b.Kind).GoldPerTurn
		}
		total += gold
	}

	if player.HoldsRelic(BannerOfUnity) {
		total = int(math.Ceil(float64(total) * incomeBoostFactor))
	}
	return total
}

// ApplyIncome credits the turn owner's vault with this turn's income.
func ApplyIncome(gs *GameState, playerID string) {
	if player := gs.Player(playerID); player != nil {
		player.Vault += CalculateIncome(gs, playerID)
	}
}
