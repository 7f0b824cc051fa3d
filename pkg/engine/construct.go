package engine

// Construct raises a building on one of the player's lands, paying its
// cost from the vault. Strongholds mark homelands and are never built
// by hand.
func Construct(gs *GameState, playerID, landID string, kind BuildingKind) error {
	trait := BuildingTraitOf(kind)
	player := gs.Player(playerID)
	if player == nil {
		return rejected("unknown player %s", playerID)
	}
	if kind == Stronghold {
		return rejected("strongholds cannot be constructed")
	}
	if !player.OwnsLand(landID) {
		return rejected("%s does not own land %s", playerID, landID)
	}
	land := gs.Land(landID)
	if land.HasBuilding(kind) {
		return rejected("land %s already has a %s", landID, kind)
	}
	if player.Vault < trait.Cost {
		return rejected("a %s costs %d gold, vault holds %d", kind, trait.Cost, player.Vault)
	}

	player.Vault -= trait.Cost
	land.Buildings = append(land.Buildings, Building{Kind: kind})
	return nil
}
