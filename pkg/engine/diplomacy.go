package engine

// DeclareWar puts both empires at war. Chaotic incursions already do
// this implicitly in StartMovement; this is the explicit command form.
func DeclareWar(gs *GameState, playerID, targetID string) error {
	player := gs.Player(playerID)
	target := gs.Player(targetID)
	if player == nil || target == nil {
		return rejected("unknown empire")
	}
	if playerID == targetID {
		return rejected("cannot declare war on yourself")
	}
	if player.StatusWith(targetID) == StatusWar {
		return rejected("already at war with %s", target.Profile.Name)
	}
	player.Diplomacy[targetID] = StatusWar
	target.Diplomacy[playerID] = StatusWar
	return nil
}

// FormAlliance allies two neutral empires. Empires at war must make
// peace before allying.
func FormAlliance(gs *GameState, playerID, targetID string) error {
	player := gs.Player(playerID)
	target := gs.Player(targetID)
	if player == nil || target == nil {
		return rejected("unknown empire")
	}
	if playerID == targetID {
		return rejected("cannot ally with yourself")
	}
	if player.StatusWith(targetID) != StatusNeutral {
		return rejected("alliance requires neutral standing with %s", target.Profile.Name)
	}
	player.Diplomacy[targetID] = StatusAlliance
	target.Diplomacy[playerID] = StatusAlliance
	return nil
}

// BreakTreaty drops the relation with the other empire back to neutral.
// Works from either war or alliance.
func BreakTreaty(gs *GameState, playerID, targetID string) error {
	player := gs.Player(playerID)
	target := gs.Player(targetID)
	if player == nil || target == nil {
		return rejected("unknown empire")
	}
	if player.StatusWith(targetID) == StatusNeutral {
		return rejected("no treaty with %s to break", target.Profile.Name)
	}
	player.Diplomacy[targetID] = StatusNeutral
	target.Diplomacy[playerID] = StatusNeutral
	return nil
}
