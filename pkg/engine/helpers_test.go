package engine

// Shared fixtures. Tests build small deterministic states by hand
// instead of going through NewGame's randomized map generation.

func newTestMap(rows, cols int) BattleMap {
	m := BattleMap{Rows: rows, Cols: cols, Lands: make(map[string]*LandState)}
	for r := 0; r < rows; r++ {
		for c := 0; c < m.RowWidth(r); c++ {
			pos := Position{Row: r, Col: c}
			m.Lands[pos.LandID()] = newLand(pos, Plains)
		}
	}
	return m
}

func newTestPlayer(id string, class HeroClass, ptype PlayerType) *PlayerState {
	return NewPlayer(id, NewProfile("Empire "+id, class), ptype)
}

func newTestState(players ...*PlayerState) *GameState {
	gs := &GameState{Map: newTestMap(5, 6), Turn: 2, TurnPhase: PhaseMain}
	gs.Players = players
	if len(players) > 0 {
		gs.TurnOwner = players[0].ID
	}
	return gs
}

func mustPos(landID string) Position {
	pos, ok := ParseLandID(landID)
	if !ok {
		panic("bad land id in test: " + landID)
	}
	return pos
}

func placeArmy(gs *GameState, playerID, landID string, regulars ...RegularsState) *ArmyState {
	a := NewArmy(gs, playerID, mustPos(landID))
	for _, r := range regulars {
		a.AddRegulars(r)
	}
	gs.AddArmy(a)
	return a
}

func addHero(a *ArmyState, name string, class HeroClass, level int) *HeroState {
	h := HeroState{
		ID:        "hero-" + name,
		Class:     class,
		Name:      name,
		Level:     level,
		BaseStats: classBaseStats[class],
	}
	if h.IsMage() {
		h.Mana = mageManaPerTurn
	}
	a.Heroes = append(a.Heroes, h)
	return &a.Heroes[len(a.Heroes)-1]
}

func ownLand(gs *GameState, playerID, landID string) *LandState {
	gs.TransferLand(landID, playerID)
	return gs.Land(landID)
}

func setLandKind(gs *GameState, landID string, kind LandKind) *LandState {
	land := gs.Land(landID)
	*land = *newLand(land.Position, kind)
	return land
}

func positive(id MagicID) Effect {
	return Effect{SourceID: id, Rules: EffectRules{Type: PositiveEffect, Duration: 2, Target: TargetArmy}}
}

func negative(id MagicID) Effect {
	return Effect{SourceID: id, Rules: EffectRules{Type: NegativeEffect, Duration: 2, Target: TargetArmy}}
}
