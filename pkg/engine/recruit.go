package engine

// recruitBatchSize is how many regulars one completed slot delivers.
const recruitBatchSize = 10

// canRecruit reports whether an empire of the given alignment may field
// the unit. Neutral empires hire from both sides.
func canRecruit(empire Alignment, unit UnitType) bool {
	if empire == Neutral {
		return true
	}
	return UnitDefOf(unit).Alignment == empire
}

// freeSlots returns how many recruitment slots the building has open.
func freeSlots(b *Building) int {
	return BuildingTraitOf(b.Kind).Slots - len(b.Slots)
}

// StartRecruiting queues a batch of regulars in a recruiting building
// on one of the player's lands, paying the full batch cost up front.
func StartRecruiting(gs *GameState, playerID, landID string, unit UnitType) error {
	player := gs.Player(playerID)
	if player == nil {
		return rejected("unknown player %s", playerID)
	}
	if !player.OwnsLand(landID) {
		return rejected("%s does not own land %s", playerID, landID)
	}
	if !canRecruit(player.Profile.Alignment, unit) {
		return rejected("%s empires cannot recruit %s", player.Profile.Alignment, unit)
	}
	land := gs.Land(landID)

	def := UnitDefOf(unit)
	cost := def.Cost * recruitBatchSize
	if player.Vault < cost {
		return rejected("recruiting %d %s costs %d gold, vault holds %d",
			recruitBatchSize, def.Name, cost, player.Vault)
	}

	for i := range land.Buildings {
		b := &land.Buildings[i]
		if freeSlots(b) <= 0 {
			continue
		}
		player.Vault -= cost
		b.Slots = append(b.Slots, RecruitSlot{UnitType: unit, RemainingTurns: def.RecruitTurns})
		return nil
	}
	return rejected("no free recruitment slot on land %s", landID)
}

// AdvanceRecruitment ages every recruitment slot on the player's lands
// by one turn. Completed batches join the stationed army at their land,
// creating one if none exists.
func AdvanceRecruitment(gs *GameState, playerID string, rng Rand) []EmpireEvent {
	player := gs.Player(playerID)
	if player == nil {
		return nil
	}

	var events []EmpireEvent
	for landID := range player.LandsOwned {
		land := gs.Land(landID)
		if land == nil {
			continue
		}
		for i := range land.Buildings {
			b := &land.Buildings[i]
			kept := b.Slots[:0]
			for _, slot := range b.Slots {
				slot.RemainingTurns--
				if slot.RemainingTurns > 0 {
					kept = append(kept, slot)
					continue
				}
				deliverRecruits(gs, playerID, land, slot.UnitType)
				events = append(events, recruitDoneEvent(rng, UnitDefOf(slot.UnitType).Name, landID))
			}
			b.Slots = kept
		}
	}
	return events
}

func deliverRecruits(gs *GameState, playerID string, land *LandState, unit UnitType) {
	army := gs.StationedArmy(land.ID(), playerID)
	if army == nil {
		army = NewArmy(gs, playerID, land.Position)
		gs.AddArmy(army)
	}
	army.AddRegulars(NewRegulars(unit, recruitBatchSize))
}
