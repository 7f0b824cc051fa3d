package engine

// ArmySplit names the units a player sends out of a stationed army.
type ArmySplit struct {
	HeroNames     []string        `json:"hero_names,omitempty"`
	Regulars      []RegularsState `json:"regulars,omitempty"`
	WarMachineIDs []string        `json:"war_machine_ids,omitempty"`
}

// heroOnlyRaidSize is the minimum hero count for an all-hero army to
// enter hostile land.
const heroOnlyRaidSize = 10

// StartMovement splits the requested units out of the single stationed
// army at from and sends them toward to along the shortest hex path.
// All active effects of the source army travel with the moving army.
// Invalid commands are rejected with a CommandError and leave the
// state unchanged.
func StartMovement(gs *GameState, playerID, from, to string, split ArmySplit) error {
	player := gs.Player(playerID)
	if player == nil {
		return rejected("unknown player %s", playerID)
	}
	fromLand := gs.Land(from)
	toLand := gs.Land(to)
	if fromLand == nil || toLand == nil {
		return rejected("no such land")
	}
	if from == to {
		return rejected("army is already at %s", to)
	}

	source := gs.StationedArmy(from, playerID)
	if source == nil {
		return rejected("no stationed army at %s", from)
	}

	if err := validateDiplomacy(gs, player, to); err != nil {
		return err
	}
	if err := validateComposition(gs, player, to, split); err != nil {
		return err
	}
	if err := validateSplitExists(source, split); err != nil {
		return err
	}

	path := gs.Map.ShortestPath(fromLand.Position, toLand.Position)
	if path == nil {
		return rejected("no path from %s to %s", from, to)
	}

	// Chaotic empires marching into a neutral neighbor declare war by
	// the act itself.
	if owner := gs.OwnerOf(to); owner != nil && owner.ID != playerID {
		if player.StatusWith(owner.ID) == StatusNeutral && player.Profile.Alignment == Chaotic {
			player.Diplomacy[owner.ID] = StatusWar
			owner.Diplomacy[playerID] = StatusWar
		}
	}

	mover := NewArmy(gs, playerID, fromLand.Position)
	mover.Movement = MovementState{Path: path}
	mover.Effects = append([]Effect(nil), source.Effects...)
	extractSplit(source, mover, split)
	gs.AddArmy(mover)

	if source.IsEmpty() {
		gs.RemoveArmy(source.ID)
	}
	return nil
}

// validateDiplomacy rejects moves into another empire's land unless the
// two are at war or allied. Chaotic movers are exempt: their move
// auto-declares war.
func validateDiplomacy(gs *GameState, player *PlayerState, to string) error {
	owner := gs.OwnerOf(to)
	if owner == nil || owner.ID == player.ID {
		return nil
	}
	switch player.StatusWith(owner.ID) {
	case StatusWar, StatusAlliance:
		return nil
	}
	if player.Profile.Alignment == Chaotic {
		return nil
	}
	return rejected("no war or alliance with %s", owner.Profile.Name)
}

// validateComposition enforces army make-up for hostile destinations:
// hero-only forces need a full raid of heroes; otherwise heroes must
// march with regulars.
func validateComposition(gs *GameState, player *PlayerState, to string, split ArmySplit) error {
	if len(split.HeroNames) == 0 && len(split.Regulars) == 0 {
		return rejected("no units selected")
	}
	if !gs.IsHostileLand(player.ID, to) {
		return nil
	}
	if len(split.HeroNames) > 0 && totalCount(split.Regulars) == 0 {
		if len(split.HeroNames) < heroOnlyRaidSize {
			return rejected("hero-only armies need at least %d heroes to enter hostile land", heroOnlyRaidSize)
		}
	}
	return nil
}

// validateSplitExists checks that every requested unit is present in
// the source army.
func validateSplitExists(source *ArmyState, split ArmySplit) error {
	for _, name := range split.HeroNames {
		if source.FindHero(name) < 0 {
			return rejected("hero %s is not in the army", name)
		}
	}
	for _, want := range split.Regulars {
		if want.Count <= 0 {
			return rejected("invalid unit count")
		}
		have := 0
		for _, r := range source.Regulars {
			if r.Type == want.Type && r.Rank == want.Rank {
				have = r.Count
				break
			}
		}
		if have < want.Count {
			return rejected("army has only %d %s %s", have, want.Rank, want.Type)
		}
	}
	for _, id := range split.WarMachineIDs {
		if findWarMachine(source, id) < 0 {
			return rejected("war machine %s is not in the army", id)
		}
	}
	return nil
}

func findWarMachine(a *ArmyState, id string) int {
	for i := range a.WarMachines {
		if a.WarMachines[i].ID == id {
			return i
		}
	}
	return -1
}

func totalCount(entries []RegularsState) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}

// extractSplit moves the requested units from source into mover.
// Callers validate existence first.
func extractSplit(source, mover *ArmyState, split ArmySplit) {
	for _, name := range split.HeroNames {
		i := source.FindHero(name)
		mover.Heroes = append(mover.Heroes, source.Heroes[i])
		source.Heroes = append(source.Heroes[:i], source.Heroes[i+1:]...)
	}
	for _, want := range split.Regulars {
		source.removeRegulars(want.Rank, want.Type, want.Count)
		mover.AddRegulars(want)
	}
	for _, id := range split.WarMachineIDs {
		i := findWarMachine(source, id)
		mover.WarMachines = append(mover.WarMachines, source.WarMachines[i])
		source.WarMachines = append(source.WarMachines[:i], source.WarMachines[i+1:]...)
	}
}

// movementHolds lists land effects that freeze armies in place.
var movementHolds = []MagicID{MagicEntanglingRoots, MagicHourglassOfDelay}

// PerformMovements advances every moving army of the turn owner by one
// path step, then merges stationed armies land by land and transfers
// ownership of newly occupied lands.
func PerformMovements(gs *GameState) {
	owner := gs.CurrentPlayer()
	if owner == nil {
		return
	}

	for _, a := range gs.ArmiesOf(owner.ID) {
		if a.IsStationed() {
			continue
		}
		if landHeldByMagic(gs, a) {
			continue
		}
		a.Movement.Progress++
		if a.Movement.Progress >= len(a.Movement.Path)-1 {
			// Arrival: collapse back to a stationed 1-length path.
			a.Movement = MovementState{Path: []Position{a.Movement.Path[len(a.Movement.Path)-1]}}
		}
	}

	mergeStationedArmies(gs)
	transferOccupiedLands(gs, owner)
}

func landHeldByMagic(gs *GameState, a *ArmyState) bool {
	land := gs.Land(a.LandID())
	if land == nil {
		return false
	}
	for _, id := range movementHolds {
		if land.HasEffect(id) || a.HasEffect(id) {
			return true
		}
	}
	return false
}

// mergeStationedArmies enforces the single-stationed-army-per-(land,
// player) invariant by merging duplicates after movement resolution.
func mergeStationedArmies(gs *GameState) {
	first := make(map[[2]string]*ArmyState)
	var doomed []string
	for _, a := range gs.Armies {
		if !a.IsStationed() {
			continue
		}
		key := [2]string{a.LandID(), a.ControlledBy}
		if target, ok := first[key]; ok {
			MergeArmies(target, a)
			doomed = append(doomed, a.ID)
			continue
		}
		first[key] = a
	}
	for _, id := range doomed {
		gs.RemoveArmy(id)
	}
}

// MergeArmies folds source into target. Both must be stationed armies
// of the same controller at the same land. Heroes concatenate and keep
// individual identity; regulars combine counts within matching
// {type, rank} pairs; only NEGATIVE effects survive from either side,
// merging away a buff by re-joining a larger army is not allowed.
func MergeArmies(target, source *ArmyState) {
	target.Heroes = append(target.Heroes, source.Heroes...)
	for _, r := range source.Regulars {
		target.AddRegulars(r)
	}
	target.WarMachines = append(target.WarMachines, source.WarMachines...)

	var negatives []Effect
	for _, e := range target.Effects {
		if e.Rules.Type == NegativeEffect {
			negatives = append(negatives, e)
		}
	}
	for _, e := range source.Effects {
		if e.Rules.Type == NegativeEffect {
			negatives = append(negatives, e)
		}
	}
	target.Effects = negatives
}

// transferOccupiedLands claims lands where the player has a stationed
// army and no rival army contests the hex.
func transferOccupiedLands(gs *GameState, player *PlayerState) {
	for _, a := range gs.ArmiesOf(player.ID) {
		if !a.IsStationed() {
			continue
		}
		landID := a.LandID()
		owner := gs.OwnerOf(landID)
		if owner != nil && owner.ID == player.ID {
			continue
		}
		if owner != nil && gs.IsAlliedWith(player.ID, owner.ID) {
			continue
		}
		contested := false
		for _, other := range gs.ArmiesAt(landID) {
			if other.ControlledBy != player.ID {
				contested = true
				break
			}
		}
		if !contested {
			gs.TransferLand(landID, player.ID)
		}
	}
}
