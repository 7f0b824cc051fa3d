// Package ai provides the computer-turn strategies run during a
// computer empire's MAIN phase. The engine handles the rest of the
// turn (economy, quests, attrition) itself.
package ai

import (
	"sort"

	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

// Strategy plays one MAIN phase for a computer empire. Implementations
// mutate the game state through engine commands only; the turn machine
// advances on its own once the callback returns.
type Strategy interface {
	Name() string
	PlayMainTurn(gs *engine.GameState, seat string, rng engine.Rand)
}

// StrategyFor returns the strategy for a difficulty label.
func StrategyFor(difficulty string) Strategy {
	switch difficulty {
	case "idle":
		return IdleStrategy{}
	default:
		return GreedyStrategy{}
	}
}

// IdleStrategy does nothing during MAIN. Useful for tests and as a
// stand-in opponent.
type IdleStrategy struct{}

func (IdleStrategy) Name() string { return "idle" }

func (IdleStrategy) PlayMainTurn(*engine.GameState, string, engine.Rand) {}

// GreedyStrategy plays a simple economic turn: recruit into free
// building slots, expand into adjacent unclaimed land, and build an
// outpost when the vault allows.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (s GreedyStrategy) PlayMainTurn(gs *engine.GameState, seat string, rng engine.Rand) {
	player := gs.Player(seat)
	if player == nil {
		return
	}
	s.recruit(gs, player)
	s.expand(gs, player)
	s.construct(gs, player)
}

// recruit fills free slots in owned lands with the strongest unit the
// empire can afford and is allowed to field.
func (s GreedyStrategy) recruit(gs *engine.GameState, player *engine.PlayerState) {
	for _, landID := range ownedLandsSorted(player) {
		for _, unit := range recruitPreference(player.Profile.Alignment) {
			if err := engine.StartRecruiting(gs, player.ID, landID, unit); err == nil {
				break
			}
		}
	}
}

// expand moves the stationed army one land toward the nearest adjacent
// unowned, non-hostile land. One expansion per turn keeps garrisons home.
func (s GreedyStrategy) expand(gs *engine.GameState, player *engine.PlayerState) {
	for _, landID := range ownedLandsSorted(player) {
		army := gs.StationedArmy(landID, player.ID)
		if army == nil || len(army.Regulars) == 0 {
			continue
		}
		pos, ok := engine.ParseLandID(landID)
		if !ok {
			continue
		}
		for _, n := range gs.Map.Neighbors(pos) {
			target := n.LandID()
			if gs.OwnerOf(target) != nil {
				continue
			}
			split := engine.ArmySplit{Regulars: halfRegulars(army)}
			if len(split.Regulars) == 0 {
				continue
			}
			if err := engine.StartMovement(gs, player.ID, landID, target, split); err == nil {
				return
			}
		}
	}
}

// construct raises an outpost on the richest owned land without one.
func (s GreedyStrategy) construct(gs *engine.GameState, player *engine.PlayerState) {
	for _, landID := range ownedLandsSorted(player) {
		if err := engine.Construct(gs, player.ID, landID, engine.Outpost); err == nil {
			return
		}
	}
}

// halfRegulars claims half of each regulars stack, leaving a garrison.
func halfRegulars(army *engine.ArmyState) []engine.RegularsState {
	var out []engine.RegularsState
	for _, r := range army.Regulars {
		if r.Count < 2 {
			continue
		}
		out = append(out, engine.RegularsState{Type: r.Type, Rank: r.Rank, Count: r.Count / 2})
	}
	return out
}

// ownedLandsSorted returns the empire's lands in a stable order so the
// strategy is deterministic under a fixed seed.
func ownedLandsSorted(player *engine.PlayerState) []string {
	lands := make([]string, 0, len(player.LandsOwned))
	for id := range player.LandsOwned {
		lands = append(lands, id)
	}
	sort.Strings(lands)
	return lands
}

// recruitPreference orders units strongest-first for an alignment.
func recruitPreference(a engine.Alignment) []engine.UnitType {
	switch a {
	case engine.Lawful:
		return []engine.UnitType{engine.Knight, engine.Archer, engine.Militia}
	case engine.Chaotic:
		return []engine.UnitType{engine.Troll, engine.Wraith, engine.Orc, engine.Skeleton}
	default:
		return []engine.UnitType{engine.Knight, engine.Orc, engine.Archer, engine.Militia}
	}
}
