package ai

import (
	"testing"

	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

func newAIState(class engine.HeroClass) (*engine.GameState, *engine.PlayerState) {
	gs := engine.NewGame(engine.GameConfig{
		Rows: 5,
		Cols: 6,
		Players: []engine.PlayerSetup{
			{Profile: engine.NewProfile("Computer", class), Type: engine.ComputerPlayer},
			{Profile: engine.NewProfile("Rival", engine.Cleric), Type: engine.HumanPlayer},
		},
	}, engine.NewRand(7))
	gs.Turn = 2
	gs.TurnPhase = engine.PhaseMain
	return gs, gs.Players[0]
}

func TestStrategyFor(t *testing.T) {
	if got := StrategyFor("idle").Name(); got != "idle" {
		t.Fatalf("Name() = %q, want idle", got)
	}
	if got := StrategyFor("anything").Name(); got != "greedy" {
		t.Fatalf("Name() = %q, want greedy", got)
	}
}

func TestIdleStrategy_DoesNothing(t *testing.T) {
	gs, p := newAIState(engine.Warlord)
	p.LandsOwned["1-1"] = true
	before := p.Vault

	IdleStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	if p.Vault != before {
		t.Fatalf("vault changed: %d -> %d", before, p.Vault)
	}
	if len(gs.Armies) != 0 {
		t.Fatalf("expected no armies, got %d", len(gs.Armies))
	}
}

func TestGreedyStrategy_RecruitsAlignmentLegalUnit(t *testing.T) {
	gs, p := newAIState(engine.Warlord)
	p.LandsOwned["1-1"] = true
	p.Vault = 1000
	land := gs.Land("1-1")
	land.Buildings = append(land.Buildings, engine.Building{Kind: engine.Stronghold})

	GreedyStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	b := land.FindBuilding(engine.Stronghold)
	if len(b.Slots) == 0 {
		t.Fatal("expected a recruitment slot to be queued")
	}
	if got := b.Slots[0].UnitType; got != engine.Knight {
		t.Fatalf("queued %s, want knight for a lawful empire with full vault", got)
	}
	if p.Vault >= 1000 {
		t.Fatal("recruiting should have cost gold")
	}
}

func TestGreedyStrategy_ChaoticNeverQueuesLawfulUnits(t *testing.T) {
	gs, p := newAIState(engine.Necromancer)
	p.LandsOwned["1-1"] = true
	p.Vault = 1000
	land := gs.Land("1-1")
	land.Buildings = append(land.Buildings, engine.Building{Kind: engine.Stronghold})

	GreedyStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	b := land.FindBuilding(engine.Stronghold)
	if len(b.Slots) == 0 {
		t.Fatal("expected a recruitment slot to be queued")
	}
	for _, slot := range b.Slots {
		if engine.UnitDefOf(slot.UnitType).Alignment == engine.Lawful {
			t.Fatalf("chaotic empire queued lawful unit %s", slot.UnitType)
		}
	}
}

func TestGreedyStrategy_ExpandsIntoUnownedLand(t *testing.T) {
	gs, p := newAIState(engine.Warlord)
	p.LandsOwned["2-2"] = true
	army := engine.NewArmy(gs, p.ID, engine.Position{Row: 2, Col: 2})
	army.AddRegulars(engine.NewRegulars(engine.Militia, 20))
	gs.AddArmy(army)

	GreedyStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	if len(gs.Armies) < 2 {
		t.Fatal("expected a marching detachment to be split off")
	}
	var total int
	for _, a := range gs.Armies {
		for _, r := range a.Regulars {
			total += r.Count
		}
	}
	if total != 20 {
		t.Fatalf("regulars total = %d, want 20 preserved across the split", total)
	}
}

func TestGreedyStrategy_LeavesSmallGarrisonsHome(t *testing.T) {
	gs, p := newAIState(engine.Warlord)
	p.LandsOwned["2-2"] = true
	army := engine.NewArmy(gs, p.ID, engine.Position{Row: 2, Col: 2})
	army.AddRegulars(engine.NewRegulars(engine.Militia, 1))
	gs.AddArmy(army)

	GreedyStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	if len(gs.Armies) != 1 {
		t.Fatalf("a lone defender should not march, armies = %d", len(gs.Armies))
	}
}

func TestGreedyStrategy_ConstructsOutpost(t *testing.T) {
	gs, p := newAIState(engine.Warlord)
	p.LandsOwned["1-1"] = true
	p.Vault = 1000

	GreedyStrategy{}.PlayMainTurn(gs, p.ID, engine.NewRand(1))

	if !gs.Land("1-1").HasBuilding(engine.Outpost) {
		t.Fatal("expected an outpost on the only owned land")
	}
}

func TestGreedyStrategy_UnknownSeatIsNoop(t *testing.T) {
	gs, _ := newAIState(engine.Warlord)
	GreedyStrategy{}.PlayMainTurn(gs, "player-99", engine.NewRand(1))
}
