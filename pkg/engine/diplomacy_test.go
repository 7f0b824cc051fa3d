package engine

import "testing"

func TestDeclareWar_Mutual(t *testing.T) {
	gs := newTestState(newTestPlayer("p1", Warlord, HumanPlayer), newTestPlayer("p2", Cleric, HumanPlayer))

	if err := DeclareWar(gs, "p1", "p2"); err != nil {
		t.Fatalf("DeclareWar: %v", err)
	}
	if got := gs.Player("p1").StatusWith("p2"); got != StatusWar {
		t.Errorf("p1 status = %s, want war", got)
	}
	if got := gs.Player("p2").StatusWith("p1"); got != StatusWar {
		t.Errorf("p2 status = %s, want war", got)
	}

	if err := DeclareWar(gs, "p1", "p2"); !IsRejected(err) {
		t.Errorf("second declaration should be rejected, got %v", err)
	}
}

func TestDeclareWar_Rejections(t *testing.T) {
	gs := newTestState(newTestPlayer("p1", Warlord, HumanPlayer), newTestPlayer("p2", Cleric, HumanPlayer))

	if err := DeclareWar(gs, "p1", "p1"); !IsRejected(err) {
		t.Errorf("self-war should be rejected, got %v", err)
	}
	if err := DeclareWar(gs, "p1", "nobody"); !IsRejected(err) {
		t.Errorf("unknown target should be rejected, got %v", err)
	}
}

func TestFormAlliance_RequiresNeutral(t *testing.T) {
	gs := newTestState(newTestPlayer("p1", Warlord, HumanPlayer), newTestPlayer("p2", Cleric, HumanPlayer))

	if err := FormAlliance(gs, "p1", "p2"); err != nil {
		t.Fatalf("FormAlliance: %v", err)
	}
	if got := gs.Player("p2").StatusWith("p1"); got != StatusAlliance {
		t.Errorf("p2 status = %s, want alliance", got)
	}

	gs.Player("p1").Diplomacy["p2"] = StatusWar
	gs.Player("p2").Diplomacy["p1"] = StatusWar
	if err := FormAlliance(gs, "p1", "p2"); !IsRejected(err) {
		t.Errorf("alliance while at war should be rejected, got %v", err)
	}
}

func TestBreakTreaty(t *testing.T) {
	gs := newTestState(newTestPlayer("p1", Warlord, HumanPlayer), newTestPlayer("p2", Cleric, HumanPlayer))

	if err := BreakTreaty(gs, "p1", "p2"); !IsRejected(err) {
		t.Errorf("breaking a nonexistent treaty should be rejected, got %v", err)
	}

	if err := FormAlliance(gs, "p1", "p2"); err != nil {
		t.Fatalf("FormAlliance: %v", err)
	}
	if err := BreakTreaty(gs, "p2", "p1"); err != nil {
		t.Fatalf("BreakTreaty: %v", err)
	}
	if got := gs.Player("p1").StatusWith("p2"); got != StatusNeutral {
		t.Errorf("p1 status = %s, want neutral", got)
	}
}
