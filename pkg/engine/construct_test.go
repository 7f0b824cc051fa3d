package engine

import "testing"

func TestConstruct_BuildsAndCharges(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)
	ownLand(gs, p1.ID, "1-1")

	if err := Construct(gs, p1.ID, "1-1", Outpost); err != nil {
		t.Fatal(err)
	}
	if !gs.Land("1-1").HasBuilding(Outpost) {
		t.Error("outpost not built")
	}
	if p1.Vault != 100-BuildingTraitOf(Outpost).Cost {
		t.Errorf("vault = %d, want the cost deducted", p1.Vault)
	}
}

func TestConstruct_Rejections(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)
	ownLand(gs, p1.ID, "1-1")

	if err := Construct(gs, p1.ID, "1-1", Stronghold); !IsRejected(err) {
		t.Errorf("constructing a stronghold should be rejected, got %v", err)
	}
	if err := Construct(gs, p1.ID, "2-2", WatchTower); !IsRejected(err) {
		t.Errorf("building on an unowned land should be rejected, got %v", err)
	}

	if err := Construct(gs, p1.ID, "1-1", WatchTower); err != nil {
		t.Fatal(err)
	}
	if err := Construct(gs, p1.ID, "1-1", WatchTower); !IsRejected(err) {
		t.Errorf("duplicate building should be rejected, got %v", err)
	}

	p1.Vault = 0
	if err := Construct(gs, p1.ID, "1-1", Barracks); !IsRejected(err) {
		t.Errorf("building beyond the vault should be rejected, got %v", err)
	}
}
