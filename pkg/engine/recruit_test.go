package engine

import "testing"

func recruitFixture() (*GameState, *PlayerState, *LandState) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)
	land := ownLand(gs, p1.ID, "1-1")
	land.Buildings = append(land.Buildings, Building{Kind: Stronghold}) // 2 slots
	return gs, p1, land
}

func TestStartRecruiting_QueuesAndCharges(t *testing.T) {
	gs, p1, land := recruitFixture()

	if err := StartRecruiting(gs, p1.ID, "1-1", Militia); err != nil {
		t.Fatal(err)
	}
	// 10 militia at 5 gold each.
	if p1.Vault != 100-50 {
		t.Errorf("vault = %d, want 50", p1.Vault)
	}
	slots := land.Buildings[0].Slots
	if len(slots) != 1 || slots[0].UnitType != Militia || slots[0].RemainingTurns != 1 {
		t.Errorf("slots = %v, want one militia batch one turn out", slots)
	}
}

func TestStartRecruiting_Rejections(t *testing.T) {
	gs, p1, land := recruitFixture()
	p2 := newTestPlayer("player-2", Ranger, HumanPlayer)
	gs.Players = append(gs.Players, p2)

	if err := StartRecruiting(gs, p1.ID, "1-1", Orc); !IsRejected(err) {
		t.Errorf("lawful empire recruiting orcs should be rejected, got %v", err)
	}
	if err := StartRecruiting(gs, p2.ID, "1-1", Militia); !IsRejected(err) {
		t.Errorf("recruiting on a rival's land should be rejected, got %v", err)
	}
	if err := StartRecruiting(gs, p1.ID, "2-2", Militia); !IsRejected(err) {
		t.Errorf("recruiting on an unowned land should be rejected, got %v", err)
	}

	p1.Vault = 10
	if err := StartRecruiting(gs, p1.ID, "1-1", Knight); !IsRejected(err) {
		t.Errorf("recruiting beyond the vault should be rejected, got %v", err)
	}

	p1.Vault = 1000
	if err := StartRecruiting(gs, p1.ID, "1-1", Militia); err != nil {
		t.Fatal(err)
	}
	if err := StartRecruiting(gs, p1.ID, "1-1", Militia); err != nil {
		t.Fatal(err)
	}
	if err := StartRecruiting(gs, p1.ID, "1-1", Militia); !IsRejected(err) {
		t.Errorf("recruiting past the slot capacity should be rejected, got %v", err)
	}
	if len(land.Buildings[0].Slots) != 2 {
		t.Errorf("slots = %d, want capacity of 2", len(land.Buildings[0].Slots))
	}
}

func TestAdvanceRecruitment_DeliversBatch(t *testing.T) {
	gs, p1, land := recruitFixture()

	if err := StartRecruiting(gs, p1.ID, "1-1", Militia); err != nil {
		t.Fatal(err)
	}
	events := AdvanceRecruitment(gs, p1.ID, Fixed(0))

	army := gs.StationedArmy("1-1", p1.ID)
	if army == nil {
		t.Fatal("completed batch must muster an army at the land")
	}
	if got := army.RegularsCount(RankRegular, Militia); got != recruitBatchSize {
		t.Errorf("militia = %d, want %d", got, recruitBatchSize)
	}
	if len(land.Buildings[0].Slots) != 0 {
		t.Error("completed slot must be freed")
	}
	if len(events) != 1 || events[0].Status != EventMinor {
		t.Errorf("events = %v, want one muster notice", events)
	}
}

func TestAdvanceRecruitment_MultiTurnUnits(t *testing.T) {
	gs, p1, land := recruitFixture()
	p1.Vault = 500

	if err := StartRecruiting(gs, p1.ID, "1-1", Knight); err != nil {
		t.Fatal(err)
	}
	if events := AdvanceRecruitment(gs, p1.ID, Fixed(0)); len(events) != 0 {
		t.Fatalf("knights take two turns, got early events %v", events)
	}
	if got := land.Buildings[0].Slots[0].RemainingTurns; got != 1 {
		t.Errorf("remaining turns = %d, want 1", got)
	}

	AdvanceRecruitment(gs, p1.ID, Fixed(0))
	army := gs.StationedArmy("1-1", p1.ID)
	if army == nil || army.RegularsCount(RankRegular, Knight) != recruitBatchSize {
		t.Error("knights must muster after the second advance")
	}
}
