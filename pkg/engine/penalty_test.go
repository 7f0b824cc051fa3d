package engine

import "testing"

func TestApplyPenalty_PooledRollSharedProportionally(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)

	big := placeArmy(gs, p1.ID, "1-1", NewRegulars(Militia, 60))
	small := placeArmy(gs, p1.ID, "1-2", NewRegulars(Militia, 40))

	cfg := PenaltyConfig{Tiers: map[Rank]PenaltyTier{
		RankRegular: {MinPct: 0.10, MaxPct: 0.10},
	}}
	losses := ApplyPenalty(gs, []*ArmyState{big, small}, cfg, Fixed(0))

	// Pool of 100 loses 10, split 6/4 by share.
	if big.TotalRegulars() != 54 {
		t.Errorf("big army = %d, want 54", big.TotalRegulars())
	}
	if small.TotalRegulars() != 36 {
		t.Errorf("small army = %d, want 36", small.TotalRegulars())
	}
	if len(losses) != 2 || losses[0].Losses[RankRegular] != 6 || losses[1].Losses[RankRegular] != 4 {
		t.Errorf("reported losses = %v", losses)
	}
}

func TestApplyPenalty_AbsoluteFloorDominatesSmallPools(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)

	army := placeArmy(gs, p1.ID, "1-1", NewRegulars(Militia, 20))
	cfg := PenaltyConfig{Tiers: map[Rank]PenaltyTier{
		RankRegular: {MinPct: 0.05, MaxPct: 0.05, MinAbs: 15, MaxAbs: 15},
	}}
	ApplyPenalty(gs, []*ArmyState{army}, cfg, Fixed(0))

	if got := army.TotalRegulars(); got != 5 {
		t.Errorf("regulars = %d, want the absolute floor of 15 removed", got)
	}
}

func TestApplyPenalty_ShieldRelicSoftensLosses(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)
	p1.Treasures = append(p1.Treasures, NewRelicTreasure(MirrorOfIllusion))

	army := placeArmy(gs, p1.ID, "1-1", NewRegulars(Militia, 100))
	cfg := PenaltyConfig{
		Tiers:      map[Rank]PenaltyTier{RankRegular: {MinPct: 0.20, MaxPct: 0.20}},
		ShieldedBy: MirrorOfIllusion,
	}
	ApplyPenalty(gs, []*ArmyState{army}, cfg, Fixed(0))

	// ceil(20 * 0.65) = 13 instead of 20.
	if got := army.TotalRegulars(); got != 87 {
		t.Errorf("regulars = %d, want 87 under the Mirror of Illusion", got)
	}
}

func TestApplyPenalty_RanksRolledIndependently(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)

	army := placeArmy(gs, p1.ID, "1-1")
	army.AddRegulars(RegularsState{Type: Militia, Rank: RankRegular, Count: 100})
	army.AddRegulars(RegularsState{Type: Militia, Rank: RankVeteran, Count: 50})

	cfg := PenaltyConfig{Tiers: map[Rank]PenaltyTier{
		RankRegular: {MinPct: 0.10, MaxPct: 0.10},
		RankVeteran: {MinPct: 0.20, MaxPct: 0.20},
	}}
	ApplyPenalty(gs, []*ArmyState{army}, cfg, Fixed(0))

	if got := army.RegularsCount(RankRegular, ""); got != 90 {
		t.Errorf("regular rank = %d, want 90", got)
	}
	if got := army.RegularsCount(RankVeteran, ""); got != 40 {
		t.Errorf("veteran rank = %d, want 40", got)
	}
}

func attritionFixture(t *testing.T, count int) (*GameState, *ArmyState) {
	t.Helper()
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	p2 := newTestPlayer("player-2", Ranger, HumanPlayer)
	gs := newTestState(p1, p2)

	home := ownLand(gs, p1.ID, "0-0")
	home.Buildings = append(home.Buildings, Building{Kind: Stronghold})
	ownLand(gs, p2.ID, "4-4")

	army := placeArmy(gs, p1.ID, "4-4", NewRegulars(Militia, count))
	return gs, army
}

func TestCalculateAttritionPenalty_Bounds(t *testing.T) {
	// 1000 units lose between ceil(1000*0.08) and ceil(1000*0.10); the
	// 40..60 absolute floor never dominates at this size.
	gs, army := attritionFixture(t, 1000)
	CalculateAttritionPenalty(gs, Fixed(0))
	if got := 1000 - army.TotalRegulars(); got != 80 {
		t.Errorf("lower-bound losses = %d, want 80", got)
	}

	gs, army = attritionFixture(t, 1000)
	CalculateAttritionPenalty(gs, Fixed(0.999))
	if got := 1000 - army.TotalRegulars(); got != 100 {
		t.Errorf("upper-bound losses = %d, want 100", got)
	}
}

func TestCalculateAttritionPenalty_SparesSuppliedLands(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	p2 := newTestPlayer("player-2", Ranger, HumanPlayer)
	gs := newTestState(p1, p2)

	home := ownLand(gs, p1.ID, "2-2")
	home.Buildings = append(home.Buildings, Building{Kind: Stronghold})
	ownLand(gs, p2.ID, "2-3") // hostile but adjacent to the stronghold

	army := placeArmy(gs, p1.ID, "2-3", NewRegulars(Militia, 100))
	CalculateAttritionPenalty(gs, Fixed(0.5))

	if got := army.TotalRegulars(); got != 100 {
		t.Errorf("regulars = %d, want no attrition inside the friendly radius", got)
	}
}

func TestCalculateAttritionPenalty_SkipsOwnAndUnclaimedLands(t *testing.T) {
	p1 := newTestPlayer("player-1", Warlord, HumanPlayer)
	gs := newTestState(p1)

	ownLand(gs, p1.ID, "0-0")
	own := placeArmy(gs, p1.ID, "0-0", NewRegulars(Militia, 100))
	wild := placeArmy(gs, p1.ID, "4-4", NewRegulars(Militia, 100))

	CalculateAttritionPenalty(gs, Fixed(0.5))
	if own.TotalRegulars() != 100 || wild.TotalRegulars() != 100 {
		t.Error("attrition applies only on hostile lands")
	}
}

func TestCalculateAttritionPenalty_DestroysEmptiedArmies(t *testing.T) {
	gs, _ := attritionFixture(t, 10)
	CalculateAttritionPenalty(gs, Fixed(0.5))

	if a := gs.StationedArmy("4-4", "player-1"); a != nil {
		t.Error("an army drained by attrition must be removed")
	}
}

func TestCalculateAttritionPenalty_ShardOfTheSilentAnvil(t *testing.T) {
	gs, army := attritionFixture(t, 1000)
	gs.Players[0].Treasures = append(gs.Players[0].Treasures, NewRelicTreasure(ShardOfTheSilentAnvil))

	CalculateAttritionPenalty(gs, Fixed(0))
	// ceil(80 * 0.65) = 52.
	if got := 1000 - army.TotalRegulars(); got != 52 {
		t.Errorf("losses = %d, want 52 with the Shard held", got)
	}
}
