package engine

import "math"

// PenaltyTier configures the loss roll for one rank: a percentage band
// over the pooled rank total and an absolute floor band.
type PenaltyTier struct {
	MinPct float64
	MaxPct float64
	MinAbs int
	MaxAbs int
}

// PenaltyConfig maps each rank to its loss tier. Ranks without an
// entry take no losses.
type PenaltyConfig struct {
	Tiers      map[Rank]PenaltyTier
	UnitFilter UnitType // non-empty restricts consumption to one unit type
	ShieldedBy RelicID  // holding this relic scales an army's share by 0.65
}

// PenaltyLoss reports the units an army lost per rank.
type PenaltyLoss struct {
	ArmyID string
	Losses map[Rank]int
}

// damageReliefFactor scales losses for armies whose controller holds
// the configured shielding relic.
const damageReliefFactor = 0.65

// ApplyPenalty rolls one pooled loss quantity per rank across the given
// armies and distributes it proportionally to each army's share of that
// rank. Losses consume matching regulars entries; armies drained of
// both regulars and heroes are destroyed and pruned from the state.
func ApplyPenalty(gs *GameState, armies []*ArmyState, cfg PenaltyConfig, rng Rand) []PenaltyLoss {
	if len(armies) == 0 {
		return nil
	}

	losses := make([]PenaltyLoss, len(armies))
	for i, a := range armies {
		losses[i] = PenaltyLoss{ArmyID: a.ID, Losses: make(map[Rank]int)}
	}

	for _, rank := range AllRanks() {
		tier, ok := cfg.Tiers[rank]
		if !ok {
			continue
		}

		totalInRank := 0
		for _, a := range armies {
			totalInRank += a.RegularsCount(rank, cfg.UnitFilter)
		}
		if totalInRank == 0 {
			continue
		}

		// One roll for the whole pool:
		// max(ceil(total*uniform(minPct,maxPct)), ceil(uniform(minAbs,maxAbs))).
		pctLoss := int(math.Ceil(float64(totalInRank) * randomRange(rng, tier.MinPct, tier.MaxPct)))
		absLoss := int(math.Ceil(randomRange(rng, float64(tier.MinAbs), float64(tier.MaxAbs))))
		rankLoss := pctLoss
		if absLoss > rankLoss {
			rankLoss = absLoss
		}

		for i, a := range armies {
			count := a.RegularsCount(rank, cfg.UnitFilter)
			if count == 0 {
				continue
			}
			share := int(math.Ceil(float64(count) * float64(rankLoss) / float64(totalInRank)))
			if cfg.ShieldedBy != "" {
				if owner := gs.Player(a.ControlledBy); owner != nil && owner.HoldsRelic(cfg.ShieldedBy) {
					share = int(math.Ceil(float64(share) * damageReliefFactor))
				}
			}
			removed := a.removeRegulars(rank, cfg.UnitFilter, share)
			losses[i].Losses[rank] += removed
		}
	}

	gs.PruneEmptyArmies()
	return losses
}

// attritionTier is the forced-loss band for armies wintering in hostile
// territory, applied independently per rank.
var attritionTier = PenaltyTier{MinPct: 0.08, MaxPct: 0.10, MinAbs: 40, MaxAbs: 60}

// attritionConfig builds the penalty configuration for attrition. The
// Shard of the Silent Anvil blunts the losses.
func attritionConfig() PenaltyConfig {
	tiers := make(map[Rank]PenaltyTier, 3)
	for _, r := range AllRanks() {
		tiers[r] = attritionTier
	}
	return PenaltyConfig{Tiers: tiers, ShieldedBy: ShardOfTheSilentAnvil}
}

// friendlyRadius is the reach of a stronghold's supply lines.
const friendlyRadius = 1

// CalculateAttritionPenalty applies attrition to every army the turn
// owner has stationed on hostile lands outside the friendly radius of
// their strongholds. Armies on the same land pool their rank totals
// for the roll. Emptied armies are removed.
func CalculateAttritionPenalty(gs *GameState, rng Rand) []PenaltyLoss {
	owner := gs.CurrentPlayer()
	if owner == nil {
		return nil
	}

	supplied := make(map[string]bool)
	for _, anchor := range gs.strongholdLands(owner.ID) {
		if land := gs.Land(anchor); land != nil {
			for _, id := range gs.Map.LandsInRadius(land.Position, friendlyRadius) {
				supplied[id] = true
			}
		}
	}

	byLand := make(map[string][]*ArmyState)
	var landOrder []string
	for _, a := range gs.ArmiesOf(owner.ID) {
		if !a.IsStationed() {
			continue
		}
		landID := a.LandID()
		if !gs.IsHostileLand(owner.ID, landID) || supplied[landID] {
			continue
		}
		if _, seen := byLand[landID]; !seen {
			landOrder = append(landOrder, landID)
		}
		byLand[landID] = append(byLand[landID], a)
	}

	cfg := attritionConfig()
	var all []PenaltyLoss
	for _, landID := range landOrder {
		all = append(all, ApplyPenalty(gs, byLand[landID], cfg, rng)...)
	}
	return all
}
