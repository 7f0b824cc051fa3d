package engine

// MagicID identifies a spell or an item-borne magic effect.
type MagicID string

const (
	// Spells.
	MagicBlessing        MagicID = "blessing"
	MagicHealingRain     MagicID = "healing-rain"
	MagicRaiseDead       MagicID = "raise-dead"
	MagicCorruption      MagicID = "corruption"
	MagicFireStorm       MagicID = "fire-storm"
	MagicMindFog         MagicID = "mind-fog"
	MagicArcaneWard      MagicID = "arcane-ward"
	MagicFertileLand     MagicID = "fertile-land"
	MagicEntanglingRoots MagicID = "entangling-roots"
	MagicBeastAttack     MagicID = "beast-attack"

	// Item-borne magics.
	MagicHourglassOfDelay  MagicID = "hourglass-of-delay"
	MagicDeedOfReclamation MagicID = "deed-of-reclamation"
	MagicHornOfValor       MagicID = "horn-of-valor"
	MagicVialOfVenom       MagicID = "vial-of-venom"
	MagicCrystalOrb        MagicID = "crystal-orb"
)

// TargetOwner selects whose holdings a magic may target.
type TargetOwner string

const (
	TargetPlayer   TargetOwner = "player"
	TargetOpponent TargetOwner = "opponent"
	TargetAll      TargetOwner = "all"
)

// TargetKind selects what a magic attaches to.
type TargetKind string

const (
	TargetLand TargetKind = "land"
	TargetArmy TargetKind = "army"
)

// MagicDef is the static rules data for one magic.
type MagicDef struct {
	ID          MagicID
	Name        string
	Color       ManaColor // "" for item-borne magics, which cost no mana
	Cost        int
	TargetOwner TargetOwner
	TargetKind  TargetKind
	EffectType  EffectType
	Duration    int          // turns an attached effect lasts; 0 for instants
	Damage      *PenaltyTier // set for direct-damage magics
	Bespoke     bool         // has dedicated land-selection logic
}

// beastAttackTier and fireStormTier are the direct-damage bands.
var (
	beastAttackTier = PenaltyTier{MinPct: 0.15, MaxPct: 0.225, MinAbs: 5, MaxAbs: 15}
	fireStormTier   = PenaltyTier{MinPct: 0.12, MaxPct: 0.18, MinAbs: 8, MaxAbs: 20}
)

var magicCatalog = map[MagicID]MagicDef{
	MagicBlessing:        {ID: MagicBlessing, Name: "Blessing", Color: White, Cost: 6, TargetOwner: TargetPlayer, TargetKind: TargetArmy, EffectType: PositiveEffect, Duration: 3},
	MagicHealingRain:     {ID: MagicHealingRain, Name: "Healing Rain", Color: White, Cost: 9, TargetOwner: TargetPlayer, TargetKind: TargetArmy, EffectType: PositiveEffect, Duration: 0},
	MagicRaiseDead:       {ID: MagicRaiseDead, Name: "Raise Dead", Color: Black, Cost: 8, TargetOwner: TargetPlayer, TargetKind: TargetArmy, EffectType: PositiveEffect, Duration: 0},
	MagicCorruption:      {ID: MagicCorruption, Name: "Corruption", Color: Black, Cost: 12, TargetOwner: TargetAll, TargetKind: TargetLand, EffectType: PermanentEffect, Duration: -1, Bespoke: true},
	MagicFireStorm:       {ID: MagicFireStorm, Name: "Fire Storm", Color: Red, Cost: 10, TargetOwner: TargetOpponent, TargetKind: TargetArmy, EffectType: NegativeEffect, Duration: 0, Damage: &fireStormTier},
	MagicMindFog:         {ID: MagicMindFog, Name: "Mind Fog", Color: Blue, Cost: 7, TargetOwner: TargetOpponent, TargetKind: TargetArmy, EffectType: NegativeEffect, Duration: 2},
	MagicArcaneWard:      {ID: MagicArcaneWard, Name: "Arcane Ward", Color: Blue, Cost: 8, TargetOwner: TargetPlayer, TargetKind: TargetArmy, EffectType: PositiveEffect, Duration: 3},
	MagicFertileLand:     {ID: MagicFertileLand, Name: "Fertile Land", Color: Green, Cost: 8, TargetOwner: TargetPlayer, TargetKind: TargetLand, EffectType: PositiveEffect, Duration: -1},
	MagicEntanglingRoots: {ID: MagicEntanglingRoots, Name: "Entangling Roots", Color: Green, Cost: 7, TargetOwner: TargetOpponent, TargetKind: TargetLand, EffectType: NegativeEffect, Duration: 2},
	MagicBeastAttack:     {ID: MagicBeastAttack, Name: "Beast Attack", Color: Green, Cost: 10, TargetOwner: TargetOpponent, TargetKind: TargetArmy, EffectType: NegativeEffect, Duration: 0, Damage: &beastAttackTier},

	MagicHourglassOfDelay:  {ID: MagicHourglassOfDelay, Name: "Hourglass of Delay", TargetOwner: TargetOpponent, TargetKind: TargetLand, EffectType: NegativeEffect, Duration: 2},
	MagicDeedOfReclamation: {ID: MagicDeedOfReclamation, Name: "Deed of Reclamation", TargetOwner: TargetAll, TargetKind: TargetLand, EffectType: PositiveEffect, Duration: 0, Bespoke: true},
	MagicHornOfValor:       {ID: MagicHornOfValor, Name: "Horn of Valor", TargetOwner: TargetPlayer, TargetKind: TargetArmy, EffectType: PositiveEffect, Duration: 2},
	MagicVialOfVenom:       {ID: MagicVialOfVenom, Name: "Vial of Venom", TargetOwner: TargetOpponent, TargetKind: TargetArmy, EffectType: NegativeEffect, Duration: 3},
	MagicCrystalOrb:        {ID: MagicCrystalOrb, Name: "Crystal Orb", TargetOwner: TargetPlayer, TargetKind: TargetLand, EffectType: PositiveEffect, Duration: 1},
}

// MagicDefOf returns a magic's rules data, panicking on a catalog
// inconsistency.
func MagicDefOf(id MagicID) MagicDef {
	d, ok := magicCatalog[id]
	if !ok {
		panic("engine: unknown magic " + string(id))
	}
	return d
}

// corruptionReach maps the buildings Corruption can spread from to
// their reach.
var corruptionReach = map[BuildingKind]int{
	WatchTower: 1,
	Outpost:    2,
	Stronghold: 3,
}

// GetValidMagicLands returns the land IDs where the caster may legally
// apply the magic.
func GetValidMagicLands(gs *GameState, casterID string, id MagicID) []string {
	def := MagicDefOf(id)
	caster := gs.Player(casterID)
	if caster == nil {
		return nil
	}

	switch {
	case id == MagicCorruption:
		return corruptionTargets(gs, caster)
	case id == MagicDeedOfReclamation:
		return reclamationTargets(gs, caster)
	}

	switch def.TargetOwner {
	case TargetPlayer:
		if def.TargetKind == TargetLand {
			return ownLandsWithout(gs, caster, id)
		}
		return armyLandsWithout(gs, []*PlayerState{caster}, id)
	case TargetOpponent:
		var rivals []*PlayerState
		for _, p := range gs.Players {
			if p.ID != casterID {
				rivals = append(rivals, p)
			}
		}
		if def.TargetKind == TargetLand {
			return theirLandsWithout(gs, rivals, id)
		}
		return armyLandsWithout(gs, rivals, id)
	default: // TargetAll
		if def.TargetKind == TargetLand {
			return theirLandsWithout(gs, gs.Players, id)
		}
		return armyLandsWithout(gs, gs.Players, id)
	}
}

func ownLandsWithout(gs *GameState, caster *PlayerState, id MagicID) []string {
	var out []string
	for landID := range caster.LandsOwned {
		if land := gs.Land(landID); land != nil && !land.HasEffect(id) {
			out = append(out, landID)
		}
	}
	return out
}

func theirLandsWithout(gs *GameState, players []*PlayerState, id MagicID) []string {
	var out []string
	for _, p := range players {
		for landID := range p.LandsOwned {
			if land := gs.Land(landID); land != nil && !land.HasEffect(id) {
				out = append(out, landID)
			}
		}
	}
	return out
}

func armyLandsWithout(gs *GameState, players []*PlayerState, id MagicID) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range players {
		for _, a := range gs.ArmiesOf(p.ID) {
			landID := a.LandID()
			if a.HasEffect(id) || seen[landID] {
				continue
			}
			seen[landID] = true
			out = append(out, landID)
		}
	}
	return out
}

// corruptionTargets spreads from the caster's towers, outposts and
// strongholds in a building-dependent radius, reaching lands that are
// not chaotic, not desert, not special and not already corrupted.
func corruptionTargets(gs *GameState, caster *PlayerState) []string {
	seen := make(map[string]bool)
	var out []string
	for landID := range caster.LandsOwned {
		land := gs.Land(landID)
		if land == nil {
			continue
		}
		for _, b := range land.Buildings {
			reach, ok := corruptionReach[b.Kind]
			if !ok {
				continue
			}
			for _, id := range gs.Map.LandsInRadius(land.Position, reach) {
				if seen[id] {
					continue
				}
				target := gs.Land(id)
				trait := LandTraitOf(target.Kind)
				if trait.Alignment == Chaotic || target.Kind == Desert ||
					IsSpecialLand(target.Kind) || target.Corrupted {
					continue
				}
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// reclamationReach is how far a Deed of Reclamation reaches from the
// caster's outposts and strongholds.
const reclamationReach = 3

// reclamationTargets finds unclaimed lands near the caster's outposts
// and strongholds.
func reclamationTargets(gs *GameState, caster *PlayerState) []string {
	seen := make(map[string]bool)
	var out []string
	for landID := range caster.LandsOwned {
		land := gs.Land(landID)
		if land == nil || (!land.HasBuilding(Outpost) && !land.HasBuilding(Stronghold)) {
			continue
		}
		for _, id := range gs.Map.LandsInRadius(land.Position, reclamationReach) {
			if seen[id] || gs.OwnerOf(id) != nil {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// raiseDeadCount is how many skeletons Raise Dead adds.
const raiseDeadCount = 10

// CastSpell casts a spell on a land, spending the caster's mana.
// Invalid targets and unaffordable casts are rejected and leave the
// state unchanged. A spell may be cast again in the same turn as long
// as the target remains legal.
func CastSpell(gs *GameState, casterID string, id MagicID, landID string, rng Rand) error {
	def := MagicDefOf(id)
	caster := gs.Player(casterID)
	if caster == nil {
		return rejected("unknown player %s", casterID)
	}
	if def.Color == "" {
		return rejected("%s is not a spell", def.Name)
	}
	if caster.Mana[def.Color] < def.Cost {
		return rejected("not enough %s mana for %s", def.Color, def.Name)
	}
	if !containsString(GetValidMagicLands(gs, casterID, id), landID) {
		return rejected("%s cannot target %s", def.Name, landID)
	}

	caster.AddMana(def.Color, -def.Cost)
	applyMagic(gs, caster, def, landID, rng)
	return nil
}

// InvokeItem uses an empire item on a land. Consumable items burn one
// charge per invocation; a copy that reached zero charges disappears
// the next time the item is used.
func InvokeItem(gs *GameState, playerID string, id ItemID, landID string, rng Rand) error {
	item := ItemDefOf(id)
	player := gs.Player(playerID)
	if player == nil {
		return rejected("unknown player %s", playerID)
	}
	if item.Magic == "" {
		return rejected("%s cannot be invoked", item.Name)
	}

	// Sweep spent copies before locating a usable one.
	for i := 0; i < len(player.Treasures); {
		t := player.Treasures[i]
		if t.Kind == ItemTreasure && t.Item == id && ItemDefOf(t.Item).Consumable && t.Charges <= 0 {
			player.removeTreasureAt(i)
			continue
		}
		i++
	}

	idx := -1
	for i := range player.Treasures {
		t := &player.Treasures[i]
		if t.Kind != ItemTreasure || t.Item != id {
			continue
		}
		if !item.Consumable || t.Charges > 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rejected("empire does not hold a usable %s", item.Name)
	}

	def := MagicDefOf(item.Magic)
	if !containsString(GetValidMagicLands(gs, playerID, item.Magic), landID) {
		return rejected("%s cannot target %s", item.Name, landID)
	}

	if item.Consumable {
		player.Treasures[idx].Charges--
	}
	applyMagic(gs, player, def, landID, rng)
	return nil
}

// applyMagic performs the state mutation of a validated magic.
func applyMagic(gs *GameState, caster *PlayerState, def MagicDef, landID string, rng Rand) {
	land := gs.Land(landID)

	switch def.ID {
	case MagicCorruption:
		land.Corrupted = true
		land.Effects = append(land.Effects, newEffect(def, caster.ID))
		return
	case MagicDeedOfReclamation:
		gs.TransferLand(landID, caster.ID)
		return
	case MagicRaiseDead:
		army := gs.StationedArmy(landID, caster.ID)
		if army == nil {
			army = NewArmy(gs, caster.ID, land.Position)
			gs.AddArmy(army)
		}
		army.AddRegulars(NewRegulars(Skeleton, raiseDeadCount))
		return
	case MagicHealingRain:
		for _, a := range targetArmies(gs, caster, def, landID) {
			a.Effects = keepNonNegative(a.Effects)
		}
		return
	}

	if def.Damage != nil {
		tiers := make(map[Rank]PenaltyTier, 3)
		for _, r := range AllRanks() {
			tiers[r] = *def.Damage
		}
		cfg := PenaltyConfig{Tiers: tiers, ShieldedBy: MirrorOfIllusion}
		ApplyPenalty(gs, targetArmies(gs, caster, def, landID), cfg, rng)
		return
	}

	if def.Duration == 0 {
		return
	}
	switch def.TargetKind {
	case TargetLand:
		land.Effects = append(land.Effects, newEffect(def, caster.ID))
	case TargetArmy:
		for _, a := range targetArmies(gs, caster, def, landID) {
			a.Effects = append(a.Effects, newEffect(def, caster.ID))
		}
	}
}

// targetArmies resolves which armies at the land the magic touches.
func targetArmies(gs *GameState, caster *PlayerState, def MagicDef, landID string) []*ArmyState {
	var out []*ArmyState
	for _, a := range gs.ArmiesAt(landID) {
		mine := a.ControlledBy == caster.ID
		switch def.TargetOwner {
		case TargetPlayer:
			if !mine {
				continue
			}
		case TargetOpponent:
			if mine {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func newEffect(def MagicDef, casterID string) Effect {
	return Effect{
		SourceID:  def.ID,
		AppliedBy: casterID,
		Rules: EffectRules{
			Type:     def.EffectType,
			Duration: def.Duration,
			Target:   def.TargetKind,
		},
	}
}

func keepNonNegative(effects []Effect) []Effect {
	var out []Effect
	for _, e := range effects {
		if e.Rules.Type != NegativeEffect {
			out = append(out, e)
		}
	}
	return out
}

// TickEffects ages timed effects on the turn owner's lands and armies
// by one turn. Permanent effects and effects with negative duration
// never expire.
func TickEffects(gs *GameState, playerID string) {
	player := gs.Player(playerID)
	if player == nil {
		return
	}
	for landID := range player.LandsOwned {
		if land := gs.Land(landID); land != nil {
			land.Effects = tickEffectList(land.Effects)
		}
	}
	for _, a := range gs.ArmiesOf(playerID) {
		a.Effects = tickEffectList(a.Effects)
	}
}

func tickEffectList(effects []Effect) []Effect {
	var out []Effect
	for _, e := range effects {
		if e.Rules.Type == PermanentEffect || e.Rules.Duration < 0 {
			out = append(out, e)
			continue
		}
		e.Rules.Duration--
		if e.Rules.Duration > 0 {
			out = append(out, e)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
