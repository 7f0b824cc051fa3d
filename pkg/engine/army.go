package engine

// UnitType identifies a regular unit type.
type UnitType string

const (
	Militia  UnitType = "militia"
	Archer   UnitType = "archer"
	Knight   UnitType = "knight"
	Orc      UnitType = "orc"
	Troll    UnitType = "troll"
	Skeleton UnitType = "skeleton"
	Wraith   UnitType = "wraith"
)

// Rank is the experience tier of a regulars entry.
type Rank string

const (
	RankRegular Rank = "regular"
	RankVeteran Rank = "veteran"
	RankElite   Rank = "elite"
)

// AllRanks returns the three ranks in ascending order.
func AllRanks() []Rank {
	return []Rank{RankRegular, RankVeteran, RankElite}
}

// UnitStats is the combat statistics block shared by heroes and units.
type UnitStats struct {
	Attack      int `json:"attack"`
	Defense     int `json:"defense"`
	Health      int `json:"health"`
	Speed       int `json:"speed"`
	Range       int `json:"range"`
	RangeDamage int `json:"range_damage"`
}

// UnitDef is the static rules data for a regular unit type.
type UnitDef struct {
	Type         UnitType
	Name         string
	Alignment    Alignment
	Stats        UnitStats
	Cost         int
	RecruitTurns int
}

var unitCatalog = map[UnitType]UnitDef{
	Militia:  {Militia, "Militia", Lawful, UnitStats{2, 2, 6, 2, 0, 0}, 5, 1},
	Archer:   {Archer, "Archer", Lawful, UnitStats{2, 1, 5, 2, 3, 2}, 8, 1},
	Knight:   {Knight, "Knight", Lawful, UnitStats{5, 5, 12, 3, 0, 0}, 20, 2},
	Orc:      {Orc, "Orc", Chaotic, UnitStats{4, 2, 8, 2, 0, 0}, 7, 1},
	Troll:    {Troll, "Troll", Chaotic, UnitStats{6, 4, 18, 1, 0, 0}, 25, 3},
	Skeleton: {Skeleton, "Skeleton", Chaotic, UnitStats{2, 1, 4, 2, 0, 0}, 4, 1},
	Wraith:   {Wraith, "Wraith", Chaotic, UnitStats{5, 3, 9, 3, 0, 0}, 22, 2},
}

// UnitDefOf returns a unit's rules data, panicking on a catalog
// inconsistency.
func UnitDefOf(t UnitType) UnitDef {
	d, ok := unitCatalog[t]
	if !ok {
		panic("engine: unknown unit type " + string(t))
	}
	return d
}

// startingUnitFor maps an alignment to its basic recruit.
func startingUnitFor(alignment Alignment) UnitType {
	switch alignment {
	case Chaotic:
		return Orc
	default:
		return Militia
	}
}

// MaxHeroLevel caps hero progression.
const MaxHeroLevel = 30

// mageManaPerTurn is the fixed mana output of a mage hero.
const mageManaPerTurn = 7

// HeroState is a single hero. Names are unique across the game and
// used as lookup keys.
type HeroState struct {
	ID        string       `json:"id"`
	Class     HeroClass    `json:"class"`
	Name      string       `json:"name"`
	Level     int          `json:"level"`
	BaseStats UnitStats    `json:"base_stats"`
	Artifacts []ArtifactID `json:"artifacts,omitempty"`
	Mana      int          `json:"mana,omitempty"` // per-turn output; >0 only for mage classes
}

// IsMage reports whether the hero channels mana.
func (h *HeroState) IsMage() bool {
	_, ok := MageColor(h.Class)
	return ok
}

// LevelUpTo raises the hero's level to at least lvl, clamped to
// MaxHeroLevel. Never lowers the level.
func (h *HeroState) LevelUpTo(lvl int) {
	if lvl > MaxHeroLevel {
		lvl = MaxHeroLevel
	}
	if lvl > h.Level {
		h.Level = lvl
	}
}

// RegularsState is a homogeneous group of units within an army.
// Zero-count entries must be removed, never retained.
type RegularsState struct {
	Type  UnitType `json:"type"`
	Rank  Rank     `json:"rank"`
	Count int      `json:"count"`
}

// WarMachineKind identifies a siege engine.
type WarMachineKind string

const (
	Ballista   WarMachineKind = "ballista"
	Catapult   WarMachineKind = "catapult"
	SiegeTower WarMachineKind = "siege-tower"
)

// WarMachineState is one siege engine in an army.
type WarMachineState struct {
	ID   string         `json:"id"`
	Kind WarMachineKind `json:"kind"`
}

// MovementState tracks an army's path across the map. A path of length
// one means the army is stationed at path[0]; otherwise the army is
// mid-transit and occupies path[progress].
type MovementState struct {
	Path     []Position `json:"path"`
	Progress int        `json:"progress"`
}

// ArmyState is a stack of units sharing a position and movement.
type ArmyState struct {
	ID           string            `json:"id"`
	ControlledBy string            `json:"controlled_by"`
	Heroes       []HeroState       `json:"heroes,omitempty"`
	Regulars     []RegularsState   `json:"regulars,omitempty"`
	WarMachines  []WarMachineState `json:"war_machines,omitempty"`
	Movement     MovementState     `json:"movement"`
	Effects      []Effect          `json:"effects,omitempty"`
}

// Position returns the hex the army currently occupies.
func (a *ArmyState) Position() Position {
	return a.Movement.Path[a.Movement.Progress]
}

// LandID returns the ID of the land the army currently occupies.
func (a *ArmyState) LandID() string { return a.Position().LandID() }

// IsStationed reports whether the army is not mid-transit.
func (a *ArmyState) IsStationed() bool { return len(a.Movement.Path) == 1 }

// IsEmpty reports whether the army has neither heroes nor regulars.
// Empty armies are considered destroyed and must be pruned.
func (a *ArmyState) IsEmpty() bool {
	return len(a.Heroes) == 0 && len(a.Regulars) == 0
}

// HasEffect reports whether an effect from the given magic is active.
func (a *ArmyState) HasEffect(source MagicID) bool {
	for i := range a.Effects {
		if a.Effects[i].SourceID == source {
			return true
		}
	}
	return false
}

// RegularsCount sums regulars across all entries. A non-empty filter
// restricts the sum to one unit type.
func (a *ArmyState) RegularsCount(rank Rank, filter UnitType) int {
	total := 0
	for _, r := range a.Regulars {
		if r.Rank != rank {
			continue
		}
		if filter != "" && r.Type != filter {
			continue
		}
		total += r.Count
	}
	return total
}

// TotalRegulars sums all regulars regardless of rank.
func (a *ArmyState) TotalRegulars() int {
	total := 0
	for _, r := range a.Regulars {
		total += r.Count
	}
	return total
}

// AddRegulars merges a regulars entry into the army, combining counts
// within the matching {type, rank} pair.
func (a *ArmyState) AddRegulars(entry RegularsState) {
	if entry.Count <= 0 {
		return
	}
	for i := range a.Regulars {
		if a.Regulars[i].Type == entry.Type && a.Regulars[i].Rank == entry.Rank {
			a.Regulars[i].Count += entry.Count
			return
		}
	}
	a.Regulars = append(a.Regulars, entry)
}

// removeRegulars subtracts count units from matching entries, dropping
// entries that reach zero. Returns the number actually removed.
func (a *ArmyState) removeRegulars(rank Rank, filter UnitType, count int) int {
	removed := 0
	kept := a.Regulars[:0]
	for _, r := range a.Regulars {
		if count > 0 && r.Rank == rank && (filter == "" || r.Type == filter) {
			take := r.Count
			if take > count {
				take = count
			}
			r.Count -= take
			count -= take
			removed += take
		}
		if r.Count > 0 {
			kept = append(kept, r)
		}
	}
	a.Regulars = kept
	return removed
}

// FindHero returns the index of a hero by name, or -1.
func (a *ArmyState) FindHero(name string) int {
	for i := range a.Heroes {
		if a.Heroes[i].Name == name {
			return i
		}
	}
	return -1
}
