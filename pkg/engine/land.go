package engine

// Alignment tags players, land kinds, relics and hero classes.
type Alignment string

const (
	Lawful  Alignment = "lawful"
	Neutral Alignment = "neutral"
	Chaotic Alignment = "chaotic"
)

// LandKind identifies the terrain of a hex cell.
type LandKind string

const (
	Plains    LandKind = "plains"
	Hills     LandKind = "hills"
	Forest    LandKind = "forest"
	Mountains LandKind = "mountains"
	Swamp     LandKind = "swamp"
	Desert    LandKind = "desert"
	Volcano   LandKind = "volcano"
	Darkwood  LandKind = "darkwood"

	// Special lands. Each pair feeds one mana color when controlled.
	ShiningTemple  LandKind = "shining-temple"
	SacredSprings  LandKind = "sacred-springs"
	CursedBarrow   LandKind = "cursed-barrow"
	BoneFields     LandKind = "bone-fields"
	EmberRift      LandKind = "ember-rift"
	ObsidianSpires LandKind = "obsidian-spires"
	CrystalGrotto  LandKind = "crystal-grotto"
	MirrorLake     LandKind = "mirror-lake"
	ElderGrove     LandKind = "elder-grove"
	FeyGlade       LandKind = "fey-glade"
)

// LandTrait is the static rules data for a land kind.
type LandTrait struct {
	Kind        LandKind
	Alignment   Alignment
	GoldPerTurn int
	ManaColor   ManaColor // non-empty only for the ten special lands
}

var landCatalog = map[LandKind]LandTrait{
	Plains:    {Plains, Lawful, 3, ""},
	Hills:     {Hills, Lawful, 2, ""},
	Forest:    {Forest, Neutral, 2, ""},
	Mountains: {Mountains, Neutral, 1, ""},
	Swamp:     {Swamp, Chaotic, 1, ""},
	Desert:    {Desert, Neutral, 0, ""},
	Volcano:   {Volcano, Chaotic, 0, ""},
	Darkwood:  {Darkwood, Chaotic, 1, ""},

	ShiningTemple:  {ShiningTemple, Lawful, 2, White},
	SacredSprings:  {SacredSprings, Lawful, 2, White},
	CursedBarrow:   {CursedBarrow, Chaotic, 2, Black},
	BoneFields:     {BoneFields, Chaotic, 2, Black},
	EmberRift:      {EmberRift, Chaotic, 2, Red},
	ObsidianSpires: {ObsidianSpires, Neutral, 2, Red},
	CrystalGrotto:  {CrystalGrotto, Neutral, 2, Blue},
	MirrorLake:     {MirrorLake, Neutral, 2, Blue},
	ElderGrove:     {ElderGrove, Neutral, 2, Green},
	FeyGlade:       {FeyGlade, Neutral, 2, Green},
}

// LandTraitOf returns the rules data for a land kind. An unknown kind is
// a catalog inconsistency, not a player error, so it panics.
func LandTraitOf(kind LandKind) LandTrait {
	t, ok := landCatalog[kind]
	if !ok {
		panic("engine: unknown land kind " + string(kind))
	}
	return t
}

// IsSpecialLand reports whether the kind is one of the ten mana lands.
func IsSpecialLand(kind LandKind) bool {
	return LandTraitOf(kind).ManaColor != ""
}

// commonLandKinds are the kinds used to fill a generated map.
var commonLandKinds = []LandKind{
	Plains, Plains, Plains, Hills, Hills, Forest, Forest,
	Mountains, Swamp, Desert, Darkwood,
}

// specialLandKinds in catalog order.
var specialLandKinds = []LandKind{
	ShiningTemple, SacredSprings, CursedBarrow, BoneFields,
	EmberRift, ObsidianSpires, CrystalGrotto, MirrorLake,
	ElderGrove, FeyGlade,
}

// EffectType classifies an active effect for merge and dispel rules.
type EffectType string

const (
	PositiveEffect  EffectType = "positive"
	NegativeEffect  EffectType = "negative"
	PermanentEffect EffectType = "permanent"
)

// EffectRules is the behavior block of an active effect.
type EffectRules struct {
	Type     EffectType `json:"type"`
	Duration int        `json:"duration"` // turns remaining; <0 means until dispelled
	Target   TargetKind `json:"target"`
}

// Effect is one active magic effect attached to a land or an army.
type Effect struct {
	SourceID  MagicID     `json:"source_id"`
	AppliedBy string      `json:"applied_by"` // player ID of the caster
	Rules     EffectRules `json:"rules"`
}

// BuildingKind identifies a constructed building.
type BuildingKind string

const (
	Stronghold BuildingKind = "stronghold"
	Outpost    BuildingKind = "outpost"
	WatchTower BuildingKind = "watch-tower"
	Barracks   BuildingKind = "barracks"
	Forge      BuildingKind = "forge"
)

// BuildingTrait is the static rules data for a building kind.
type BuildingTrait struct {
	Kind        BuildingKind
	Cost        int
	GoldPerTurn int
	Slots       int // recruitment slots; 0 means the building cannot recruit
}

var buildingCatalog = map[BuildingKind]BuildingTrait{
	Stronghold: {Stronghold, 0, 5, 2},
	Outpost:    {Outpost, 40, 1, 0},
	WatchTower: {WatchTower, 25, 0, 0},
	Barracks:   {Barracks, 60, 0, 2},
	Forge:      {Forge, 80, 0, 1},
}

// BuildingTraitOf returns the rules data for a building kind, panicking
// on catalog inconsistency.
func BuildingTraitOf(kind BuildingKind) BuildingTrait {
	t, ok := buildingCatalog[kind]
	if !ok {
		panic("engine: unknown building kind " + string(kind))
	}
	return t
}

// RecruitSlot tracks one in-progress recruitment inside a building.
type RecruitSlot struct {
	UnitType       UnitType `json:"unit_type"`
	RemainingTurns int      `json:"remaining_turns"`
}

// Building is a constructed building on a land.
type Building struct {
	Kind  BuildingKind  `json:"kind"`
	Slots []RecruitSlot `json:"slots,omitempty"`
}

// LandState is one hex cell of the battle map. Ownership is not stored
// here; it is derived from PlayerState.LandsOwned.
type LandState struct {
	Position    Position   `json:"position"`
	Kind        LandKind   `json:"kind"`
	Buildings   []Building `json:"buildings,omitempty"`
	Effects     []Effect   `json:"effects,omitempty"`
	GoldPerTurn int        `json:"gold_per_turn"`
	Corrupted   bool       `json:"corrupted,omitempty"`
}

// ID returns the canonical land identifier.
func (l *LandState) ID() string { return l.Position.LandID() }

// HasBuilding reports whether a building of the given kind stands here.
func (l *LandState) HasBuilding(kind BuildingKind) bool {
	for i := range l.Buildings {
		if l.Buildings[i].Kind == kind {
			return true
		}
	}
	return false
}

// FindBuilding returns the building of the given kind, or nil.
func (l *LandState) FindBuilding(kind BuildingKind) *Building {
	for i := range l.Buildings {
		if l.Buildings[i].Kind == kind {
			return &l.Buildings[i]
		}
	}
	return nil
}

// HasEffect reports whether an effect from the given magic is active.
func (l *LandState) HasEffect(source MagicID) bool {
	for i := range l.Effects {
		if l.Effects[i].SourceID == source {
			return true
		}
	}
	return false
}
