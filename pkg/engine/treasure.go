package engine

// TreasureKind separates the three disjoint treasure taxonomies.
type TreasureKind string

const (
	ArtifactTreasure TreasureKind = "artifact"
	ItemTreasure     TreasureKind = "item"
	RelicTreasure    TreasureKind = "relic"
)

// ArtifactID identifies a hero-bound equippable artifact.
type ArtifactID string

const (
	BladeOfDawn      ArtifactID = "blade-of-dawn"
	ShieldOfThorns   ArtifactID = "shield-of-thorns"
	BootsOfTheWind   ArtifactID = "boots-of-the-wind"
	AmuletOfVigor    ArtifactID = "amulet-of-vigor"
	CloakOfShadows   ArtifactID = "cloak-of-shadows"
	RingOfFarsight   ArtifactID = "ring-of-farsight"
	GauntletsOfStone ArtifactID = "gauntlets-of-stone"
)

// ArtifactDef is the static rules data for an artifact.
type ArtifactDef struct {
	ID      ArtifactID
	Name    string
	Attack  int
	Defense int
	Health  int
	Speed   int
}

var artifactCatalog = []ArtifactDef{
	{BladeOfDawn, "Blade of Dawn", 4, 0, 0, 0},
	{ShieldOfThorns, "Shield of Thorns", 0, 4, 0, 0},
	{BootsOfTheWind, "Boots of the Wind", 0, 0, 0, 2},
	{AmuletOfVigor, "Amulet of Vigor", 0, 0, 6, 0},
	{CloakOfShadows, "Cloak of Shadows", 1, 2, 0, 1},
	{RingOfFarsight, "Ring of Farsight", 2, 0, 0, 0},
	{GauntletsOfStone, "Gauntlets of Stone", 0, 3, 2, 0},
}

// ArtifactDefOf returns an artifact's rules data, panicking on a
// catalog inconsistency.
func ArtifactDefOf(id ArtifactID) ArtifactDef {
	for _, d := range artifactCatalog {
		if d.ID == id {
			return d
		}
	}
	panic("engine: unknown artifact " + string(id))
}

// ItemID identifies an empire-bound item.
type ItemID string

const (
	MercyOfOrrivane   ItemID = "mercy-of-orrivane"
	HourglassOfDelay  ItemID = "hourglass-of-delay"
	DeedOfReclamation ItemID = "deed-of-reclamation"
	HornOfValor       ItemID = "horn-of-valor"
	VialOfVenom       ItemID = "vial-of-venom"
	CrystalOrb        ItemID = "crystal-orb"
)

// ItemDef is the static rules data for an item. Consumable items carry
// a charge counter; non-consumable ones may be invoked indefinitely.
type ItemDef struct {
	ID         ItemID
	Name       string
	Consumable bool
	Charges    int     // initial charges for consumable items
	Magic      MagicID // effect applied on invocation ("" for passives)
}

var itemCatalog = []ItemDef{
	{MercyOfOrrivane, "Mercy of Orrivane", true, 1, ""},
	{HourglassOfDelay, "Hourglass of Delay", true, 3, MagicHourglassOfDelay},
	{DeedOfReclamation, "Deed of Reclamation", true, 1, MagicDeedOfReclamation},
	{HornOfValor, "Horn of Valor", true, 2, MagicHornOfValor},
	{VialOfVenom, "Vial of Venom", true, 2, MagicVialOfVenom},
	{CrystalOrb, "Crystal Orb", false, 0, MagicCrystalOrb},
}

// ItemDefOf returns an item's rules data, panicking on a catalog
// inconsistency.
func ItemDefOf(id ItemID) ItemDef {
	for _, d := range itemCatalog {
		if d.ID == id {
			return d
		}
	}
	panic("engine: unknown item " + string(id))
}

// RelicID identifies a permanent empire relic. At most one instance of
// each relic exists across all players at any time.
type RelicID string

const (
	HeartstoneOfOrrivane  RelicID = "heartstone-of-orrivane"
	BannerOfUnity         RelicID = "banner-of-unity"
	ShardOfTheSilentAnvil RelicID = "shard-of-the-silent-anvil"
	MirrorOfIllusion      RelicID = "mirror-of-illusion"
	CrownOfDominion       RelicID = "crown-of-dominion"
	ScalesOfJudgement     RelicID = "scales-of-judgement"
	SkullOfTheFirstLich   RelicID = "skull-of-the-first-lich"
	WarhornOfTheAncients  RelicID = "warhorn-of-the-ancients"
	EyeOfTheStorm         RelicID = "eye-of-the-storm"
)

// RelicDef is the static rules data for a relic. Alignment "" means
// the relic is compatible with every empire.
type RelicDef struct {
	ID        RelicID
	Name      string
	Alignment Alignment
}

var relicCatalog = []RelicDef{
	{HeartstoneOfOrrivane, "Heartstone of Orrivane", ""},
	{BannerOfUnity, "Banner of Unity", ""},
	{ShardOfTheSilentAnvil, "Shard of the Silent Anvil", ""},
	{MirrorOfIllusion, "Mirror of Illusion", ""},
	{EyeOfTheStorm, "Eye of the Storm", ""},
	{CrownOfDominion, "Crown of Dominion", Lawful},
	{ScalesOfJudgement, "Scales of Judgement", Lawful},
	{SkullOfTheFirstLich, "Skull of the First Lich", Chaotic},
	{WarhornOfTheAncients, "Warhorn of the Ancients", Chaotic},
}

// RelicDefOf returns a relic's rules data, panicking on a catalog
// inconsistency.
func RelicDefOf(id RelicID) RelicDef {
	for _, d := range relicCatalog {
		if d.ID == id {
			return d
		}
	}
	panic("engine: unknown relic " + string(id))
}

// Treasure is one empire-held treasure instance. Kind selects which ID
// field is meaningful; Charges applies to consumable items only.
type Treasure struct {
	Kind    TreasureKind `json:"kind"`
	Item    ItemID       `json:"item,omitempty"`
	Relic   RelicID      `json:"relic,omitempty"`
	Charges int          `json:"charges,omitempty"`
}

// NewItemTreasure instantiates an item with its full charge counter.
func NewItemTreasure(id ItemID) Treasure {
	def := ItemDefOf(id)
	return Treasure{Kind: ItemTreasure, Item: id, Charges: def.Charges}
}

// NewRelicTreasure instantiates a relic.
func NewRelicTreasure(id RelicID) Treasure {
	return Treasure{Kind: RelicTreasure, Relic: id}
}

// Name returns the catalog display name of the treasure.
func (t Treasure) Name() string {
	switch t.Kind {
	case ItemTreasure:
		return ItemDefOf(t.Item).Name
	case RelicTreasure:
		return RelicDefOf(t.Relic).Name
	}
	return string(t.Kind)
}

// relicHeldByAnyPlayer reports whether any empire holds the relic.
// Relic uniqueness is enforced at reward-generation time, not by a
// stored counter.
func relicHeldByAnyPlayer(gs *GameState, id RelicID) bool {
	for _, p := range gs.Players {
		if p.HoldsRelic(id) {
			return true
		}
	}
	return false
}

// availableRelics returns relics compatible with the player's alignment
// that no empire holds yet.
func availableRelics(gs *GameState, player *PlayerState) []RelicID {
	var out []RelicID
	for _, d := range relicCatalog {
		if d.Alignment != "" && d.Alignment != player.Profile.Alignment {
			continue
		}
		if relicHeldByAnyPlayer(gs, d.ID) {
			continue
		}
		out = append(out, d.ID)
	}
	return out
}
