package engine

// ManaColor is one of the five schools of magic.
type ManaColor string

const (
	White ManaColor = "white"
	Black ManaColor = "black"
	Red   ManaColor = "red"
	Blue  ManaColor = "blue"
	Green ManaColor = "green"
)

// AllManaColors returns the five colors in catalog order.
func AllManaColors() []ManaColor {
	return []ManaColor{White, Black, Red, Blue, Green}
}

// MaxMana caps every color of a player's mana pool.
const MaxMana = 50

// HeroClass identifies a hero's class. Mage classes each map to one
// mana color; the rest produce no mana.
type HeroClass string

const (
	Cleric      HeroClass = "cleric"
	Necromancer HeroClass = "necromancer"
	Pyromancer  HeroClass = "pyromancer"
	Enchanter   HeroClass = "enchanter"
	Druid       HeroClass = "druid"
	Warlord     HeroClass = "warlord"
	Ranger      HeroClass = "ranger"
)

// mageColors maps mage classes to the color they channel.
var mageColors = map[HeroClass]ManaColor{
	Cleric:      White,
	Necromancer: Black,
	Pyromancer:  Red,
	Enchanter:   Blue,
	Druid:       Green,
}

// MageColor returns the mana color a class channels and whether the
// class is a mage at all.
func MageColor(class HeroClass) (ManaColor, bool) {
	c, ok := mageColors[class]
	return c, ok
}

// MageClassFor returns the mage class that channels a color. Panics on
// an unknown color since colors come from static catalogs.
func MageClassFor(color ManaColor) HeroClass {
	for class, c := range mageColors {
		if c == color {
			return class
		}
	}
	panic("engine: no mage class for color " + string(color))
}

// classAlignments fixes each hero class to an alignment.
var classAlignments = map[HeroClass]Alignment{
	Cleric:      Lawful,
	Necromancer: Chaotic,
	Pyromancer:  Chaotic,
	Enchanter:   Neutral,
	Druid:       Neutral,
	Warlord:     Lawful,
	Ranger:      Neutral,
}

// ClassAlignment returns the alignment of a hero class.
func ClassAlignment(class HeroClass) Alignment {
	a, ok := classAlignments[class]
	if !ok {
		panic("engine: unknown hero class " + string(class))
	}
	return a
}

// PlayerType distinguishes human seats from computer seats.
type PlayerType string

const (
	HumanPlayer    PlayerType = "human"
	ComputerPlayer PlayerType = "computer"
)

// DiplomacyStatus is the relation between two empires.
type DiplomacyStatus string

const (
	StatusWar      DiplomacyStatus = "war"
	StatusAlliance DiplomacyStatus = "alliance"
	StatusNeutral  DiplomacyStatus = "neutral"
)

// PlayerProfile is the static identity of an empire: name, alignment
// and the hero class of its champion.
type PlayerProfile struct {
	Name      string    `json:"name"`
	Alignment Alignment `json:"alignment"`
	Class     HeroClass `json:"class"`
}

// NewProfile builds a profile whose alignment follows the class.
func NewProfile(name string, class HeroClass) PlayerProfile {
	return PlayerProfile{Name: name, Alignment: ClassAlignment(class), Class: class}
}

// PlayerState is one empire in the game.
type PlayerState struct {
	ID         string                     `json:"id"`
	Profile    PlayerProfile              `json:"profile"`
	Type       PlayerType                 `json:"type"`
	Vault      int                        `json:"vault"`
	Mana       map[ManaColor]int          `json:"mana"`
	LandsOwned map[string]bool            `json:"lands_owned"`
	Quests     []*HeroQuest               `json:"quests,omitempty"`
	Treasures  []Treasure                 `json:"treasures,omitempty"`
	Diplomacy  map[string]DiplomacyStatus `json:"diplomacy,omitempty"`
}

// NewPlayer creates an empire with an empty economy.
func NewPlayer(id string, profile PlayerProfile, ptype PlayerType) *PlayerState {
	mana := make(map[ManaColor]int, 5)
	for _, c := range AllManaColors() {
		mana[c] = 0
	}
	return &PlayerState{
		ID:         id,
		Profile:    profile,
		Type:       ptype,
		Vault:      100,
		Mana:       mana,
		LandsOwned: make(map[string]bool),
		Diplomacy:  make(map[string]DiplomacyStatus),
	}
}

// OwnsLand reports whether the player controls the land.
func (p *PlayerState) OwnsLand(landID string) bool {
	return p.LandsOwned[landID]
}

// AddMana adds amount of a color, clamping the pool to [0, MaxMana].
func (p *PlayerState) AddMana(color ManaColor, amount int) {
	v := p.Mana[color] + amount
	if v > MaxMana {
		v = MaxMana
	}
	if v < 0 {
		v = 0
	}
	p.Mana[color] = v
}

// StatusWith returns the diplomacy status toward another player,
// defaulting to neutral.
func (p *PlayerState) StatusWith(otherID string) DiplomacyStatus {
	if s, ok := p.Diplomacy[otherID]; ok {
		return s
	}
	return StatusNeutral
}

// HoldsRelic reports whether the empire owns the given relic.
func (p *PlayerState) HoldsRelic(id RelicID) bool {
	for i := range p.Treasures {
		t := &p.Treasures[i]
		if t.Kind == RelicTreasure && t.Relic == id {
			return true
		}
	}
	return false
}

// FindItem returns the index of the first copy of an item with charges
// remaining, or -1.
func (p *PlayerState) FindItem(id ItemID) int {
	for i := range p.Treasures {
		t := &p.Treasures[i]
		if t.Kind == ItemTreasure && t.Item == id && t.Charges > 0 {
			return i
		}
	}
	return -1
}

// removeTreasureAt drops the treasure at index i, preserving order.
func (p *PlayerState) removeTreasureAt(i int) {
	p.Treasures = append(p.Treasures[:i], p.Treasures[i+1:]...)
}
