package engine

// PlayerSetup configures one seat for NewGame.
type PlayerSetup struct {
	Profile PlayerProfile
	Type    PlayerType
}

// GameConfig configures a new game.
type GameConfig struct {
	Rows    int
	Cols    int
	Players []PlayerSetup
}

// DefaultRows and DefaultCols are the standard battle map size.
const (
	DefaultRows = 9
	DefaultCols = 12
)

// NewGame builds a fresh game: a generated map with sparse special
// lands, one empire per seat and turn 1 ready to start. Homelands and
// starting armies are placed by the first START phase, not here.
func NewGame(cfg GameConfig, rng Rand) *GameState {
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}

	gs := &GameState{
		Map:       generateMap(cfg.Rows, cfg.Cols, rng),
		Turn:      1,
		TurnPhase: PhaseStart,
	}
	for i, seat := range cfg.Players {
		p := NewPlayer("player-"+itoa(i+1), seat.Profile, seat.Type)
		gs.Players = append(gs.Players, p)
	}
	if len(gs.Players) > 0 {
		gs.TurnOwner = gs.Players[0].ID
	}
	return gs
}

// generateMap fills the hex rectangle with common terrain and scatters
// each special land kind exactly once.
func generateMap(rows, cols int, rng Rand) BattleMap {
	m := BattleMap{Rows: rows, Cols: cols, Lands: make(map[string]*LandState)}
	var ids []string
	for r := 0; r < rows; r++ {
		for c := 0; c < m.RowWidth(r); c++ {
			pos := Position{Row: r, Col: c}
			kind := RandomElement(rng, commonLandKinds)
			m.Lands[pos.LandID()] = newLand(pos, kind)
			ids = append(ids, pos.LandID())
		}
	}
	for _, kind := range specialLandKinds {
		for tries := 0; tries < len(ids); tries++ {
			id := RandomElement(rng, ids)
			if !IsSpecialLand(m.Lands[id].Kind) {
				m.Lands[id] = newLand(m.Lands[id].Position, kind)
				break
			}
		}
	}
	return m
}

func newLand(pos Position, kind LandKind) *LandState {
	trait := LandTraitOf(kind)
	return &LandState{
		Position:    pos,
		Kind:        kind,
		GoldPerTurn: trait.GoldPerTurn,
	}
}

var heroNamePool = []string{
	"Aldric", "Brennan", "Caelwyn", "Darath", "Elowen", "Fenric",
	"Gwendis", "Haldor", "Isolde", "Jorund", "Kaelith", "Lysandra",
	"Morwenna", "Nerith", "Oswin", "Perrin", "Quillon", "Rhoswen",
	"Sorrel", "Theobald", "Ulfric", "Vessara", "Wrenna", "Xanthe",
	"Ysolde", "Zedrik",
}

// classBaseStats fixes starting statistics per hero class.
var classBaseStats = map[HeroClass]UnitStats{
	Cleric:      {3, 4, 14, 2, 0, 0},
	Necromancer: {4, 2, 12, 2, 2, 3},
	Pyromancer:  {5, 2, 11, 2, 3, 4},
	Enchanter:   {3, 3, 12, 2, 2, 3},
	Druid:       {3, 3, 13, 2, 2, 2},
	Warlord:     {6, 5, 18, 3, 0, 0},
	Ranger:      {4, 3, 14, 3, 4, 3},
}

// NewHero mints a level-1 hero with a fresh unique name. Mage heroes
// carry their fixed per-turn mana output.
func NewHero(gs *GameState, class HeroClass, rng Rand) HeroState {
	h := HeroState{
		ID:        gs.nextID("hero"),
		Class:     class,
		Name:      uniqueHeroName(gs, rng),
		Level:     1,
		BaseStats: classBaseStats[class],
	}
	if h.IsMage() {
		h.Mana = mageManaPerTurn
	}
	return h
}

// uniqueHeroName draws from the name pool, suffixing when the game has
// outlived the pool. Hero names key several selectors, so collisions
// are not allowed.
func uniqueHeroName(gs *GameState, rng Rand) string {
	for tries := 0; tries < 8; tries++ {
		name := RandomElement(rng, heroNamePool)
		if !heroNameTaken(gs, name) {
			return name
		}
	}
	for i := 2; ; i++ {
		name := RandomElement(rng, heroNamePool) + " " + roman(i)
		if !heroNameTaken(gs, name) {
			return name
		}
	}
}

func heroNameTaken(gs *GameState, name string) bool {
	if h, _ := gs.HeroByName(name); h != nil {
		return true
	}
	for _, p := range gs.Players {
		for _, q := range p.Quests {
			if q.Hero.Name == name {
				return true
			}
		}
	}
	return false
}

func roman(n int) string {
	vals := []int{10, 9, 5, 4, 1}
	syms := []string{"X", "IX", "V", "IV", "I"}
	out := ""
	for i, v := range vals {
		for n >= v {
			out += syms[i]
			n -= v
		}
	}
	return out
}

// NewRegulars builds a regulars entry at the basic rank.
func NewRegulars(t UnitType, count int) RegularsState {
	return RegularsState{Type: t, Rank: RankRegular, Count: count}
}

// NewWarMachine mints a siege engine.
func NewWarMachine(gs *GameState, kind WarMachineKind) WarMachineState {
	return WarMachineState{ID: gs.nextID("wm"), Kind: kind}
}

// NewArmy mints a stationed army at the given position.
func NewArmy(gs *GameState, playerID string, at Position) *ArmyState {
	return &ArmyState{
		ID:           gs.nextID("army"),
		ControlledBy: playerID,
		Movement:     MovementState{Path: []Position{at}},
	}
}
