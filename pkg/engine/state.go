package engine

// TurnPhase is the phase of the turn state machine.
type TurnPhase string

const (
	PhaseStart TurnPhase = "start"
	PhaseMain  TurnPhase = "main"
	PhaseEnd   TurnPhase = "end"
)

// BattleMap holds the hex grid dimensions and every land cell.
// Every position inside the dimensions rectangle (with odd rows one hex
// shorter) exists exactly once in Lands, keyed by "{row}-{col}".
type BattleMap struct {
	Rows  int                   `json:"rows"`
	Cols  int                   `json:"cols"`
	Lands map[string]*LandState `json:"lands"`
}

// GameState is the root aggregate of one game. It is the single
// canonical mutable object: systems functions take *GameState and
// mutate it in place.
type GameState struct {
	Map       BattleMap      `json:"map"`
	Players   []*PlayerState `json:"players"`
	Armies    []*ArmyState   `json:"armies"`
	TurnOwner string         `json:"turn_owner"`
	Turn      int            `json:"turn"`
	TurnPhase TurnPhase      `json:"turn_phase"`
	Sequence  int            `json:"sequence"` // monotonic counter behind entity IDs
}

// Land returns the land with the given ID, or nil.
func (gs *GameState) Land(id string) *LandState {
	return gs.Map.Lands[id]
}

// Player returns the player with the given ID, or nil.
func (gs *GameState) Player(id string) *PlayerState {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the turn owner.
func (gs *GameState) CurrentPlayer() *PlayerState {
	return gs.Player(gs.TurnOwner)
}

// OwnerOf returns the player whose LandsOwned set contains the land,
// or nil for unclaimed lands. Ownership lives on players, not lands.
func (gs *GameState) OwnerOf(landID string) *PlayerState {
	for _, p := range gs.Players {
		if p.LandsOwned[landID] {
			return p
		}
	}
	return nil
}

// ArmiesAt returns every army currently occupying the land, including
// moving armies mid-transit.
func (gs *GameState) ArmiesAt(landID string) []*ArmyState {
	var out []*ArmyState
	for _, a := range gs.Armies {
		if a.LandID() == landID {
			out = append(out, a)
		}
	}
	return out
}

// StationedArmy returns the stationed army of a player at a land, or
// nil. Merge logic keeps at most one per (land, player) pair.
func (gs *GameState) StationedArmy(landID, playerID string) *ArmyState {
	for _, a := range gs.Armies {
		if a.ControlledBy == playerID && a.IsStationed() && a.LandID() == landID {
			return a
		}
	}
	return nil
}

// ArmiesOf returns every army a player controls.
func (gs *GameState) ArmiesOf(playerID string) []*ArmyState {
	var out []*ArmyState
	for _, a := range gs.Armies {
		if a.ControlledBy == playerID {
			out = append(out, a)
		}
	}
	return out
}

// HeroByName finds a hero on the map by its unique name and the army
// carrying it. Heroes away on quests are not on the map.
func (gs *GameState) HeroByName(name string) (*HeroState, *ArmyState) {
	for _, a := range gs.Armies {
		if i := a.FindHero(name); i >= 0 {
			return &a.Heroes[i], a
		}
	}
	return nil, nil
}

// HeroesOf returns every hero a player fields on the map.
func (gs *GameState) HeroesOf(playerID string) []*HeroState {
	var out []*HeroState
	for _, a := range gs.Armies {
		if a.ControlledBy != playerID {
			continue
		}
		for i := range a.Heroes {
			out = append(out, &a.Heroes[i])
		}
	}
	return out
}

// HasMageOf reports whether a player fields (on map or on quest) a
// mage hero of the given class.
func (gs *GameState) HasMageOf(playerID string, class HeroClass) bool {
	for _, h := range gs.HeroesOf(playerID) {
		if h.Class == class {
			return true
		}
	}
	p := gs.Player(playerID)
	if p == nil {
		return false
	}
	for _, q := range p.Quests {
		if q.Hero.Class == class {
			return true
		}
	}
	return false
}

// AddArmy appends an army to the flat army list.
func (gs *GameState) AddArmy(a *ArmyState) {
	gs.Armies = append(gs.Armies, a)
}

// RemoveArmy drops an army by ID.
func (gs *GameState) RemoveArmy(id string) {
	kept := gs.Armies[:0]
	for _, a := range gs.Armies {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	gs.Armies = kept
}

// PruneEmptyArmies removes destroyed armies (no heroes and no
// regulars) from the list.
func (gs *GameState) PruneEmptyArmies() {
	kept := gs.Armies[:0]
	for _, a := range gs.Armies {
		if !a.IsEmpty() {
			kept = append(kept, a)
		}
	}
	gs.Armies = kept
}

// TransferLand moves ownership of a land to the given player,
// releasing it from any previous owner. An empty playerID unclaims it.
func (gs *GameState) TransferLand(landID, playerID string) {
	for _, p := range gs.Players {
		delete(p.LandsOwned, landID)
	}
	if playerID != "" {
		if p := gs.Player(playerID); p != nil {
			p.LandsOwned[landID] = true
		}
	}
}

// strongholdLands returns the IDs of the player's lands with a
// stronghold or outpost, the anchors of friendly territory.
func (gs *GameState) strongholdLands(playerID string) []string {
	p := gs.Player(playerID)
	if p == nil {
		return nil
	}
	var out []string
	for id := range p.LandsOwned {
		land := gs.Land(id)
		if land == nil {
			continue
		}
		if land.HasBuilding(Stronghold) || land.HasBuilding(Outpost) {
			out = append(out, id)
		}
	}
	return out
}

// IsAlliedWith reports whether two players are in an alliance.
func (gs *GameState) IsAlliedWith(playerID, otherID string) bool {
	p := gs.Player(playerID)
	return p != nil && p.StatusWith(otherID) == StatusAlliance
}

// IsHostileLand reports whether a land is hostile to the player: not
// unclaimed, not their own, and not held by an ally.
func (gs *GameState) IsHostileLand(playerID, landID string) bool {
	owner := gs.OwnerOf(landID)
	if owner == nil || owner.ID == playerID {
		return false
	}
	return !gs.IsAlliedWith(playerID, owner.ID)
}

// IsAlive reports whether a player is still in the game: owning at
// least one land or fielding at least one army.
func (gs *GameState) IsAlive(playerID string) bool {
	p := gs.Player(playerID)
	if p == nil {
		return false
	}
	if len(p.LandsOwned) > 0 {
		return true
	}
	return len(gs.ArmiesOf(playerID)) > 0
}

// nextID mints a fresh entity identifier with the given prefix.
func (gs *GameState) nextID(prefix string) string {
	gs.Sequence++
	return prefix + "-" + itoa(gs.Sequence)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Clone returns a deep copy of the GameState. Mutations to the clone do
// not affect the original; the persistence layer snapshots turns this
// way.
func (gs *GameState) Clone() *GameState {
	c := &GameState{
		Map:       BattleMap{Rows: gs.Map.Rows, Cols: gs.Map.Cols},
		TurnOwner: gs.TurnOwner,
		Turn:      gs.Turn,
		TurnPhase: gs.TurnPhase,
		Sequence:  gs.Sequence,
	}
	if gs.Map.Lands != nil {
		c.Map.Lands = make(map[string]*LandState, len(gs.Map.Lands))
		for id, land := range gs.Map.Lands {
			lc := *land
			lc.Buildings = cloneBuildings(land.Buildings)
			lc.Effects = append([]Effect(nil), land.Effects...)
			c.Map.Lands[id] = &lc
		}
	}
	for _, p := range gs.Players {
		c.Players = append(c.Players, clonePlayer(p))
	}
	for _, a := range gs.Armies {
		c.Armies = append(c.Armies, cloneArmy(a))
	}
	return c
}

func cloneBuildings(bs []Building) []Building {
	if bs == nil {
		return nil
	}
	out := make([]Building, len(bs))
	for i, b := range bs {
		out[i] = b
		out[i].Slots = append([]RecruitSlot(nil), b.Slots...)
	}
	return out
}

func clonePlayer(p *PlayerState) *PlayerState {
	c := *p
	c.Mana = make(map[ManaColor]int, len(p.Mana))
	for k, v := range p.Mana {
		c.Mana[k] = v
	}
	c.LandsOwned = make(map[string]bool, len(p.LandsOwned))
	for k := range p.LandsOwned {
		c.LandsOwned[k] = true
	}
	c.Treasures = append([]Treasure(nil), p.Treasures...)
	c.Diplomacy = make(map[string]DiplomacyStatus, len(p.Diplomacy))
	for k, v := range p.Diplomacy {
		c.Diplomacy[k] = v
	}
	c.Quests = nil
	for _, q := range p.Quests {
		qc := *q
		qc.Hero.Artifacts = append([]ArtifactID(nil), q.Hero.Artifacts...)
		c.Quests = append(c.Quests, &qc)
	}
	return &c
}

func cloneArmy(a *ArmyState) *ArmyState {
	c := *a
	c.Heroes = make([]HeroState, len(a.Heroes))
	for i, h := range a.Heroes {
		c.Heroes[i] = h
		c.Heroes[i].Artifacts = append([]ArtifactID(nil), h.Artifacts...)
	}
	c.Regulars = append([]RegularsState(nil), a.Regulars...)
	c.WarMachines = append([]WarMachineState(nil), a.WarMachines...)
	c.Movement.Path = append([]Position(nil), a.Movement.Path...)
	c.Effects = append([]Effect(nil), a.Effects...)
	return &c
}
