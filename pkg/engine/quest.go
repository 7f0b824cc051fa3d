package engine

// QuestID identifies a quest from the catalog.
type QuestID string

const (
	QuestRatCellars     QuestID = "rat-cellars"
	QuestMissingCaravan QuestID = "missing-caravan"
	QuestPaleKnightTomb QuestID = "pale-knight-tomb"
	QuestMistmarshSiren QuestID = "mistmarsh-siren"
	QuestCinderPassWyrm QuestID = "cinder-pass-wyrm"
	QuestThousandEyes   QuestID = "thousand-eyes-vault"
	QuestSunderedThrone QuestID = "sundered-throne"
	QuestMaelstromHeart QuestID = "maelstrom-heart"
)

// QuestDef is the static rules data for one quest. Level grades the
// danger (1 to 4); Length is how many turns the hero is away.
type QuestDef struct {
	ID          QuestID
	Name        string
	Level       int
	Length      int
	Description string
}

var questCatalog = []QuestDef{
	{QuestRatCellars, "Rat Cellars of Gavenmoor", 1, 2, "Clear the vermin nests beneath the old granaries."},
	{QuestMissingCaravan, "The Missing Caravan", 1, 2, "Track a merchant caravan lost on the border roads."},
	{QuestPaleKnightTomb, "Tomb of the Pale Knight", 2, 3, "Break the seals of a barrow that should have stayed shut."},
	{QuestMistmarshSiren, "Siren of the Mistmarsh", 2, 3, "Silence the voice that lures travellers into the fens."},
	{QuestCinderPassWyrm, "The Wyrm of Cinder Pass", 3, 4, "Face the wyrm that closed the mountain road."},
	{QuestThousandEyes, "Vault of a Thousand Eyes", 3, 4, "Plunder a vault watched by things that never sleep."},
	{QuestSunderedThrone, "The Sundered Throne", 4, 5, "Reach the throne room of a kingdom that fell in one night."},
	{QuestMaelstromHeart, "Heart of the Maelstrom", 4, 5, "Sail into the storm that has no far side."},
}

// QuestDefOf returns a quest's rules data, panicking on a catalog
// inconsistency.
func QuestDefOf(id QuestID) QuestDef {
	for _, d := range questCatalog {
		if d.ID == id {
			return d
		}
	}
	panic("engine: unknown quest " + string(id))
}

// QuestsOfLevel returns the catalog quests of one danger level.
func QuestsOfLevel(level int) []QuestDef {
	var out []QuestDef
	for _, d := range questCatalog {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

// HeroQuest is one in-flight quest. The hero is off the map for its
// duration and returns to Land when it resolves.
type HeroQuest struct {
	Quest       QuestID   `json:"quest"`
	Hero        HeroState `json:"hero"`
	Land        string    `json:"land"`
	RemainTurns int       `json:"remain_turns"`
}

// questLevelFloor is the hero level bracket a quest level targets.
func questLevelFloor(questLevel int) int {
	return (questLevel - 1) * 5
}

// mercyMinHeroLevel is the minimum hero level the Mercy of Orrivane
// will spare.
const mercyMinHeroLevel = 10

// StartQuest sends a hero from one of the player's stationed armies on
// a quest. The hero leaves the map and its origin land is recorded as
// the return point.
func StartQuest(gs *GameState, playerID, heroName string, questID QuestID) error {
	def := QuestDefOf(questID)
	player := gs.Player(playerID)
	if player == nil {
		return rejected("unknown player %s", playerID)
	}

	for _, a := range gs.ArmiesOf(playerID) {
		if !a.IsStationed() {
			continue
		}
		i := a.FindHero(heroName)
		if i < 0 {
			continue
		}
		hero := a.Heroes[i]
		a.Heroes = append(a.Heroes[:i], a.Heroes[i+1:]...)
		player.Quests = append(player.Quests, &HeroQuest{
			Quest:       questID,
			Hero:        hero,
			Land:        a.LandID(),
			RemainTurns: def.Length,
		})
		gs.PruneEmptyArmies()
		return nil
	}
	return rejected("no stationed hero named %s", heroName)
}

// AdvanceQuests ages the player's quests by one turn and resolves any
// that complete. A quest completes the turn its counter reaches zero
// and is removed the same phase. At most one Mercy of Orrivane charge
// is consumed per resolution batch.
func AdvanceQuests(gs *GameState, playerID string, rng Rand) []EmpireEvent {
	player := gs.Player(playerID)
	if player == nil {
		return nil
	}

	var events []EmpireEvent
	mercySpent := false
	remaining := player.Quests[:0]
	for _, q := range player.Quests {
		q.RemainTurns--
		if q.RemainTurns > 0 {
			remaining = append(remaining, q)
			continue
		}
		events = append(events, resolveQuest(gs, player, q, &mercySpent, rng))
	}
	player.Quests = remaining
	return events
}

func resolveQuest(gs *GameState, player *PlayerState, q *HeroQuest, mercySpent *bool, rng Rand) EmpireEvent {
	def := QuestDefOf(q.Quest)
	hero := q.Hero
	chance := 0.8 + (float64(hero.Level-1)-float64(questLevelFloor(def.Level)))*0.05
	if rng.Float64() <= chance {
		ev := questReturnEvent(rng, hero.Name, def.Name)
		if player.OwnsLand(q.Land) {
			ev = grantReward(gs, player, &hero, def, rng)
		}
		returnHero(gs, player.ID, q.Land, hero)
		return ev
	}

	// The hero and its artifacts are lost unless the Mercy of Orrivane
	// intervenes. Heroes below its threshold are beneath its notice.
	if !*mercySpent && hero.Level >= mercyMinHeroLevel && spendMercy(player) {
		*mercySpent = true
		returnHero(gs, player.ID, q.Land, hero)
		return questMercyEvent(rng, hero.Name, def.Name)
	}
	return questDeathEvent(rng, hero.Name, def.Name)
}

// spendMercy burns one Mercy of Orrivane charge, removing a drained
// copy on the spot.
func spendMercy(player *PlayerState) bool {
	i := player.FindItem(MercyOfOrrivane)
	if i < 0 {
		return false
	}
	player.Treasures[i].Charges--
	if player.Treasures[i].Charges <= 0 {
		player.removeTreasureAt(i)
	}
	return true
}

// rewardBand gives the probability of each reward tier for one quest
// level. The residual probability past Empty+Artifact+Item is a relic.
type rewardBand struct {
	Empty    float64
	Artifact float64
	Item     float64
}

var rewardBands = map[int]rewardBand{
	1: {Empty: 0.50, Artifact: 0.35, Item: 0.15},
	2: {Empty: 0.30, Artifact: 0.40, Item: 0.25},
	3: {Empty: 0.15, Artifact: 0.35, Item: 0.30},
	4: {Empty: 0.05, Artifact: 0.25, Item: 0.30},
}

// grantReward rolls the reward tier for a surviving hero whose origin
// land the player still holds. Any non-empty reward also jumps the
// hero to the quest's target level bracket.
func grantReward(gs *GameState, player *PlayerState, hero *HeroState, def QuestDef, rng Rand) EmpireEvent {
	band := rewardBands[def.Level]
	roll := rng.Float64()
	switch {
	case roll < band.Empty:
		return questReturnEvent(rng, hero.Name, def.Name)
	case roll < band.Empty+band.Artifact:
		art := RandomElement(rng, artifactCatalog)
		hero.Artifacts = append(hero.Artifacts, art.ID)
		hero.LevelUpTo(questLevelFloor(def.Level))
		return questArtifactEvent(rng, hero.Name, def.Name, art.Name)
	case roll < band.Empty+band.Artifact+band.Item:
		return grantItem(player, hero, def, rng)
	default:
		relics := availableRelics(gs, player)
		if len(relics) == 0 {
			// Every compatible relic is already claimed somewhere.
			return grantItem(player, hero, def, rng)
		}
		relic := RandomElement(rng, relics)
		player.Treasures = append(player.Treasures, NewRelicTreasure(relic))
		hero.LevelUpTo(questLevelFloor(def.Level))
		return questRelicEvent(rng, hero.Name, def.Name, RelicDefOf(relic).Name)
	}
}

func grantItem(player *PlayerState, hero *HeroState, def QuestDef, rng Rand) EmpireEvent {
	item := RandomElement(rng, itemCatalog)
	player.Treasures = append(player.Treasures, NewItemTreasure(item.ID))
	hero.LevelUpTo(questLevelFloor(def.Level))
	return questItemEvent(rng, hero.Name, def.Name, item.Name)
}

// returnHero merges a hero back into the stationed army at its return
// land, creating one if none exists.
func returnHero(gs *GameState, playerID, landID string, hero HeroState) {
	army := gs.StationedArmy(landID, playerID)
	if army == nil {
		pos, ok := ParseLandID(landID)
		if !ok {
			panic("engine: corrupt quest land id " + landID)
		}
		army = NewArmy(gs, playerID, pos)
		gs.AddArmy(army)
	}
	army.Heroes = append(army.Heroes, hero)
}
