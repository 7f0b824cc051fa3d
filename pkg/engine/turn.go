package engine

import (
	"fmt"
	"sort"
	"time"
)

// Callbacks is the notification surface the turn machine drives. Nil
// members are skipped. Within one transition the order is fixed:
// phase-change, then progress-message, then (after the scheduler delay)
// the next phase-change, then hide-progress and the computer-turn
// callback.
type Callbacks struct {
	OnTurnPhaseChange   func(gs *GameState, phase TurnPhase)
	OnEmpireEventResult func(events []EmpireEvent)
	OnStartProgress     func(message string)
	OnHideProgress      func()
	OnGameOver          func(message string)
	OnComputerMainTurn  func(gs *GameState)
}

// DefaultPhaseDelay paces automatic phase advancement so the UI can
// show progress between transitions.
const DefaultPhaseDelay = 700 * time.Millisecond

// homelandGarrison is the regulars count of a starting army.
const homelandGarrison = 10

// TurnManager drives the START, MAIN, END phase machine over a single
// canonical GameState. It is single-threaded by design: all mutation
// happens inside phase handlers and scheduled continuations.
type TurnManager struct {
	state *GameState
	rng   Rand
	sched Scheduler
	cb    Callbacks
	over  bool

	// PhaseDelay is the pause before START and computer MAIN phases
	// hand over to the next phase.
	PhaseDelay time.Duration
}

// NewTurnManager wires a turn machine over the state. The scheduler
// decides whether delays are real or virtual.
func NewTurnManager(gs *GameState, rng Rand, sched Scheduler, cb Callbacks) *TurnManager {
	return &TurnManager{
		state:      gs,
		rng:        rng,
		sched:      sched,
		cb:         cb,
		PhaseDelay: DefaultPhaseDelay,
	}
}

// State returns the canonical game state the manager mutates.
func (tm *TurnManager) State() *GameState { return tm.state }

// IsOver reports whether the game has ended.
func (tm *TurnManager) IsOver() bool { return tm.over }

// Start kicks off the first START phase of the game.
func (tm *TurnManager) Start() {
	tm.enterStart()
}

// Teardown ends the game and cancels every pending continuation so no
// stale mutation fires afterwards.
func (tm *TurnManager) Teardown() {
	tm.over = true
	tm.sched.Stop()
}

// CanEndTurn reports whether the end-turn command is currently legal:
// MAIN phase, human turn owner, game still running.
func (tm *TurnManager) CanEndTurn() bool {
	if tm.over || tm.state.TurnPhase != PhaseMain {
		return false
	}
	p := tm.state.CurrentPlayer()
	return p != nil && p.Type == HumanPlayer
}

// EndCurrentTurn moves a human turn owner from MAIN into END.
func (tm *TurnManager) EndCurrentTurn() error {
	if !tm.CanEndTurn() {
		return rejected("turn cannot be ended in %s phase", tm.state.TurnPhase)
	}
	tm.enterEnd()
	return nil
}

func (tm *TurnManager) notifyPhase() {
	if tm.cb.OnTurnPhaseChange != nil {
		tm.cb.OnTurnPhaseChange(tm.state, tm.state.TurnPhase)
	}
}

// enterStart runs the START-phase bookkeeping for the turn owner and
// schedules the hand-over to MAIN (or straight to END on turn 1, which
// has no command phase).
func (tm *TurnManager) enterStart() {
	gs := tm.state
	gs.TurnPhase = PhaseStart
	tm.notifyPhase()

	player := gs.CurrentPlayer()
	if player == nil {
		return
	}
	if gs.Turn == 1 {
		tm.placeHomeland(player)
	}

	TickEffects(gs, player.ID)
	CalculateMana(gs, player.ID)
	ApplyIncome(gs, player.ID)
	events := AdvanceQuests(gs, player.ID, tm.rng)
	events = append(events, AdvanceRecruitment(gs, player.ID, tm.rng)...)
	if len(events) > 0 && tm.cb.OnEmpireEventResult != nil {
		tm.cb.OnEmpireEventResult(events)
	}

	if tm.cb.OnStartProgress != nil {
		tm.cb.OnStartProgress(fmt.Sprintf("The empire of %s gathers its strength...", player.Profile.Name))
	}
	firstTurn := gs.Turn == 1
	tm.sched.Schedule(tm.PhaseDelay, func() {
		if tm.over {
			return
		}
		if firstTurn {
			tm.enterEnd()
		} else {
			tm.enterMain()
		}
		if tm.cb.OnHideProgress != nil {
			tm.cb.OnHideProgress()
		}
	})
}

// enterMain opens the command phase. Human owners act until they end
// the turn; computer owners get their callback and auto-advance after
// the delay.
func (tm *TurnManager) enterMain() {
	gs := tm.state
	gs.TurnPhase = PhaseMain
	tm.notifyPhase()

	player := gs.CurrentPlayer()
	if player == nil || player.Type != ComputerPlayer {
		return
	}
	if tm.cb.OnComputerMainTurn != nil {
		tm.cb.OnComputerMainTurn(gs)
	}
	tm.sched.Schedule(tm.PhaseDelay, func() {
		if !tm.over {
			tm.enterEnd()
		}
	})
}

// enterEnd resolves movements, merges, ownership transfer and attrition,
// then rotates the turn owner into the next START.
func (tm *TurnManager) enterEnd() {
	gs := tm.state
	gs.TurnPhase = PhaseEnd
	tm.notifyPhase()

	PerformMovements(gs)
	CalculateAttritionPenalty(gs, tm.rng)

	if tm.checkGameOver() {
		return
	}
	tm.rotateTurnOwner()
	tm.enterStart()
}

// checkGameOver ends the game when either side of the board is wiped
// out. Turn 1 is exempt so setup can finish.
func (tm *TurnManager) checkGameOver() bool {
	gs := tm.state
	if gs.Turn <= 1 {
		return false
	}
	humans, computers := 0, 0
	for _, p := range gs.Players {
		if !gs.IsAlive(p.ID) {
			continue
		}
		if p.Type == HumanPlayer {
			humans++
		} else {
			computers++
		}
	}
	var message string
	switch {
	case humans == 0:
		message = "Defeat. The last human empire has fallen."
	case computers == 0:
		message = "Victory! Every rival empire has fallen."
	default:
		return false
	}
	tm.over = true
	tm.sched.Stop()
	if tm.cb.OnGameOver != nil {
		tm.cb.OnGameOver(message)
	}
	return true
}

// rotateTurnOwner hands the turn to the next living player, bumping the
// turn counter when the order wraps. On turn 1 dead seats are not
// skipped since homelands are still being placed.
func (tm *TurnManager) rotateTurnOwner() {
	gs := tm.state
	n := len(gs.Players)
	if n == 0 {
		return
	}
	current := 0
	for i, p := range gs.Players {
		if p.ID == gs.TurnOwner {
			current = i
			break
		}
	}
	for step := 1; step <= n; step++ {
		i := (current + step) % n
		if i == 0 {
			gs.Turn++
		}
		p := gs.Players[i]
		if gs.Turn > 1 && !gs.IsAlive(p.ID) {
			continue
		}
		gs.TurnOwner = p.ID
		return
	}
}

// placeHomeland claims a starting land for the player, founds its
// stronghold and fields the starting army with the empire's champion.
func (tm *TurnManager) placeHomeland(player *PlayerState) {
	if len(player.LandsOwned) > 0 {
		return
	}
	gs := tm.state
	var candidates []string
	for id, land := range gs.Map.Lands {
		if IsSpecialLand(land.Kind) || len(land.Buildings) > 0 || gs.OwnerOf(id) != nil {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return
	}
	// Map iteration order is unstable; sort so a seeded source always
	// picks the same homeland.
	sort.Strings(candidates)

	id := RandomElement(tm.rng, candidates)
	land := gs.Land(id)
	land.Buildings = append(land.Buildings, Building{Kind: Stronghold})
	player.LandsOwned[id] = true

	army := NewArmy(gs, player.ID, land.Position)
	army.Heroes = append(army.Heroes, NewHero(gs, player.Profile.Class, tm.rng))
	army.AddRegulars(NewRegulars(startingUnitFor(player.Profile.Alignment), homelandGarrison))
	gs.AddArmy(army)
}
