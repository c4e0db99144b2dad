package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/navalcombat/internal/dependencies/clock"
	"github.com/mcoot/navalcombat/internal/events"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/autosave"
	"github.com/mcoot/navalcombat/internal/services/bot"
	"github.com/mcoot/navalcombat/internal/services/rules"
	"github.com/mcoot/navalcombat/internal/storage"
)

// maxCPUShots bounds a single CPU turn; a turn can't be longer than the board
const maxCPUShots = model.GridRows * model.GridCols

// Config controls turn pacing and persistence
type Config struct {
	// CPUShotDelay is waited before every CPU shot
	CPUShotDelay time.Duration
	// AutoSave writes a snapshot after every state-changing action
	AutoSave bool
}

// Controller runs one game session at a time. Every engine call is made
// under its mutex, so it is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	engine *rules.Engine
	gameID model.GameID
	ships  []*model.Ship // player's fleet as laid out during setup

	strategy  bot.Strategy
	store     storage.SnapshotStore
	saver     *autosave.Writer
	publisher events.Publisher
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger
}

// NewController creates a Controller with a fresh game in setup
func NewController(
	engine *rules.Engine,
	strategy bot.Strategy,
	store storage.SnapshotStore,
	publisher events.Publisher,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		engine:    engine,
		strategy:  strategy,
		store:     store,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "game")),
	}
	c.saver = autosave.New(store, logger, autosave.WithResultFunc(c.onSaveResult))
	c.resetLocked(model.DefaultNickname)
	return c
}

// Close waits for pending saves and stops the background writer
func (c *Controller) Close() {
	c.saver.Close()
}

// Session lifecycle

// NewGame discards the current session and starts a new one in setup
func (c *Controller) NewGame(ctx context.Context, nickname string) *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked(nickname)
	c.publishLocked(model.EventGameReset, nil)
	c.logger.Info("new game",
		slog.String("game_id", string(c.gameID)),
		slog.String("nickname", c.engine.Session().Nickname),
	)
	return c.stateLocked()
}

func (c *Controller) resetLocked(nickname string) {
	c.engine.Reset()
	c.engine.SetNickname(nickname)
	c.gameID = model.GameID(uuid.NewString())

	c.ships = make([]*model.Ship, len(model.FleetComposition))
	for i, fp := range model.FleetComposition {
		c.ships[i] = model.NewShip(fp)
	}
	c.syncFleetLocked()
}

// Start lays out the CPU fleet and hands the first turn to the player.
// A CPU ship that couldn't be placed is reported, but the game still starts.
func (c *Controller) Start(ctx context.Context) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.engine.Start()
	if err != nil && !errors.Is(err, model.ErrPlacementExhausted) {
		return nil, err
	}

	c.publishLocked(model.EventGameStarted, model.GameStartedPayload{
		Nickname:  c.engine.Session().Nickname,
		FirstTurn: c.engine.CurrentTurn(),
	})
	c.checkpointLocked()
	return c.stateLocked(), err
}

// State returns a view of the current session
func (c *Controller) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// GameID returns the id of the current session
func (c *Controller) GameID() model.GameID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// Setup

// PlaceShip moves the ship at index to (col, row). With snap set, a blocked
// position is replaced by the nearest free one.
func (c *Controller) PlaceShip(ctx context.Context, index int, col, row int, vertical, snap bool) (*model.Ship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ship, err := c.setupShipLocked(index)
	if err != nil {
		return nil, err
	}

	c.liftLocked(ship)
	width, height := model.Footprint{Length: ship.Length}.Dimensions(vertical)
	anchor, ok := c.findAnchorLocked(col, row, width, height, snap)
	if !ok {
		c.dropLocked(ship)
		return nil, fmt.Errorf("%w: %s at (%d,%d)", model.ErrInvalidPlacement, ship.Name, col, row)
	}

	ship.SetPosition(anchor, vertical)
	c.dropLocked(ship)
	c.syncFleetLocked()
	return ship.Clone(), nil
}

// RotateShip flips a ship's orientation, moving it to the nearest anchor
// where the rotated ship fits
func (c *Controller) RotateShip(ctx context.Context, index int) (*model.Ship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ship, err := c.setupShipLocked(index)
	if err != nil {
		return nil, err
	}

	vertical := !ship.Vertical
	if !ship.IsPlaced() {
		ship.Vertical = vertical
		return ship.Clone(), nil
	}

	c.liftLocked(ship)
	width, height := model.Footprint{Length: ship.Length}.Dimensions(vertical)
	anchor, ok := c.engine.FindNearestValidPosition(ship.Anchor.Col, ship.Anchor.Row, width, height)
	if !ok {
		c.dropLocked(ship)
		return nil, fmt.Errorf("%w: no room to rotate %s", model.ErrInvalidPlacement, ship.Name)
	}

	ship.SetPosition(anchor, vertical)
	c.dropLocked(ship)
	c.syncFleetLocked()
	return ship.Clone(), nil
}

// RemoveShip takes a ship off the board
func (c *Controller) RemoveShip(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ship, err := c.setupShipLocked(index)
	if err != nil {
		return err
	}
	c.liftLocked(ship)
	ship.ClearPosition()
	c.syncFleetLocked()
	return nil
}

// AutoPlace lays out the whole player fleet at random
func (c *Controller) AutoPlace(ctx context.Context) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.Phase() != model.PhaseSetup {
		return nil, model.ErrGameAlreadyStarted
	}

	err := c.engine.AutoPlacePlayerFleet()
	c.ships = c.engine.Fleet(model.SidePlayer)
	if err != nil {
		c.logger.Error("auto placement incomplete", slog.String("error", err.Error()))
		return c.stateLocked(), err
	}
	return c.stateLocked(), nil
}

func (c *Controller) setupShipLocked(index int) (*model.Ship, error) {
	if c.engine.Phase() != model.PhaseSetup {
		return nil, model.ErrGameAlreadyStarted
	}
	if index < 0 || index >= len(c.ships) {
		return nil, fmt.Errorf("%w: index %d", model.ErrShipNotFound, index)
	}
	return c.ships[index], nil
}

func (c *Controller) findAnchorLocked(col, row, width, height int, snap bool) (model.Coord, bool) {
	if snap {
		return c.engine.FindNearestValidPosition(col, row, width, height)
	}
	if !c.engine.CanPlaceShip(model.SidePlayer, col, row, width, height) {
		return model.Coord{}, false
	}
	return model.Coord{Col: col, Row: row}, true
}

// liftLocked clears a placed ship's cells from the player board
func (c *Controller) liftLocked(ship *model.Ship) {
	if !ship.IsPlaced() {
		return
	}
	width, height := ship.DimensionsInCells()
	c.engine.RemoveShip(ship.Anchor.Col, ship.Anchor.Row, width, height)
}

// dropLocked marks a placed ship's cells on the player board
func (c *Controller) dropLocked(ship *model.Ship) {
	if !ship.IsPlaced() {
		return
	}
	width, height := ship.DimensionsInCells()
	c.engine.PlaceShip(model.SidePlayer, ship.Anchor.Col, ship.Anchor.Row, width, height)
}

func (c *Controller) syncFleetLocked() {
	views := make([]model.ShipView, len(c.ships))
	for i, ship := range c.ships {
		views[i] = ship
	}
	c.engine.SetPlayerFleet(views)
}

// Shots

// Fire resolves the player's shot and, if the turn passed to the CPU, plays
// out the CPU's turn before returning
func (c *Controller) Fire(ctx context.Context, col, row int) (*FireResult, error) {
	result, err := c.PlayerFire(ctx, col, row)
	if err != nil {
		return nil, err
	}
	if result.Turn != model.SideCPU || result.Phase != model.PhaseInProgress {
		return result, nil
	}

	cpuShots, err := c.CPUTurn(ctx)
	result.CPUShots = cpuShots

	state := c.State()
	result.Turn = state.Turn
	result.Phase = state.Phase
	result.Winner = state.Winner
	return result, err
}

// PlayerFire resolves one player shot without running the CPU's reply
func (c *Controller) PlayerFire(ctx context.Context, col, row int) (*FireResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.engine.Phase() {
	case model.PhaseSetup:
		return nil, model.ErrGameNotStarted
	case model.PhaseEnded:
		return nil, model.ErrGameOver
	}
	if c.engine.CurrentTurn() != model.SidePlayer {
		return nil, model.ErrNotPlayerTurn
	}
	target := model.Coord{Col: col, Row: row}
	if !target.InBounds() {
		return nil, fmt.Errorf("%w: (%d,%d)", model.ErrInvalidCoordinate, col, row)
	}

	shot := c.fireLocked(model.SidePlayer, target)
	if shot.Outcome.ChangedState() {
		c.engine.MarkFirstPlayerMove()
	}
	return c.resultLocked(shot), nil
}

// CPUTurn fires CPU shots until the CPU misses or wins, waiting CPUShotDelay
// before each one. The lock is released while waiting so the state stays
// readable between shots.
func (c *Controller) CPUTurn(ctx context.Context) ([]model.Shot, error) {
	var shots []model.Shot
	for range maxCPUShots {
		if err := c.clock.Sleep(ctx, c.cfg.CPUShotDelay); err != nil {
			return shots, err
		}

		shot, err := c.CPUStep(ctx)
		if err != nil {
			return shots, err
		}
		shots = append(shots, shot)

		if !shot.Outcome.KeepsTurn() && shot.Outcome != model.OutcomeAlreadyShot {
			return shots, nil
		}
	}
	return shots, nil
}

// CPUStep fires a single CPU shot
func (c *Controller) CPUStep(ctx context.Context) (model.Shot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.engine.Phase() {
	case model.PhaseSetup:
		return model.Shot{}, model.ErrGameNotStarted
	case model.PhaseEnded:
		return model.Shot{}, model.ErrGameOver
	}
	if c.engine.CurrentTurn() != model.SideCPU {
		return model.Shot{}, model.ErrNotCPUTurn
	}

	if !c.engine.RemainingTargets(model.SideCPU) {
		c.passTurnLocked(model.SidePlayer)
		return model.Shot{}, model.ErrNoTargetsRemaining
	}

	shots := c.engine.ShotGrid(model.SidePlayer)
	target, ok := c.strategy.ChooseTarget(&shots)
	if !ok {
		c.passTurnLocked(model.SidePlayer)
		return model.Shot{}, model.ErrNoTargetsRemaining
	}

	shot := c.fireLocked(model.SideCPU, target)
	if shot.Outcome == model.OutcomeAlreadyShot {
		c.logger.Warn("cpu chose a cell already shot",
			slog.Int("col", target.Col),
			slog.Int("row", target.Row),
		)
	}
	return shot, nil
}

// fireLocked resolves a shot and applies the turn policy to its outcome
func (c *Controller) fireLocked(shooter model.Side, target model.Coord) model.Shot {
	outcome := c.engine.Fire(target.Col, target.Row, shooter)
	shot := model.Shot{Shooter: shooter, Target: target, Outcome: outcome}

	if outcome.ChangedState() {
		c.publishLocked(model.EventShotFired, model.ShotFiredPayload{Shot: shot})
	}

	switch {
	case outcome == model.OutcomeMiss:
		c.passTurnLocked(shooter.Opponent())
		c.checkpointLocked()
	case outcome.KeepsTurn():
		c.checkpointLocked()
	case outcome.IsWin():
		winner := c.engine.Session().Winner
		c.publishLocked(model.EventGameEnded, model.GameEndedPayload{Winner: winner})
		c.logger.Info("game over",
			slog.String("game_id", string(c.gameID)),
			slog.String("winner", string(winner)),
		)
		c.checkpointLocked()
	case outcome == model.OutcomeError:
		c.logger.Error("engine rejected shot",
			slog.String("shooter", shooter.String()),
			slog.Int("col", target.Col),
			slog.Int("row", target.Row),
		)
	}
	return shot
}

func (c *Controller) passTurnLocked(side model.Side) {
	c.engine.SetCurrentTurn(side)
	c.publishLocked(model.EventTurnChanged, model.TurnChangedPayload{Turn: side})
}

func (c *Controller) resultLocked(shot model.Shot) *FireResult {
	session := c.engine.Session()
	return &FireResult{
		Shot:   shot,
		Turn:   session.CurrentTurn,
		Phase:  session.Phase(),
		Winner: session.Winner,
	}
}

// Persistence

// Save writes the current session and waits for the write to finish
func (c *Controller) Save(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	snap := c.engine.Snapshot(c.clock.Now())
	c.mu.Unlock()

	if err := c.saver.SaveNow(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Load replaces the current session with the saved game. If the save was
// taken during the CPU's turn, the caller resumes it with CPUTurn.
func (c *Controller) Load(ctx context.Context) (*State, error) {
	c.flush(ctx)

	snap, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoSavedGame) {
			c.publish(model.EventSaveFailed, model.SaveFailedPayload{Error: err.Error()})
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.engine.Restore(snap); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrLoadFailed, err)
	}
	c.gameID = model.GameID(uuid.NewString())
	c.ships = c.engine.Fleet(model.SidePlayer)

	c.publishLocked(model.EventGameLoaded, model.GameSavedPayload{SavedAt: snap.SavedAt})
	c.logger.Info("game loaded",
		slog.String("game_id", string(c.gameID)),
		slog.String("phase", string(c.engine.Phase())),
	)
	return c.stateLocked(), nil
}

// HasSavedGame reports whether a save exists
func (c *Controller) HasSavedGame(ctx context.Context) bool {
	c.flush(ctx)
	return c.store.HasSavedGame(ctx)
}

// SavedGame returns the saved snapshot without loading it
func (c *Controller) SavedGame(ctx context.Context) (*model.Snapshot, error) {
	c.flush(ctx)
	return c.store.Load(ctx)
}

// DeleteSave removes the saved game
func (c *Controller) DeleteSave(ctx context.Context) error {
	c.flush(ctx)
	return c.store.Delete(ctx)
}

// flush waits for queued autosaves. A failed autosave has already been
// reported, so only the wait matters here.
func (c *Controller) flush(ctx context.Context) {
	_ = c.saver.Flush(ctx)
}

// checkpointLocked queues an autosave of the current session
func (c *Controller) checkpointLocked() {
	if !c.cfg.AutoSave {
		return
	}
	if err := c.saver.Submit(c.engine.Snapshot(c.clock.Now())); err != nil {
		c.logger.Warn("autosave skipped", slog.String("error", err.Error()))
	}
}

// onSaveResult runs on the autosave goroutine. It must not wait on the saver.
func (c *Controller) onSaveResult(snap *model.Snapshot, err error) {
	if err != nil {
		c.publish(model.EventSaveFailed, model.SaveFailedPayload{Error: err.Error()})
		return
	}
	c.publish(model.EventGameSaved, model.GameSavedPayload{SavedAt: snap.SavedAt})
}

// Events

func (c *Controller) publish(eventType model.EventType, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishLocked(eventType, payload)
}

func (c *Controller) publishLocked(eventType model.EventType, payload any) {
	c.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		GameID:    c.gameID,
		Payload:   payload,
	})
}
