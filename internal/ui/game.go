package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
	"github.com/hailam/rankwar/internal/storage"
)

// UI Constants
const (
	ScreenWidth  = 960
	ScreenHeight = 640 // Match board height to eliminate unused space
	BoardSize    = 640
	SquareSize   = BoardSize / board.Size
	PanelWidth   = ScreenWidth - BoardSize
)

// UIScale is the global HiDPI scale factor for all UI drawing.
// Set by Game.Layout() and used by widgets and modals.
var UIScale float64 = 1.0

func scaleF(v int) float32 { return float32(float64(v) * UIScale) }

func scaleD(v int) float64 { return float64(v) * UIScale }

func scaleI(v int) int { return int(float64(v) * UIScale) }

// modeKeys maps keyboard shortcuts to action modes.
var modeKeys = map[ebiten.Key]engine.Mode{
	ebiten.KeyM: engine.ModeMove,
	ebiten.KeyP: engine.ModePromote,
	ebiten.KeyA: engine.ModeAttack,
	ebiten.KeyD: engine.ModeDemote,
}

// Game implements ebiten.Game on top of the rules engine.
type Game struct {
	engine *engine.Engine
	log    *zap.SugaredLogger

	// Storage
	storage *storage.Storage
	prefs   *storage.UserPreferences
	stats   *storage.GameStats

	// Components
	renderer *Renderer
	input    *InputHandler
	panel    *Panel
	feedback *FeedbackManager
	glass    *GlassEffect

	// Modals
	settingsModal *SettingsModal
	welcomeScreen *WelcomeScreen

	// HiDPI scaling
	scale float64
}

// NewGame creates the desktop game around eng. store may be nil, in which
// case preferences and statistics live only for the session.
func NewGame(eng *engine.Engine, store *storage.Storage, log *zap.SugaredLogger) *Game {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Game{
		engine:   eng,
		log:      log,
		storage:  store,
		renderer: NewRenderer(BoardSize, SquareSize),
		input:    NewInputHandler(),
		scale:    1.0,
	}

	g.loadPreferences()

	g.feedback = NewFeedbackManager(g.prefs.SoundEnabled)
	g.panel = NewPanel(g)
	g.glass = NewGlassEffect()
	g.settingsModal = NewSettingsModal()
	g.welcomeScreen = NewWelcomeScreen()

	eng.Subscribe(g.onEvent)

	g.checkFirstLaunch()
	return g
}

// loadPreferences loads user preferences and statistics from storage.
func (g *Game) loadPreferences() {
	g.prefs = storage.DefaultPreferences()
	g.stats = storage.NewGameStats()
	if g.storage == nil {
		return
	}

	prefs, err := g.storage.LoadPreferences()
	if err != nil {
		g.log.Warnw("failed to load preferences", "error", err)
	} else {
		g.prefs = prefs
	}

	stats, err := g.storage.LoadStats()
	if err != nil {
		g.log.Warnw("failed to load stats", "error", err)
	} else {
		g.stats = stats
	}
}

// savePreferences saves current preferences to storage.
func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		g.log.Warnw("failed to save preferences", "error", err)
	}
}

// checkFirstLaunch shows the welcome screen on first launch.
func (g *Game) checkFirstLaunch() {
	if g.storage == nil {
		return
	}

	isFirst, err := g.storage.IsFirstLaunch()
	if err != nil {
		g.log.Warnw("failed to check first launch", "error", err)
		return
	}
	if !isFirst {
		return
	}

	g.welcomeScreen.Show(func(red, blue string) {
		g.prefs.RedName = red
		g.prefs.BlueName = blue
		if err := g.storage.MarkFirstLaunchComplete(); err != nil {
			g.log.Warnw("failed to mark first launch complete", "error", err)
		}
		g.savePreferences()
	})
}

// onEvent turns engine transitions into feedback and persists finished games.
func (g *Game) onEvent(ev engine.Event) {
	var sel *board.Cell
	if c, ok := g.engine.Selected(); ok {
		sel = &c
	}
	g.feedback.OnEvent(ev, g.prefs, sel)
	if ev.Kind == engine.EventGameOver {
		g.recordMatch(ev)
	}
}

func (g *Game) recordMatch(ev engine.Event) {
	if g.storage == nil {
		g.stats.Apply(storage.MatchRecord{Winner: ev.Winner, Turns: ev.Turn, Duration: ev.Duration})
		return
	}
	if _, err := g.storage.RecordResult(ev.GameID, ev.Winner, ev.Turn, ev.Duration); err != nil {
		g.log.Warnw("failed to record match", "error", err)
		return
	}
	if stats, err := g.storage.LoadStats(); err == nil {
		g.stats = stats
	}
}

// Update handles game logic updates.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()
	g.glass.Update()

	// Modals block other input
	if g.welcomeScreen.IsVisible() {
		g.welcomeScreen.Update(g.input)
		g.updateCursor()
		return nil
	}
	if g.settingsModal.IsVisible() {
		g.settingsModal.Update(g.input)
		g.updateCursor()
		return nil
	}

	g.handleKeys()

	if g.panel.HandleInput(g.input) {
		g.updateCursor()
		return nil
	}

	g.handleBoardInput()
	g.updateCursor()
	return nil
}

// handleKeys processes keyboard shortcuts.
func (g *Game) handleKeys() {
	for key, mode := range modeKeys {
		if IsKeyJustPressed(key) {
			g.SelectMode(mode)
		}
	}
	if IsKeyJustPressed(ebiten.KeySpace) || IsKeyJustPressed(ebiten.KeyEnter) {
		g.EndTurnAction()
	}
	if IsKeyJustPressed(ebiten.KeyEscape) {
		if c, ok := g.engine.Selected(); ok {
			// Clicking the selected cell deselects it.
			_ = g.engine.OnCellClicked(c.X, c.Y)
		}
	}
}

// updateCursor sets the cursor shape based on what's being hovered.
func (g *Game) updateCursor() {
	var anyHovered bool
	switch {
	case g.welcomeScreen.IsVisible():
		anyHovered = g.welcomeScreen.AnyButtonHovered()
	case g.settingsModal.IsVisible():
		anyHovered = g.settingsModal.AnyButtonHovered()
	default:
		anyHovered = g.panel.AnyButtonHovered() || g.hoveringTarget()
	}

	if anyHovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

func (g *Game) hoveringTarget() bool {
	mx, my := g.input.MousePosition()
	c, ok := g.renderer.ScreenToCell(mx, my)
	return ok && g.engine.TurnState().IsTarget(c.X, c.Y)
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.SetScale(g.scale)
	snap := g.engine.Snapshot()

	screen.Fill(g.renderer.Theme().Background)

	g.renderer.DrawBoard(screen)
	targets := snap.Turn.LegalTargets
	if !g.prefs.ShowTargets {
		targets = nil
	}
	g.renderer.DrawHighlights(screen, snap.Turn.Selected, targets, snap.Turn.Mode)
	g.renderer.DrawPieces(screen, &snap.Board, g.feedback.Animations())

	g.feedback.Draw(screen, g.renderer)
	g.panel.Draw(screen, &snap)

	g.settingsModal.Draw(screen, g.glass)
	g.welcomeScreen.Draw(screen, g.glass)
}

// Layout returns the game's screen dimensions.
// Width is dynamic based on panel collapsed state.
// Uses device scale factor for crisp rendering on HiDPI displays.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scale = ebiten.Monitor().DeviceScaleFactor()
	if g.scale < 1.0 {
		g.scale = 1.0
	}
	UIScale = g.scale

	if g.panel != nil && g.panel.Collapsed() {
		return scaleI(BoardSize + CollapsedWidth), scaleI(ScreenHeight)
	}
	return scaleI(ScreenWidth), scaleI(ScreenHeight)
}

// handleBoardInput forwards board clicks to the engine.
func (g *Game) handleBoardInput() {
	if !g.input.IsLeftJustPressed() {
		return
	}
	mx, my := g.input.MousePosition()
	c, ok := g.renderer.ScreenToCell(mx, my)
	if !ok {
		return
	}
	// Rejections reach the player through the event stream.
	_ = g.engine.OnCellClicked(c.X, c.Y)
}

// SelectMode switches the action mode.
func (g *Game) SelectMode(m engine.Mode) {
	_ = g.engine.OnModeSelected(m)
}

// EndTurnAction passes the turn to the other player.
func (g *Game) EndTurnAction() {
	g.engine.OnEndTurn()
}

// NewGameAction abandons the current game.
func (g *Game) NewGameAction() {
	g.engine.Reset()
}

// PlayerName returns the display name for c.
func (g *Game) PlayerName(c board.Color) string {
	return g.prefs.PlayerName(c)
}

// Stats returns the statistics of finished games.
func (g *Game) Stats() *storage.GameStats {
	return g.stats
}

// ButtonVisibility reports which action buttons apply to the selection.
func (g *Game) ButtonVisibility() engine.ButtonVisibility {
	return g.engine.ButtonVisibility()
}

// Mode returns the active action mode.
func (g *Game) Mode() engine.Mode {
	return g.engine.Mode()
}

// ShowSettings opens the settings modal.
func (g *Game) ShowSettings() {
	g.settingsModal.Show(g.prefs, func(prefs *storage.UserPreferences) {
		g.prefs.RedName = prefs.RedName
		g.prefs.BlueName = prefs.BlueName
		g.prefs.SoundEnabled = prefs.SoundEnabled
		g.prefs.ShowTargets = prefs.ShowTargets
		g.feedback.Audio().SetEnabled(prefs.SoundEnabled)
		g.savePreferences()
	}, nil)
}

// Close cleans up game resources.
func (g *Game) Close() {
	g.savePreferences()
}
