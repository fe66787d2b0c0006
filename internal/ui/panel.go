package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
)

// Panel dimensions
const (
	PanelPadding    = 20
	SectionSpacing  = 18
	ButtonHeight    = 40
	TabHeight       = 34
	CollapsedWidth  = 20
	CollapseButtonW = 16
	CollapseButtonH = 48
	SectionLabelH   = 20
	StatusBarH      = 80
)

// Panel colors
var (
	panelBg         = color.RGBA{38, 40, 45, 255}    // Dark background
	sectionBg       = color.RGBA{48, 52, 58, 255}    // Slightly lighter section
	tabActiveBg     = color.RGBA{76, 132, 96, 255}   // Green for active tab
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}    // Darker gray for inactive
	tabHoverBg      = color.RGBA{65, 70, 78, 255}    // Visible hover state
	buttonBg        = color.RGBA{50, 54, 60, 255}    // Button background (darker)
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}    // Button hover (brighter)
	buttonPressedBg = color.RGBA{40, 44, 50, 255}    // Button pressed (darker)
	buttonBorder    = color.RGBA{70, 75, 82, 255}    // Subtle button border
	accentColor     = color.RGBA{76, 175, 120, 255}  // Green accent
	accentHover     = color.RGBA{96, 195, 140, 255}  // Lighter green on hover
	accentPressed   = color.RGBA{56, 155, 100, 255}  // Darker green on press
	textPrimary     = color.RGBA{240, 240, 245, 255} // Primary text
	textSecondary   = color.RGBA{160, 165, 175, 255} // Secondary text
	textMuted       = color.RGBA{120, 125, 135, 255} // Muted text
	dividerColor    = color.RGBA{60, 65, 72, 255}    // Divider line
	statusMessage   = color.RGBA{255, 200, 80, 255}  // Yellow for engine messages
	budgetFull      = color.RGBA{76, 175, 120, 255}
	budgetEmpty     = color.RGBA{60, 65, 72, 255}
)

// playerColors are the text colors for each side.
var playerColors = map[board.Color]color.RGBA{
	board.Red:  {235, 100, 90, 255},
	board.Blue: {110, 150, 240, 255},
}

// Button represents a clickable UI element.
type Button struct {
	X, Y, W, H int
	Label      string
	OnClick    func()
	hovered    bool
	pressed    bool
}

func (b *Button) contains(mx, my int) bool {
	return mx >= b.X && mx < b.X+b.W && my >= b.Y && my < b.Y+b.H
}

// modeTab is a mode button bound to an engine mode.
type modeTab struct {
	Button
	mode engine.Mode
}

// Panel is the side panel with turn info and action controls.
type Panel struct {
	game      *Game
	collapsed bool

	collapseBtn *Button
	newGameBtn  *Button
	settingsBtn *Button
	endTurnBtn  *Button
	modeTabs    []*modeTab

	turnY   int
	modeY   int
	forcesY int
}

// NewPanel creates a new panel for the given game.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}
	p.createButtons()
	return p
}

// createButtons lays out all panel buttons.
func (p *Panel) createButtons() {
	// Collapse/expand tab at panel edge
	tabY := (ScreenHeight - CollapseButtonH) / 2
	collapseX := BoardSize
	if p.collapsed {
		collapseX = BoardSize + 2
	}
	p.collapseBtn = &Button{
		X: collapseX, Y: tabY,
		W: CollapseButtonW, H: CollapseButtonH,
		OnClick: p.toggleCollapse,
	}

	contentX := BoardSize + PanelPadding
	contentW := PanelWidth - PanelPadding*2

	y := PanelPadding + 8
	p.newGameBtn = &Button{
		X: contentX, Y: y, W: contentW / 2, H: ButtonHeight,
		Label:   "New Game",
		OnClick: p.game.NewGameAction,
	}
	p.settingsBtn = &Button{
		X: contentX + contentW/2 + 6, Y: y, W: contentW/2 - 6, H: ButtonHeight,
		Label:   "Settings",
		OnClick: p.game.ShowSettings,
	}
	y += ButtonHeight + SectionSpacing

	// Turn section: label, player line, moves line, budget bar
	p.turnY = y
	y += SectionLabelH + 76

	// Mode section: label + 2x2 tabs
	p.modeY = y
	y += SectionLabelH
	tabW := contentW / 2
	p.modeTabs = p.modeTabs[:0]
	for i, m := range engine.Modes {
		p.modeTabs = append(p.modeTabs, &modeTab{
			Button: Button{
				X: contentX + (i%2)*tabW, Y: y + (i/2)*TabHeight,
				W: tabW, H: TabHeight,
				Label:   modeLabel(m),
				OnClick: func() { p.game.SelectMode(m) },
			},
			mode: m,
		})
	}
	y += 2*TabHeight + 10

	p.endTurnBtn = &Button{
		X: contentX, Y: y, W: contentW, H: ButtonHeight,
		Label:   "End Turn",
		OnClick: p.game.EndTurnAction,
	}
	y += ButtonHeight + SectionSpacing

	p.forcesY = y
}

// modeLabel returns the tab caption for m with its keyboard shortcut.
func modeLabel(m engine.Mode) string {
	switch m {
	case engine.ModeMove:
		return "Move (M)"
	case engine.ModePromote:
		return "Promote (P)"
	case engine.ModeAttack:
		return "Attack (A)"
	case engine.ModeDemote:
		return "Demote (D)"
	}
	return m.String()
}

// tabVisible reports whether the tab for m is offered. Move is always
// available; the other modes follow the engine's button visibility.
func tabVisible(m engine.Mode, vis engine.ButtonVisibility) bool {
	switch m {
	case engine.ModePromote:
		return vis.PromoteAvailable
	case engine.ModeAttack:
		return vis.AttackAvailable
	case engine.ModeDemote:
		return vis.DemoteAvailable
	}
	return true
}

// buttons returns the clickable buttons in the expanded panel.
func (p *Panel) buttons() []*Button {
	vis := p.game.ButtonVisibility()
	btns := []*Button{p.newGameBtn, p.settingsBtn, p.endTurnBtn}
	for _, t := range p.modeTabs {
		if tabVisible(t.mode, vis) || t.mode == p.game.Mode() {
			btns = append(btns, &t.Button)
		}
	}
	return btns
}

// HandleInput processes input for the panel. Returns true if input was handled.
func (p *Panel) HandleInput(input *InputHandler) bool {
	mx, my := input.MousePosition()

	p.collapseBtn.hovered = p.collapseBtn.contains(mx, my)
	p.collapseBtn.pressed = input.IsLeftPressed() && p.collapseBtn.hovered
	if input.IsLeftJustPressed() && p.collapseBtn.hovered {
		p.collapseBtn.OnClick()
		return true
	}
	if p.collapsed {
		return false
	}

	for _, t := range p.modeTabs {
		t.hovered, t.pressed = false, false
	}
	btns := p.buttons()
	for _, btn := range btns {
		btn.hovered = btn.contains(mx, my)
		btn.pressed = input.IsLeftPressed() && btn.hovered
	}
	if input.IsLeftJustPressed() {
		for _, btn := range btns {
			if btn.hovered {
				btn.OnClick()
				return true
			}
		}
	}
	return mx >= BoardSize
}

// AnyButtonHovered returns true if any button in the panel is hovered.
func (p *Panel) AnyButtonHovered() bool {
	if p.collapseBtn.hovered {
		return true
	}
	if p.collapsed {
		return false
	}
	for _, btn := range p.buttons() {
		if btn.hovered {
			return true
		}
	}
	return false
}

// Draw renders the panel from snap.
func (p *Panel) Draw(screen *ebiten.Image, snap *engine.Snapshot) {
	if p.collapsed {
		vector.DrawFilledRect(screen, scaleF(BoardSize), 0, scaleF(CollapsedWidth), scaleF(ScreenHeight), panelBg, false)
		p.drawCollapseButton(screen, true)
		return
	}

	vector.DrawFilledRect(screen, scaleF(BoardSize), 0, scaleF(PanelWidth), scaleF(ScreenHeight), panelBg, false)
	p.drawCollapseButton(screen, false)

	p.drawPrimaryButton(screen, p.newGameBtn)
	p.drawSecondaryButton(screen, p.settingsBtn)

	x := BoardSize + PanelPadding
	p.drawSectionLabel(screen, "Turn", x, p.turnY)
	p.drawTurn(screen, snap, p.turnY+SectionLabelH)

	p.drawSectionLabel(screen, "Action", x, p.modeY)
	p.drawModeTabs(screen, snap)
	p.drawPrimaryButton(screen, p.endTurnBtn)

	p.drawSectionLabel(screen, "Forces", x, p.forcesY)
	p.drawForces(screen, snap, p.forcesY+SectionLabelH)

	p.drawStatusBar(screen, snap)
}

func (p *Panel) drawTurn(screen *ebiten.Image, snap *engine.Snapshot, y int) {
	x := BoardSize + PanelPadding
	player := snap.Turn.CurrentPlayer
	p.drawText(screen, fmt.Sprintf("Turn %d", snap.Turn.Turn), x, y, textSecondary)
	p.drawText(screen, p.game.PlayerName(player)+" to play", x+80, y, playerColors[player])

	p.drawText(screen, fmt.Sprintf("Moves left: %d / %d", snap.Turn.MovesLeft, engine.MovesPerTurn), x, y+24, textPrimary)

	// Budget bar, one segment per move
	segW := (PanelWidth - PanelPadding*2 - (engine.MovesPerTurn-1)*4) / engine.MovesPerTurn
	for i := 0; i < engine.MovesPerTurn; i++ {
		c := budgetEmpty
		if i < snap.Turn.MovesLeft {
			c = budgetFull
		}
		vector.DrawFilledRect(screen, scaleF(x+i*(segW+4)), scaleF(y+50), scaleF(segW), scaleF(8), c, false)
	}
}

func (p *Panel) drawForces(screen *ebiten.Image, snap *engine.Snapshot, y int) {
	x := BoardSize + PanelPadding
	rows := []struct {
		c board.Color
		s engine.SideStats
	}{{board.Red, snap.Red}, {board.Blue, snap.Blue}}
	for i, r := range rows {
		ry := y + i*24
		p.drawText(screen, p.game.PlayerName(r.c), x, ry, playerColors[r.c])
		p.drawText(screen, fmt.Sprintf("%d pieces  strength %d", r.s.Pieces, r.s.Strength), x+110, ry, textSecondary)
	}
}

func (p *Panel) drawCollapseButton(screen *ebiten.Image, expand bool) {
	btn := p.collapseBtn

	// Integrated tab that blends with the panel
	bgColor := panelBg
	if btn.hovered {
		bgColor = sectionBg
	}
	vector.DrawFilledRect(screen, scaleF(btn.X), scaleF(btn.Y), scaleF(btn.W), scaleF(btn.H), bgColor, false)

	arrow := "‹"
	if expand {
		arrow = "›"
	}
	textC := textMuted
	if btn.hovered {
		textC = textPrimary
	}
	p.drawTextCentered(screen, arrow, btn.X+btn.W/2, btn.Y+btn.H/2, textC)
}

func (p *Panel) drawPrimaryButton(screen *ebiten.Image, btn *Button) {
	bgColor := accentColor
	if btn.pressed {
		bgColor = accentPressed
	} else if btn.hovered {
		bgColor = accentHover
	}
	vector.DrawFilledRect(screen, scaleF(btn.X), scaleF(btn.Y), scaleF(btn.W), scaleF(btn.H), bgColor, false)

	borderC := accentPressed
	if btn.hovered {
		borderC = color.RGBA{116, 215, 160, 255}
	}
	vector.StrokeRect(screen, scaleF(btn.X), scaleF(btn.Y), scaleF(btn.W), scaleF(btn.H), 1, borderC, false)

	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, textPrimary)
}

func (p *Panel) drawSecondaryButton(screen *ebiten.Image, btn *Button) {
	bgColor := buttonBg
	if btn.pressed {
		bgColor = buttonPressedBg
	} else if btn.hovered {
		bgColor = buttonHoverBg
	}
	vector.DrawFilledRect(screen, scaleF(btn.X), scaleF(btn.Y), scaleF(btn.W), scaleF(btn.H), bgColor, false)

	borderC := buttonBorder
	if btn.hovered {
		borderC = accentColor
	}
	vector.StrokeRect(screen, scaleF(btn.X), scaleF(btn.Y), scaleF(btn.W), scaleF(btn.H), 1, borderC, false)

	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, textSecondary)
}

func (p *Panel) drawModeTabs(screen *ebiten.Image, snap *engine.Snapshot) {
	for _, t := range p.modeTabs {
		isActive := t.mode == snap.Turn.Mode
		visible := tabVisible(t.mode, snap.Buttons)
		if !visible && !isActive {
			// Placeholder keeps the grid stable
			vector.StrokeRect(screen, scaleF(t.X), scaleF(t.Y), scaleF(t.W), scaleF(t.H), 1, dividerColor, false)
			continue
		}

		bgColor := tabInactiveBg
		switch {
		case isActive:
			bgColor = tabActiveBg
		case t.pressed:
			bgColor = buttonPressedBg
		case t.hovered:
			bgColor = tabHoverBg
		}
		vector.DrawFilledRect(screen, scaleF(t.X), scaleF(t.Y), scaleF(t.W), scaleF(t.H), bgColor, false)

		borderC := buttonBorder
		if isActive {
			borderC = tabActiveBg
		} else if t.hovered {
			borderC = accentColor
		}
		vector.StrokeRect(screen, scaleF(t.X), scaleF(t.Y), scaleF(t.W), scaleF(t.H), 1, borderC, false)

		textColor := textSecondary
		if isActive {
			textColor = textPrimary
		}
		p.drawTextCentered(screen, t.Label, t.X+t.W/2, t.Y+t.H/2, textColor)
	}
}

func (p *Panel) drawSectionLabel(screen *ebiten.Image, label string, x, y int) {
	p.drawText(screen, label, x, y, textMuted)
}

func (p *Panel) drawStatusBar(screen *ebiten.Image, snap *engine.Snapshot) {
	statusY := ScreenHeight - StatusBarH + 10
	x := BoardSize + PanelPadding

	DrawDivider(screen, x, statusY-10, PanelWidth-PanelPadding*2)

	if snap.Message != "" {
		p.drawText(screen, snap.Message, x, statusY, statusMessage)
	}
	p.drawText(screen, statsLine(p.game), x, statusY+24, textMuted)
}

// statsLine summarises finished games.
func statsLine(g *Game) string {
	s := g.Stats()
	if s == nil || s.GamesPlayed == 0 {
		return "No finished games yet"
	}
	return fmt.Sprintf("Games %d  %s %.0f%%  %s %.0f%%", s.GamesPlayed,
		g.PlayerName(board.Red), s.WinRate(board.Red),
		g.PlayerName(board.Blue), s.WinRate(board.Blue))
}

// Text drawing helpers, in logical coordinates
func (p *Panel) drawText(screen *ebiten.Image, s string, x, y int, c color.Color) {
	face := GetRegularFace()
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(x), scaleD(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

func (p *Panel) drawTextCentered(screen *ebiten.Image, s string, centerX, centerY int, c color.Color) {
	face := GetRegularFace()
	if face == nil {
		return
	}
	w, h := MeasureText(s, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(centerX)-w/2, scaleD(centerY)-h/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// Collapsed returns whether the panel is collapsed.
func (p *Panel) Collapsed() bool {
	return p.collapsed
}

// toggleCollapse toggles the panel collapsed state and resizes the window.
func (p *Panel) toggleCollapse() {
	p.collapsed = !p.collapsed
	p.createButtons()

	if p.collapsed {
		ebiten.SetWindowSize(BoardSize+CollapsedWidth, ScreenHeight)
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	}
}
