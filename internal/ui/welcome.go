package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/storage"
)

// Welcome screen dimensions
const (
	WelcomeWidth  = 400
	WelcomeHeight = 400
	WelcomePadX   = 32
	WelcomePadY   = 24
)

// WelcomeScreen is shown on first launch to name both players.
type WelcomeScreen struct {
	visible bool

	// Position (centered on screen)
	x, y int

	redInput  *TextInput
	blueInput *TextInput
	startBtn  *ModalButton

	onComplete func(red, blue string)
}

// NewWelcomeScreen creates a new welcome screen.
func NewWelcomeScreen() *WelcomeScreen {
	ws := &WelcomeScreen{}
	ws.calculatePosition()
	ws.createWidgets()
	return ws
}

// calculatePosition centers the screen.
func (ws *WelcomeScreen) calculatePosition() {
	ws.x = (ScreenWidth - WelcomeWidth) / 2
	ws.y = (ScreenHeight - WelcomeHeight) / 2
}

// createWidgets initializes all welcome screen widgets.
func (ws *WelcomeScreen) createWidgets() {
	contentX := ws.x + WelcomePadX
	contentW := WelcomeWidth - WelcomePadX*2

	inputY := ws.y + 150
	ws.redInput = NewTextInput(contentX, inputY, contentW, 40, "Red", maxNameLength)
	ws.blueInput = NewTextInput(contentX, inputY+74, contentW, 40, "Blue", maxNameLength)

	btnW := 160
	btnH := 44
	btnX := ws.x + (WelcomeWidth-btnW)/2
	btnY := ws.y + WelcomeHeight - WelcomePadY - btnH
	ws.startBtn = NewModalButton(btnX, btnY, btnW, btnH, "Start Playing", true, nil)
}

// Show displays the welcome screen.
func (ws *WelcomeScreen) Show(onComplete func(red, blue string)) {
	ws.visible = true
	ws.onComplete = onComplete
	ws.redInput.Value = ""
	ws.blueInput.Value = ""
	ws.redInput.SetFocused(true)
	ws.startBtn.OnClick = ws.handleStart
}

// Hide closes the welcome screen.
func (ws *WelcomeScreen) Hide() {
	ws.visible = false
	ws.redInput.SetFocused(false)
	ws.blueInput.SetFocused(false)
}

// IsVisible returns true if the screen is visible.
func (ws *WelcomeScreen) IsVisible() bool {
	return ws.visible
}

// handleStart handles the start button click.
func (ws *WelcomeScreen) handleStart() {
	def := storage.DefaultPreferences()
	red := ws.redInput.Text(def.RedName)
	blue := ws.blueInput.Text(def.BlueName)
	if ws.onComplete != nil {
		ws.onComplete(red, blue)
	}
	ws.Hide()
}

// Update handles input for the welcome screen.
func (ws *WelcomeScreen) Update(input *InputHandler) bool {
	if !ws.visible {
		return false
	}

	if IsKeyJustPressed(ebiten.KeyEnter) {
		if ws.redInput.IsFocused() {
			// Enter moves from the first name to the second.
			ws.redInput.SetFocused(false)
			ws.blueInput.SetFocused(true)
			return true
		}
		ws.handleStart()
		return true
	}

	ws.redInput.Update(input)
	ws.blueInput.Update(input)
	ws.startBtn.Update(input)

	// Welcome screen consumes all input
	return true
}

// AnyButtonHovered returns true if any button in the screen is hovered.
func (ws *WelcomeScreen) AnyButtonHovered() bool {
	if !ws.visible {
		return false
	}
	return ws.startBtn.IsHovered()
}

// Draw renders the welcome screen.
func (ws *WelcomeScreen) Draw(screen *ebiten.Image, glass *GlassEffect) {
	if !ws.visible {
		return
	}

	glass.DrawBackdrop(screen, 3.0, 0.4)

	vector.DrawFilledRect(screen, scaleF(ws.x), scaleF(ws.y), scaleF(WelcomeWidth), scaleF(WelcomeHeight), modalBg, false)
	vector.StrokeRect(screen, scaleF(ws.x), scaleF(ws.y), scaleF(WelcomeWidth), scaleF(WelcomeHeight), scaleF(2), modalBorder, false)

	ws.drawIcon(screen)
	ws.drawCentered(screen, "RANKWAR", GetFaceWithSize(24), ws.y+64, textPrimary)
	ws.drawCentered(screen, "Welcome! Who is playing?", GetRegularFace(), ws.y+98, textSecondary)

	contentX := ws.x + WelcomePadX
	drawLabel(screen, "Red Player", contentX, ws.redInput.Y-22)
	drawLabel(screen, "Blue Player", contentX, ws.blueInput.Y-22)

	ws.redInput.Draw(screen)
	ws.blueInput.Draw(screen)
	ws.startBtn.Draw(screen)
}

// drawIcon draws a red and a blue disc side by side.
func (ws *WelcomeScreen) drawIcon(screen *ebiten.Image) {
	cx := ws.x + WelcomeWidth/2
	cy := ws.y + 36
	vector.DrawFilledCircle(screen, scaleF(cx-14), scaleF(cy), scaleF(14), playerColors[board.Red], true)
	vector.DrawFilledCircle(screen, scaleF(cx+14), scaleF(cy), scaleF(14), playerColors[board.Blue], true)
}

// drawCentered draws s horizontally centered in the screen box at y.
func (ws *WelcomeScreen) drawCentered(screen *ebiten.Image, s string, face *text.GoTextFace, y int, c color.Color) {
	if face == nil {
		return
	}
	w, _ := MeasureText(s, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(ws.x)+scaleD(WelcomeWidth)/2-w/2, scaleD(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
