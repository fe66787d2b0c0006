package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/rankwar/internal/storage"
)

// Settings modal dimensions
const (
	SettingsWidth  = 380
	SettingsHeight = 400
	SettingsPadX   = 24
	SettingsPadY   = 20

	maxNameLength = 16
)

// Settings modal colors
var (
	modalOverlay = color.RGBA{0, 0, 0, 180}
	modalBg      = color.RGBA{38, 40, 45, 255}
	modalHeader  = color.RGBA{48, 52, 58, 255}
	modalBorder  = color.RGBA{58, 62, 68, 255}
)

// SettingsModal is the settings configuration screen.
type SettingsModal struct {
	visible bool

	// Position (centered on screen)
	x, y int

	// Widgets
	redInput        *TextInput
	blueInput       *TextInput
	soundCheckbox   *Checkbox
	targetsCheckbox *Checkbox
	saveBtn         *ModalButton
	cancelBtn       *ModalButton

	// Callbacks
	onSave   func(prefs *storage.UserPreferences)
	onCancel func()
}

// NewSettingsModal creates a new settings modal.
func NewSettingsModal() *SettingsModal {
	sm := &SettingsModal{}
	sm.calculatePosition()
	sm.createWidgets()
	return sm
}

// calculatePosition centers the modal on screen.
func (sm *SettingsModal) calculatePosition() {
	sm.x = (ScreenWidth - SettingsWidth) / 2
	sm.y = (ScreenHeight - SettingsHeight) / 2
}

// createWidgets initializes all settings widgets.
func (sm *SettingsModal) createWidgets() {
	contentX := sm.x + SettingsPadX
	contentW := SettingsWidth - SettingsPadX*2

	redY := sm.y + 76
	sm.redInput = NewTextInput(contentX, redY, contentW, 36, "Red", maxNameLength)
	blueY := redY + 70
	sm.blueInput = NewTextInput(contentX, blueY, contentW, 36, "Blue", maxNameLength)

	checkY := blueY + 70
	sm.soundCheckbox = NewCheckbox(contentX, checkY, "Sound Effects", true)
	sm.targetsCheckbox = NewCheckbox(contentX, checkY+34, "Highlight Targets", true)

	btnW := 100
	btnH := 38
	btnY := sm.y + SettingsHeight - SettingsPadY - btnH
	btnSpacing := 12

	sm.cancelBtn = NewModalButton(
		sm.x+SettingsWidth-SettingsPadX-btnW*2-btnSpacing,
		btnY, btnW, btnH, "Cancel", false, nil,
	)
	sm.saveBtn = NewModalButton(
		sm.x+SettingsWidth-SettingsPadX-btnW,
		btnY, btnW, btnH, "Save", true, nil,
	)
}

// Show displays the settings modal with the given preferences.
func (sm *SettingsModal) Show(prefs *storage.UserPreferences, onSave func(*storage.UserPreferences), onCancel func()) {
	sm.visible = true
	sm.onSave = onSave
	sm.onCancel = onCancel

	sm.redInput.Value = prefs.RedName
	sm.blueInput.Value = prefs.BlueName
	sm.soundCheckbox.Checked = prefs.SoundEnabled
	sm.targetsCheckbox.Checked = prefs.ShowTargets

	sm.saveBtn.OnClick = sm.handleSave
	sm.cancelBtn.OnClick = sm.handleCancel
}

// Hide closes the settings modal.
func (sm *SettingsModal) Hide() {
	sm.visible = false
	sm.redInput.SetFocused(false)
	sm.blueInput.SetFocused(false)
}

// IsVisible returns true if the modal is visible.
func (sm *SettingsModal) IsVisible() bool {
	return sm.visible
}

// Preferences returns the preferences currently entered in the form.
// Blank names fall back to the defaults.
func (sm *SettingsModal) Preferences() *storage.UserPreferences {
	def := storage.DefaultPreferences()
	return &storage.UserPreferences{
		RedName:      sm.redInput.Text(def.RedName),
		BlueName:     sm.blueInput.Text(def.BlueName),
		SoundEnabled: sm.soundCheckbox.Checked,
		ShowTargets:  sm.targetsCheckbox.Checked,
	}
}

// handleSave saves settings and closes the modal.
func (sm *SettingsModal) handleSave() {
	if sm.onSave != nil {
		sm.onSave(sm.Preferences())
	}
	sm.Hide()
}

// handleCancel discards changes and closes the modal.
func (sm *SettingsModal) handleCancel() {
	if sm.onCancel != nil {
		sm.onCancel()
	}
	sm.Hide()
}

func (sm *SettingsModal) editing() bool {
	return sm.redInput.IsFocused() || sm.blueInput.IsFocused()
}

// Update handles input for the settings modal.
func (sm *SettingsModal) Update(input *InputHandler) bool {
	if !sm.visible {
		return false
	}

	if !sm.editing() {
		if IsKeyJustPressed(ebiten.KeyEscape) {
			sm.handleCancel()
			return true
		}
		if IsKeyJustPressed(ebiten.KeyEnter) {
			sm.handleSave()
			return true
		}
	}

	sm.redInput.Update(input)
	sm.blueInput.Update(input)
	sm.soundCheckbox.Update(input)
	sm.targetsCheckbox.Update(input)
	sm.saveBtn.Update(input)
	sm.cancelBtn.Update(input)

	// Modal consumes all input
	return true
}

// AnyButtonHovered returns true if any button in the modal is hovered.
func (sm *SettingsModal) AnyButtonHovered() bool {
	if !sm.visible {
		return false
	}
	return sm.saveBtn.IsHovered() || sm.cancelBtn.IsHovered() ||
		sm.soundCheckbox.hovered || sm.targetsCheckbox.hovered
}

// Draw renders the settings modal.
func (sm *SettingsModal) Draw(screen *ebiten.Image, glass *GlassEffect) {
	if !sm.visible {
		return
	}

	glass.DrawBackdrop(screen, 3.0, 0.4)

	vector.DrawFilledRect(screen, scaleF(sm.x), scaleF(sm.y), scaleF(SettingsWidth), scaleF(SettingsHeight), modalBg, false)
	vector.StrokeRect(screen, scaleF(sm.x), scaleF(sm.y), scaleF(SettingsWidth), scaleF(SettingsHeight), scaleF(2), modalBorder, false)
	vector.DrawFilledRect(screen, scaleF(sm.x), scaleF(sm.y), scaleF(SettingsWidth), scaleF(44), modalHeader, false)

	sm.drawTitle(screen)

	contentX := sm.x + SettingsPadX
	drawLabel(screen, "Red Player", contentX, sm.redInput.Y-22)
	drawLabel(screen, "Blue Player", contentX, sm.blueInput.Y-22)

	sm.redInput.Draw(screen)
	sm.blueInput.Draw(screen)
	sm.soundCheckbox.Draw(screen)
	sm.targetsCheckbox.Draw(screen)
	sm.saveBtn.Draw(screen)
	sm.cancelBtn.Draw(screen)
}

// drawTitle draws the modal title.
func (sm *SettingsModal) drawTitle(screen *ebiten.Image) {
	face := GetBoldFace()
	if face == nil {
		return
	}

	title := "Settings"
	w, h := MeasureText(title, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(sm.x)+scaleD(SettingsWidth)/2-w/2, scaleD(sm.y)+scaleD(22)-h/2)
	op.ColorScale.ScaleWithColor(textPrimary)
	text.Draw(screen, title, face, op)
}
