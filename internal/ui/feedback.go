package ui

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
	"github.com/hailam/rankwar/internal/rules"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast represents a notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager manages toast notifications.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification. A repeat of the newest toast
// restarts it instead of stacking.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	if n := len(tm.toasts); n > 0 && tm.toasts[n-1].Message == message {
		tm.toasts[n-1].StartTime = time.Now()
		return
	}
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

// toastColors returns the background and text colors for t at opacity alpha.
func toastColors(t ToastType, alpha float64) (bg, fg color.RGBA) {
	fg = color.RGBA{255, 255, 255, uint8(255 * alpha)}
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, uint8(220 * alpha)}, color.RGBA{40, 30, 0, uint8(255 * alpha)}
	case ToastError:
		return color.RGBA{180, 50, 50, uint8(220 * alpha)}, fg
	case ToastSuccess:
		return color.RGBA{50, 150, 50, uint8(220 * alpha)}, fg
	default:
		return color.RGBA{50, 100, 150, uint8(220 * alpha)}, fg
	}
}

// Draw renders all active toasts centered over the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	if face == nil {
		return
	}

	y := scaleD(50)
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		// Fade in/out
		alpha := 1.0
		fadeTime := 0.2
		if elapsed < fadeTime {
			alpha = elapsed / fadeTime
		} else if elapsed > duration-fadeTime {
			alpha = (duration - elapsed) / fadeTime
		}
		alpha = math.Max(0, math.Min(1, alpha))
		bgColor, textColor := toastColors(t.Type, alpha)

		w, h := MeasureText(t.Message, face)
		padding := scaleD(12)
		boxW := w + padding*2
		boxH := h + padding*2
		x := scaleD(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bgColor, false)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x+padding, y+padding)
		op.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, t.Message, face, op)

		y += boxH + scaleD(8)
	}
}

// ShakeAnimation represents a piece shake effect.
type ShakeAnimation struct {
	Cell      board.Cell
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// FlashAnimation represents a cell flash effect.
type FlashAnimation struct {
	Cell      board.Cell
	StartTime time.Time
	Duration  time.Duration
	Color     color.RGBA
}

// AnimationManager manages visual animations.
type AnimationManager struct {
	shakes  []*ShakeAnimation
	flashes []*FlashAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a cell.
func (am *AnimationManager) StartShake(c board.Cell) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Cell:      c,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// StartFlash begins a flash animation on a cell.
func (am *AnimationManager) StartFlash(c board.Cell, col color.RGBA) {
	am.flashes = append(am.flashes, &FlashAnimation{
		Cell:      c,
		StartTime: time.Now(),
		Duration:  400 * time.Millisecond,
		Color:     col,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()

	shakes := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.StartTime) < s.Duration {
			shakes = append(shakes, s)
		}
	}
	am.shakes = shakes

	flashes := am.flashes[:0]
	for _, f := range am.flashes {
		if now.Sub(f.StartTime) < f.Duration {
			flashes = append(flashes, f)
		}
	}
	am.flashes = flashes
}

// shakeOffset is a damped sine wave over progress in [0, 1).
func shakeOffset(intensity, progress float64) float64 {
	if progress < 0 || progress >= 1.0 {
		return 0
	}
	amplitude := intensity * math.Exp(-5.0*progress)
	return amplitude * math.Sin(40.0*progress)
}

// GetShakeOffset returns the current shake offset for a cell.
func (am *AnimationManager) GetShakeOffset(c board.Cell) (float64, float64) {
	for _, s := range am.shakes {
		if s.Cell == c {
			progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
			return shakeOffset(s.Intensity, progress), 0
		}
	}
	return 0, 0
}

// DrawFlashes renders all active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, renderer *Renderer) {
	for _, f := range am.flashes {
		progress := time.Since(f.StartTime).Seconds() / f.Duration.Seconds()
		if progress >= 1.0 {
			continue
		}
		alpha := 1.0 - progress
		c := color.RGBA{f.Color.R, f.Color.G, f.Color.B, uint8(float64(f.Color.A) * alpha)}

		x, y := renderer.CellToScreen(f.Cell.X, f.Cell.Y)
		size := scaleF(renderer.SquareSize())
		vector.DrawFilledRect(screen, scaleF(x), scaleF(y), size, size, c, false)
	}
}

var (
	flashInvalid = color.RGBA{255, 80, 80, 150}
	flashAttack  = color.RGBA{255, 140, 60, 150}
	flashPromote = color.RGBA{90, 160, 255, 150}
)

// FeedbackManager coordinates all feedback systems.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager(sound bool) *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(sound),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders all feedback overlays.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, renderer *Renderer) {
	fm.animations.DrawFlashes(screen, renderer)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for renderer integration.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Audio returns the audio manager for settings access.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// Namer resolves a player's display name.
type Namer interface {
	PlayerName(board.Color) string
}

// OnEvent reacts to one engine transition. selected is the selection at
// the time of the event, if any.
func (fm *FeedbackManager) OnEvent(ev engine.Event, names Namer, selected *board.Cell) {
	if c, ok := CueFor(ev); ok {
		fm.audio.Play(c)
	}
	switch ev.Kind {
	case engine.EventRejected:
		fm.OnRejected(ev.Message, ev.Err, selected)
	case engine.EventPromote:
		fm.animations.StartFlash(ev.To, flashPromote)
	case engine.EventAttack:
		fm.animations.StartFlash(ev.To, flashAttack)
	case engine.EventEndTurn:
		fm.toasts.Show(fmt.Sprintf("%s to play", names.PlayerName(ev.Player.Other())), ToastInfo, 1500*time.Millisecond)
	case engine.EventGameOver:
		fm.toasts.Show(fmt.Sprintf("%s wins!", names.PlayerName(ev.Winner)), ToastSuccess, 5*time.Second)
	}
}

// OnRejected shows why an action failed, shakes the selected piece and
// flashes the offending target.
func (fm *FeedbackManager) OnRejected(message string, err error, selected *board.Cell) {
	if message != "" {
		fm.toasts.Show(message, ToastWarning, 2*time.Second)
	}
	if selected != nil {
		fm.animations.StartShake(*selected)
	}
	if ite, ok := rules.AsInvalidTarget(err); ok && ite.Target.InBounds() {
		fm.animations.StartFlash(ite.Target, flashInvalid)
	}
}
