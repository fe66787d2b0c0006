package ui

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	SelectedBorder color.RGBA
	MoveTarget     color.RGBA
	PromoteTarget  color.RGBA
	AttackTarget   color.RGBA
	DemoteTarget   color.RGBA
	Background     color.RGBA
	TextColor      color.RGBA
	CoordColor     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{214, 220, 206, 255},
		DarkSquare:     color.RGBA{148, 163, 140, 255},
		SelectedSquare: color.RGBA{247, 247, 105, 120},
		SelectedBorder: color.RGBA{250, 210, 60, 255},
		MoveTarget:     color.RGBA{90, 170, 110, 170},
		PromoteTarget:  color.RGBA{70, 140, 230, 150},
		AttackTarget:   color.RGBA{230, 80, 70, 150},
		DemoteTarget:   color.RGBA{200, 150, 60, 150},
		Background:     color.RGBA{40, 44, 52, 255},
		TextColor:      color.RGBA{220, 220, 220, 255},
		CoordColor:     color.RGBA{60, 70, 60, 160},
	}
}

// TargetColor returns the overlay color used for targets in mode m.
func (t *Theme) TargetColor(m engine.Mode) color.RGBA {
	switch m {
	case engine.ModePromote:
		return t.PromoteTarget
	case engine.ModeAttack:
		return t.AttackTarget
	case engine.ModeDemote:
		return t.DemoteTarget
	default:
		return t.MoveTarget
	}
}

// Renderer handles all drawing operations.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	scale      float64 // HiDPI scale factor
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
		scale:      1.0,
	}
}

// SetScale sets the HiDPI scale factor for rendering.
func (r *Renderer) SetScale(scale float64) {
	r.scale = scale
	r.sprites.SetScale(scale)
}

// s returns the scaled value for rendering.
func (r *Renderer) s(v int) float32 {
	return float32(float64(v) * r.scale)
}

// DrawBoard draws the board tiles and cell coordinates.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			c := r.theme.LightSquare
			if (x+y)%2 == 1 {
				c = r.theme.DarkSquare
			}
			sx, sy := r.CellToScreen(x, y)
			vector.DrawFilledRect(screen, r.s(sx), r.s(sy), r.s(r.squareSize), r.s(r.squareSize), c, false)
		}
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels column indices along the bottom row and row
// indices down the left column.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	face := GetFaceWithSize(10)
	if face == nil {
		return
	}
	for i := 0; i < board.Size; i++ {
		label := strconv.Itoa(i)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(r.s(i*r.squareSize+r.squareSize-10)), float64(r.s(r.boardSize-14)))
		op.ColorScale.ScaleWithColor(r.theme.CoordColor)
		text.Draw(screen, label, face, op)

		op = &text.DrawOptions{}
		op.GeoM.Translate(float64(r.s(3)), float64(r.s(i*r.squareSize+2)))
		op.ColorScale.ScaleWithColor(r.theme.CoordColor)
		text.Draw(screen, label, face, op)
	}
}

// DrawHighlights draws the selection outline and the target overlays for
// mode.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, selected *board.Cell, targets []board.Cell, mode engine.Mode) {
	if selected != nil {
		r.highlightCell(screen, *selected, r.theme.SelectedSquare)
		x, y := r.CellToScreen(selected.X, selected.Y)
		vector.StrokeRect(screen, r.s(x)+r.s(2), r.s(y)+r.s(2), r.s(r.squareSize-4), r.s(r.squareSize-4),
			r.s(3), r.theme.SelectedBorder, false)
	}

	tc := r.theme.TargetColor(mode)
	for _, c := range targets {
		if mode == engine.ModeMove {
			r.drawMoveIndicator(screen, c, tc)
			continue
		}
		r.highlightCell(screen, c, tc)
	}
}

// highlightCell draws a colored overlay on a cell.
func (r *Renderer) highlightCell(screen *ebiten.Image, c board.Cell, col color.RGBA) {
	if !c.InBounds() {
		return
	}
	x, y := r.CellToScreen(c.X, c.Y)
	vector.DrawFilledRect(screen, r.s(x), r.s(y), r.s(r.squareSize), r.s(r.squareSize), col, false)
}

// drawMoveIndicator draws a dot on a move target.
func (r *Renderer) drawMoveIndicator(screen *ebiten.Image, c board.Cell, col color.RGBA) {
	x, y := r.CellToScreen(c.X, c.Y)
	cx := r.s(x) + r.s(r.squareSize)/2
	cy := r.s(y) + r.s(r.squareSize)/2
	vector.DrawFilledCircle(screen, cx, cy, r.s(r.squareSize)*0.15, col, false)
}

// DrawPieces draws all pieces on the board, offset by any active shake.
func (r *Renderer) DrawPieces(screen *ebiten.Image, state *engine.BoardState, anims *AnimationManager) {
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			pv := state.At(x, y)
			if pv == nil {
				continue
			}
			sx, sy := r.CellToScreen(x, y)
			if anims != nil {
				dx, dy := anims.GetShakeOffset(board.Cell{X: x, Y: y})
				sx += int(dx)
				sy += int(dy)
			}
			r.sprites.DrawPieceAt(screen, pv.Owner, pv.Rank, int(r.s(sx)), int(r.s(sy)))
		}
	}
}

// CellToScreen converts a board cell to logical screen coordinates of its
// top-left corner. Row 0 is drawn at the top.
func (r *Renderer) CellToScreen(x, y int) (int, int) {
	return x * r.squareSize, y * r.squareSize
}

// ScreenToCell converts logical screen coordinates to a board cell. ok is
// false outside the board.
func (r *Renderer) ScreenToCell(x, y int) (c board.Cell, ok bool) {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.Cell{}, false
	}
	return board.Cell{X: x / r.squareSize, Y: y / r.squareSize}, true
}

// SquareSize returns the size of one cell in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
