// Package ui implements the desktop board game UI using Ebitengine.
package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/rankwar/internal/board"
)

// pieceStyle holds the disc colors for one owner.
type pieceStyle struct {
	fill, rim, pip string
}

var pieceStyles = map[board.Color]pieceStyle{
	board.Red:  {fill: "#d9453b", rim: "#7a1c16", pip: "#fff4e8"},
	board.Blue: {fill: "#3b6fd9", rim: "#16307a", pip: "#eef4ff"},
}

// pipLayout places rank pips like dice faces on a 100x100 canvas.
var pipLayout = [board.MaxRank + 1][][2]int{
	1: {{50, 50}},
	2: {{35, 35}, {65, 65}},
	3: {{32, 32}, {50, 50}, {68, 68}},
	4: {{36, 36}, {64, 36}, {36, 64}, {64, 64}},
	5: {{32, 32}, {68, 32}, {50, 50}, {32, 68}, {68, 68}},
}

// pieceSVG returns the SVG document for a disc of the given owner and rank.
func pieceSVG(owner board.Color, rank int) (string, error) {
	style, ok := pieceStyles[owner]
	if !ok {
		return "", fmt.Errorf("no piece style for %s", owner)
	}
	if rank < board.MinRank || rank > board.MaxRank {
		return "", fmt.Errorf("rank %d out of range", rank)
	}

	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">`)
	sb.WriteString(`<circle cx="50" cy="53" r="40" fill="#000000" fill-opacity="0.25"/>`)
	fmt.Fprintf(&sb, `<circle cx="50" cy="50" r="40" fill="%s" stroke="%s" stroke-width="5"/>`, style.fill, style.rim)
	fmt.Fprintf(&sb, `<circle cx="50" cy="50" r="30" fill="none" stroke="%s" stroke-opacity="0.5" stroke-width="2"/>`, style.pip)
	for _, p := range pipLayout[rank] {
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="7" fill="%s"/>`, p[0], p[1], style.pip)
	}
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}

// renderPiece rasterizes the disc for owner and rank into a size x size image.
func renderPiece(owner board.Color, rank, size int) (*image.RGBA, error) {
	doc, err := pieceSVG(owner, rank)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

type spriteKey struct {
	owner board.Color
	rank  int
}

// SpriteManager manages piece sprites.
type SpriteManager struct {
	pieces      map[spriteKey]*ebiten.Image
	size        int     // Display size (e.g., 80)
	renderScale float64 // Render at higher resolution for quality (e.g., 3.0)
	scale       float64
}

// NewSpriteManager creates a new sprite manager with pieces of the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[spriteKey]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
		scale:       1.0,
	}
	sm.loadPieces()
	return sm
}

// loadPieces renders every owner and rank combination.
func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.renderScale)
	for owner := range pieceStyles {
		for rank := board.MinRank; rank <= board.MaxRank; rank++ {
			rgba, err := renderPiece(owner, rank, renderSize)
			if err != nil {
				continue
			}
			sm.pieces[spriteKey{owner, rank}] = ebiten.NewImageFromImage(rgba)
		}
	}
}

// SetScale sets the HiDPI scale factor sprites are drawn at.
func (sm *SpriteManager) SetScale(scale float64) {
	sm.scale = scale
}

// GetPiece returns the sprite for owner and rank, or nil.
func (sm *SpriteManager) GetPiece(owner board.Color, rank int) *ebiten.Image {
	return sm.pieces[spriteKey{owner, rank}]
}

// DrawPieceAt draws a piece at the given pixel coordinates.
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, owner board.Color, rank, x, y int) {
	sprite := sm.GetPiece(owner, rank)
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := sm.scale / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(x), float64(y))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
