package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Kage shader for Gaussian blur (horizontal pass)
// Uses 9-tap Gaussian kernel (fixed size for Kage compatibility)
var blurHorizontalShader = []byte(`
//kage:unit pixels

package main

var Sigma float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
    var result vec4

    result += imageSrc0At(srcPos + vec2(-4*Sigma, 0)) * 0.0162
    result += imageSrc0At(srcPos + vec2(-3*Sigma, 0)) * 0.0540
    result += imageSrc0At(srcPos + vec2(-2*Sigma, 0)) * 0.1218
    result += imageSrc0At(srcPos + vec2(-1*Sigma, 0)) * 0.1954
    result += imageSrc0At(srcPos) * 0.2252
    result += imageSrc0At(srcPos + vec2(1*Sigma, 0)) * 0.1954
    result += imageSrc0At(srcPos + vec2(2*Sigma, 0)) * 0.1218
    result += imageSrc0At(srcPos + vec2(3*Sigma, 0)) * 0.0540
    result += imageSrc0At(srcPos + vec2(4*Sigma, 0)) * 0.0162

    return result
}
`)

// Kage shader for Gaussian blur (vertical pass)
var blurVerticalShader = []byte(`
//kage:unit pixels

package main

var Sigma float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
    var result vec4

    result += imageSrc0At(srcPos + vec2(0, -4*Sigma)) * 0.0162
    result += imageSrc0At(srcPos + vec2(0, -3*Sigma)) * 0.0540
    result += imageSrc0At(srcPos + vec2(0, -2*Sigma)) * 0.1218
    result += imageSrc0At(srcPos + vec2(0, -1*Sigma)) * 0.1954
    result += imageSrc0At(srcPos) * 0.2252
    result += imageSrc0At(srcPos + vec2(0, 1*Sigma)) * 0.1954
    result += imageSrc0At(srcPos + vec2(0, 2*Sigma)) * 0.1218
    result += imageSrc0At(srcPos + vec2(0, 3*Sigma)) * 0.0540
    result += imageSrc0At(srcPos + vec2(0, 4*Sigma)) * 0.0162

    return result
}
`)

// GlassEffect draws the blurred backdrop behind modals.
type GlassEffect struct {
	blurH   *ebiten.Shader
	blurV   *ebiten.Shader
	tempH   *ebiten.Image
	tempV   *ebiten.Image
	enabled bool
}

// NewGlassEffect compiles the blur shaders. When compilation fails the
// effect falls back to a flat overlay.
func NewGlassEffect() *GlassEffect {
	ge := &GlassEffect{}

	var err error
	if ge.blurH, err = ebiten.NewShader(blurHorizontalShader); err != nil {
		return ge
	}
	if ge.blurV, err = ebiten.NewShader(blurVerticalShader); err != nil {
		return ge
	}
	ge.enabled = true
	return ge
}

// IsEnabled returns whether the blur is available.
func (ge *GlassEffect) IsEnabled() bool {
	return ge != nil && ge.enabled
}

// Update is called once per tick. The backdrop is static, so there is
// nothing to advance.
func (ge *GlassEffect) Update() {}

// ensureImages creates or resizes offscreen images as needed
func (ge *GlassEffect) ensureImages(w, h int) {
	if ge.tempH == nil || ge.tempH.Bounds().Dx() != w || ge.tempH.Bounds().Dy() != h {
		ge.tempH = ebiten.NewImage(w, h)
	}
	if ge.tempV == nil || ge.tempV.Bounds().Dx() != w || ge.tempV.Bounds().Dy() != h {
		ge.tempV = ebiten.NewImage(w, h)
	}
}

// DrawBackdrop blurs what is already on screen and darkens it by dim
// (0 to 1).
func (ge *GlassEffect) DrawBackdrop(screen *ebiten.Image, sigma, dim float64) {
	if !ge.IsEnabled() {
		vector.DrawFilledRect(screen, 0, 0, scaleF(ScreenWidth), scaleF(ScreenHeight), modalOverlay, false)
		return
	}

	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	ge.ensureImages(w, h)

	ge.tempH.Clear()
	ge.tempH.DrawImage(screen, nil)

	ge.tempV.Clear()
	ge.tempV.DrawRectShader(w, h, ge.blurH, &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{"Sigma": float32(sigma)},
		Images:   [4]*ebiten.Image{ge.tempH},
	})

	ge.tempH.Clear()
	ge.tempH.DrawRectShader(w, h, ge.blurV, &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{"Sigma": float32(sigma)},
		Images:   [4]*ebiten.Image{ge.tempV},
	})

	op := &ebiten.DrawImageOptions{}
	keep := float32(1 - dim)
	op.ColorScale.Scale(keep, keep, keep, 1)
	screen.DrawImage(ge.tempH, op)
}
