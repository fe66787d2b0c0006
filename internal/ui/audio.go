package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
)

const sampleRate = 44100

type cueKind int

const (
	cueStep cueKind = iota
	cueStrike
	cueMerge
	cueSplit
	cueTurn
	cueReject
	cueVictory
)

// Cue is one sound effect. Rank and Hits shape the notes, Side picks the
// player's register.
type Cue struct {
	Kind cueKind
	Rank int
	Hits int
	Side board.Color
}

// CueFor maps an engine event to its sound.
func CueFor(ev engine.Event) (Cue, bool) {
	switch ev.Kind {
	case engine.EventMove:
		return Cue{Kind: cueStep, Rank: ev.Rank, Hits: len(ev.Captured)}, true
	case engine.EventAttack:
		c := Cue{Kind: cueStrike, Rank: ev.Rank}
		if ev.Killed {
			c.Hits = 1
		}
		return c, true
	case engine.EventPromote:
		return Cue{Kind: cueMerge, Rank: ev.Rank}, true
	case engine.EventDemote:
		return Cue{Kind: cueSplit, Rank: ev.Rank}, true
	case engine.EventEndTurn:
		return Cue{Kind: cueTurn, Side: ev.Player.Other()}, true
	case engine.EventRejected:
		return Cue{Kind: cueReject}, true
	case engine.EventGameOver:
		return Cue{Kind: cueVictory, Side: ev.Winner}, true
	}
	return Cue{}, false
}

// rankScale spreads the five ranks over a major pentatonic scale.
var rankScale = [board.MaxRank]float64{1, 9.0 / 8, 5.0 / 4, 3.0 / 2, 5.0 / 3}

func rankPitch(rank int) float64 {
	rank = min(max(rank, board.MinRank), board.MaxRank)
	return 330 * rankScale[rank-1]
}

type timbre int

const (
	timbreKnock timbre = iota // wooden, fast decay
	timbreBell                // soft attack, long ring
	timbreBuzz                // rough, linear fade
)

// note is one voice starting at offset seconds into the cue.
type note struct {
	offset float64
	pitch  float64
	length float64
	gain   float64
	timbre timbre
}

func (n note) sample(t float64) float64 {
	progress := t / n.length
	w := 2 * math.Pi * n.pitch * t
	switch n.timbre {
	case timbreBell:
		env := math.Exp(-t * 6)
		if progress < 0.1 {
			env *= progress / 0.1
		}
		return (math.Sin(w) + 0.25*math.Sin(2*w)) * env * n.gain
	case timbreBuzz:
		return (math.Sin(w) + 0.3*math.Sin(2*w)) * (1 - progress) * n.gain
	default:
		return (math.Sin(w) + 0.4*math.Sin(2.7*w)) * math.Exp(-t*30) * n.gain
	}
}

// score lays out the notes for c.
func score(c Cue) []note {
	switch c.Kind {
	case cueStep:
		ns := []note{{pitch: rankPitch(c.Rank) * 4 / 3, length: 0.08, gain: 0.3}}
		for i := 1; i <= c.Hits; i++ {
			ns = append(ns, note{offset: 0.07 * float64(i), pitch: 330 - 40*float64(i), length: 0.12, gain: 0.45})
		}
		return ns
	case cueStrike:
		ns := []note{{pitch: rankPitch(c.Rank) * 2 / 3, length: 0.1, gain: 0.45}}
		if c.Hits > 0 {
			ns = append(ns, note{offset: 0.08, pitch: 165, length: 0.2, gain: 0.3, timbre: timbreBell})
		}
		return ns
	case cueMerge:
		var ns []note
		for r := board.MinRank; r <= min(max(c.Rank, board.MinRank), board.MaxRank); r++ {
			ns = append(ns, note{offset: 0.05 * float64(r-1), pitch: 2 * rankPitch(r), length: 0.15, gain: 0.3, timbre: timbreBell})
		}
		return ns
	case cueSplit:
		return []note{
			{pitch: rankPitch(c.Rank + 1), length: 0.06, gain: 0.3},
			{offset: 0.11, pitch: rankPitch(board.MinRank) * 1.1, length: 0.06, gain: 0.24},
		}
	case cueTurn:
		pitch := 880.0
		if c.Side == board.Blue {
			pitch = 660
		}
		return []note{{pitch: pitch, length: 0.1, gain: 0.2, timbre: timbreBell}}
	case cueReject:
		return []note{{pitch: 150, length: 0.1, gain: 0.15, timbre: timbreBuzz}}
	case cueVictory:
		root := 261.63
		if c.Side == board.Blue {
			root = 220
		}
		var ns []note
		for _, ratio := range []float64{1, 5.0 / 4, 3.0 / 2} {
			ns = append(ns, note{pitch: root * ratio, length: 0.4, gain: 0.5 / 3, timbre: timbreBell})
		}
		return ns
	}
	return nil
}

// mix renders notes as 16-bit little-endian stereo PCM.
func mix(notes []note) []byte {
	end := 0.0
	for _, n := range notes {
		end = max(end, n.offset+n.length)
	}
	buf := make([]float64, int(end*sampleRate))
	for _, n := range notes {
		start := int(n.offset * sampleRate)
		count := int(n.length * sampleRate)
		for i := 0; i < count && start+i < len(buf); i++ {
			buf[start+i] += n.sample(float64(i) / sampleRate)
		}
	}

	data := make([]byte, len(buf)*4)
	for i, s := range buf {
		v := int16(math.Max(-1, math.Min(1, s)) * 32767)
		data[i*4] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v)
		data[i*4+3] = byte(v >> 8)
	}
	return data
}

// AudioManager plays cues, rendering each distinct one on first use.
type AudioManager struct {
	context *audio.Context
	cache   map[Cue][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates a new audio manager.
func NewAudioManager(enabled bool) *AudioManager {
	return &AudioManager{
		context: audio.NewContext(sampleRate),
		cache:   make(map[Cue][]byte),
		enabled: enabled,
		volume:  0.5,
	}
}

// Play plays c. Each call gets its own player so sounds can overlap.
func (am *AudioManager) Play(c Cue) {
	if !am.enabled {
		return
	}
	data, ok := am.cache[c]
	if !ok {
		data = mix(score(c))
		am.cache[c] = data
	}
	if len(data) == 0 {
		return
	}
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}
