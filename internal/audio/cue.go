package audio

import (
	"math"

	"go.uber.org/zap"

	"github.com/dmorenov/cajadesk/pkg/logger"
)

const (
	sampleRate    = 44100
	cueDuration   = 0.25 // seconds
	decayPerSec   = 18.0 // exponential amplitude decay, keeps the tail click-free
	peakAmplitude = 0.6
)

// Player emits synthesized 16-bit mono PCM. Environments without audio
// capability use NopPlayer.
type Player interface {
	Play(sampleRate int, pcm []int16) error
}

// NopPlayer discards every cue.
type NopPlayer struct{}

// Play implements Player.
func (NopPlayer) Play(int, []int16) error { return nil }

// CueGenerator synthesizes short category-distinguishing tones without any
// audio asset files.
type CueGenerator struct {
	player Player
	log    *zap.Logger
}

// NewCueGenerator constructs a generator. A nil player falls back to NopPlayer.
func NewCueGenerator(player Player) *CueGenerator {
	if player == nil {
		player = NopPlayer{}
	}
	return &CueGenerator{
		player: player,
		log:    logger.WithComponent("audio"),
	}
}

// Pitch of each cue kind, in Hz. Notification categories and event domains
// share one table so every kind stays audibly distinguishable.
var pitches = map[string]float64{
	"info":     523.25, // C5
	"success":  659.25, // E5
	"warning":  440.00, // A4
	"error":    311.13, // Eb4
	"request":  587.33, // D5
	"approval": 783.99, // G5

	"notification": 523.25,
	"user":         493.88, // B4
	"printer":      415.30, // Ab4
	"system":       349.23, // F4
}

// Cue synthesizes and plays the tone for the named kind. Synthesis or
// playback failure is swallowed: audio is a non-critical capability and must
// never surface as a user-visible error.
func (g *CueGenerator) Cue(kind string) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Debug("audio cue panicked", zap.Any("panic", r))
		}
	}()

	pcm := Synthesize(pitchFor(kind))
	if err := g.player.Play(sampleRate, pcm); err != nil {
		g.log.Debug("audio cue playback failed", zap.String("kind", kind), zap.Error(err))
	}
}

// Synthesize renders a ~250ms sine tone at the given frequency with a fast
// exponential amplitude decay.
func Synthesize(freq float64) []int16 {
	samples := int(cueDuration * sampleRate)
	pcm := make([]int16, samples)
	for i := range pcm {
		t := float64(i) / sampleRate
		envelope := peakAmplitude * math.Exp(-decayPerSec*t)
		pcm[i] = int16(envelope * math.Sin(2*math.Pi*freq*t) * math.MaxInt16)
	}
	return pcm
}

func pitchFor(kind string) float64 {
	if freq, ok := pitches[kind]; ok {
		return freq
	}
	return pitches["info"]
}
