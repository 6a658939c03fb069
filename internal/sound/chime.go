package sound

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"desktimer/internal/logfields"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// ErrAudioUnavailable indicates the speaker could not be initialised.
var ErrAudioUnavailable = errors.New("audio unavailable")

const sampleRate = beep.SampleRate(44100)

// Tone is one note of the chime.
type Tone struct {
	Frequency float64
	Length    time.Duration
	Gap       time.Duration
}

// DefaultChime is the two-note completion sound.
var DefaultChime = []Tone{
	{Frequency: 880, Length: 180 * time.Millisecond, Gap: 90 * time.Millisecond},
	{Frequency: 660, Length: 260 * time.Millisecond},
}

// Player plays synthesised chimes through the system speaker.
type Player struct {
	once    sync.Once
	initErr error
	tones   []Tone
	volume  float64
	logger  *slog.Logger
}

// NewPlayer creates a player. The speaker is opened on first use.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{tones: DefaultChime, volume: -1, logger: logger}
}

// Chime plays the completion sound without blocking.
func (player *Player) Chime() error {
	player.once.Do(func() {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
			player.initErr = err
			player.logger.Warn("Audio disabled: failed to initialize speaker", logfields.Error(err))
		}
	})
	if player.initErr != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, player.initErr)
	}

	speaker.Play(&effects.Volume{
		Streamer: Sequence(sampleRate, player.tones),
		Base:     2,
		Volume:   player.volume,
	})
	return nil
}

// Sequence renders tones back to back, each followed by its gap.
func Sequence(rate beep.SampleRate, tones []Tone) beep.Streamer {
	streamers := make([]beep.Streamer, 0, len(tones)*2)
	for _, tone := range tones {
		streamers = append(streamers, beep.Take(rate.N(tone.Length), sine(rate, tone.Frequency)))
		if tone.Gap > 0 {
			streamers = append(streamers, beep.Silence(rate.N(tone.Gap)))
		}
	}
	return beep.Seq(streamers...)
}

func sine(rate beep.SampleRate, frequency float64) beep.Streamer {
	step := 2 * math.Pi * frequency / float64(rate)
	phase := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			value := math.Sin(phase)
			samples[i][0] = value
			samples[i][1] = value
			phase += step
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
		return len(samples), true
	})
}
