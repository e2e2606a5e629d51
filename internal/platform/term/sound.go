package term

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Tone plays short chimes through the default audio device.
type Tone struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	closed bool
}

// NewTone opens the speaker. It fails when no audio device is available.
func NewTone() (*Tone, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	t := &Tone{mixer: &beep.Mixer{}}
	speaker.Play(t.mixer)
	return t, nil
}

// toneFor picks the pitch and length of the chime for a clear of n lines.
// A four-line clear gets the longest, highest note.
func toneFor(lines int) (freq float64, d time.Duration) {
	switch {
	case lines >= 4:
		return 880, 240 * time.Millisecond
	case lines == 3:
		return 659.25, 160 * time.Millisecond
	case lines == 2:
		return 554.37, 120 * time.Millisecond
	default:
		return 440, 90 * time.Millisecond
	}
}

// chime is a sine wave with a linear fade-out over d.
func chime(freq float64, d time.Duration) beep.Streamer {
	total := sampleRate.N(d)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			fade := 1 - float64(pos)/float64(total)
			v := 0.3 * fade * math.Sin(2*math.Pi*freq*float64(pos)/float64(sampleRate))
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

// Play queues the chime for a clear of lines rows.
func (t *Tone) Play(lines int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || lines <= 0 {
		return
	}
	freq, d := toneFor(lines)
	speaker.Lock()
	t.mixer.Add(chime(freq, d))
	speaker.Unlock()
}

// Close stops playback and releases the device.
func (t *Tone) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	speaker.Clear()
	speaker.Close()
}
