package activation

import (
	"encoding/binary"
	"math"

	"hotclip/internal/ports"
)

// EnergyGate is the default voice activity gate: a ring buffer of recent
// frames and their voiced decisions, triggering when most of the window is
// voiced and releasing after a window of trailing silence. The buffered
// frames are the onset audio; the detector prepends them to the utterance on
// speech start so the first spoken words survive the trigger delay. It stands
// in for an external VAD engine behind the same port.
type EnergyGate struct {
	threshold float64 // RMS amplitude over int16 samples
	window    int     // frames in the ring buffer
	ratio     float64 // voiced/unvoiced fraction needed to flip

	ring      []gateFrame
	ringPos   int
	ringFill  int
	triggered bool
}

type gateFrame struct {
	voiced bool
	pcm    []byte
}

// NewEnergyGate builds a gate. window is the padding window in frames
// (e.g. 300ms / 30ms = 10). Zero values pick defaults.
func NewEnergyGate(threshold float64, window int, ratio float64) *EnergyGate {
	if threshold <= 0 {
		threshold = 500
	}
	if window <= 0 {
		window = 10
	}
	if ratio <= 0 || ratio > 1 {
		ratio = 0.8
	}
	return &EnergyGate{
		threshold: threshold,
		window:    window,
		ratio:     ratio,
		ring:      make([]gateFrame, window),
	}
}

// Process consumes one 16-bit PCM frame and reports whether a speech
// boundary was crossed.
func (g *EnergyGate) Process(frame []byte) ports.Boundary {
	g.push(rms(frame) > g.threshold, frame)

	voiced := g.count(true)
	unvoiced := g.count(false)
	need := int(math.Ceil(g.ratio * float64(g.ringFill)))

	if !g.triggered {
		if g.ringFill == g.window && voiced >= need {
			g.triggered = true
			return ports.BoundarySpeechStart
		}
		return ports.BoundaryNone
	}

	if g.ringFill == g.window && unvoiced >= need {
		g.triggered = false
		g.clear()
		return ports.BoundarySpeechEnd
	}
	return ports.BoundaryNone
}

// Window returns the buffered frames, oldest first. On a SpeechStart
// decision this is the onset audio, including the frame that crossed the
// boundary.
func (g *EnergyGate) Window() [][]byte {
	out := make([][]byte, 0, g.ringFill)
	start := 0
	if g.ringFill == g.window {
		start = g.ringPos
	}
	for i := 0; i < g.ringFill; i++ {
		out = append(out, g.ring[(start+i)%g.window].pcm)
	}
	return out
}

// Reset returns the gate to its resting state.
func (g *EnergyGate) Reset() {
	g.triggered = false
	g.clear()
}

func (g *EnergyGate) push(voiced bool, frame []byte) {
	slot := &g.ring[g.ringPos]
	slot.voiced = voiced
	slot.pcm = append(slot.pcm[:0], frame...)
	g.ringPos = (g.ringPos + 1) % g.window
	if g.ringFill < g.window {
		g.ringFill++
	}
}

func (g *EnergyGate) count(voiced bool) int {
	n := 0
	for i := 0; i < g.ringFill; i++ {
		if g.ring[i].voiced == voiced {
			n++
		}
	}
	return n
}

func (g *EnergyGate) clear() {
	for i := range g.ring {
		g.ring[i] = gateFrame{}
	}
	g.ringPos = 0
	g.ringFill = 0
}

var _ ports.VoiceGate = (*EnergyGate)(nil)

func rms(frame []byte) float64 {
	if len(frame) < 2 {
		return 0
	}
	var sum float64
	n := len(frame) / 2
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(n))
}
