package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// === MRG32k3a constants ===

// Combined multiple recursive generator MRG32k3a (L'Ecuyer), the backbone
// of the RngStreams design: each stream owns a six-word state, streams are
// spaced 2^127 steps apart and substreams 2^76 steps apart via the
// precomputed transition matrices below.
const (
	rngM1   = 4294967087
	rngM2   = 4294944443
	rngA12  = 1403580
	rngA13n = 810728
	rngA21  = 527612
	rngA23n = 1370589
	rngNorm = 2.328306549295727688e-10 // 1 / (m1 + 1)
)

// Transition matrices A1^(2^76) mod m1 and A2^(2^76) mod m2 (substream
// spacing), and A1^(2^127), A2^(2^127) (stream spacing).
var (
	a1p76 = [3][3]uint64{
		{82758667, 1871391091, 4127413238},
		{3672831523, 69195019, 1871391091},
		{3672091415, 3528743235, 69195019},
	}
	a2p76 = [3][3]uint64{
		{1511326704, 3759209742, 1610795712},
		{4292754251, 1511326704, 3889917532},
		{3859662829, 4292754251, 3708466080},
	}
	a1p127 = [3][3]uint64{
		{2427906178, 3580155704, 949770784},
		{226153695, 1230515664, 3580155704},
		{1988835001, 986791581, 1230515664},
	}
	a2p127 = [3][3]uint64{
		{1464411153, 277697599, 1610723613},
		{32183930, 1464411153, 1022607788},
		{2824425944, 32183930, 2093834863},
	}
)

// mulModM computes a*b mod m. Both operands are below 2^32, so the raw
// product fits in a uint64.
func mulModM(a, b, m uint64) uint64 {
	return a * b % m
}

// matVecModM computes A v mod m componentwise, reducing each product
// before summing so intermediate sums stay below 2^34.
func matVecModM(a [3][3]uint64, v [3]uint64, m uint64) [3]uint64 {
	var out [3]uint64
	for i := 0; i < 3; i++ {
		s := mulModM(a[i][0], v[0], m)
		s = (s + mulModM(a[i][1], v[1], m)) % m
		s = (s + mulModM(a[i][2], v[2], m)) % m
		out[i] = s
	}
	return out
}

// === Stream ===

// Stream is one independent RngStreams generator. Ig is the stream's
// initial state, Bg the start of the current substream and Cg the working
// state. A stream draws only when it is the manager's current stream.
type Stream struct {
	name string
	mgr  *RngManager
	cg   [6]uint64
	bg   [6]uint64
	ig   [6]uint64
}

// Name returns the stream's name as given to RngManager.New.
func (s *Stream) Name() string { return s.name }

// Set designates this stream as the active source: subsequent draws on the
// owning manager read from this stream's state. Calling Set is the only
// way to switch the active source.
func (s *Stream) Set() {
	s.mgr.current = s
}

// ResetStream rewinds to the start of the entire stream.
func (s *Stream) ResetStream() {
	s.cg = s.ig
	s.bg = s.ig
}

// ResetSubstream rewinds to the start of the current substream.
func (s *Stream) ResetSubstream() {
	s.cg = s.bg
}

// NextSubstream advances deterministically to the start of the next
// substream, 2^76 steps ahead, so independent individuals see
// non-overlapping subsequences.
func (s *Stream) NextSubstream() {
	var v1, v2 [3]uint64
	copy(v1[:], s.bg[0:3])
	copy(v2[:], s.bg[3:6])
	v1 = matVecModM(a1p76, v1, rngM1)
	v2 = matVecModM(a2p76, v2, rngM2)
	copy(s.bg[0:3], v1[:])
	copy(s.bg[3:6], v2[:])
	s.cg = s.bg
}

// RandU01 returns the next uniform in (0, 1) from this stream.
func (s *Stream) RandU01() float64 {
	p1 := (mulModM(rngA12, s.cg[1], rngM1) + mulModM(rngM1-rngA13n, s.cg[0], rngM1)) % rngM1
	s.cg[0], s.cg[1], s.cg[2] = s.cg[1], s.cg[2], p1

	p2 := (mulModM(rngA21, s.cg[5], rngM2) + mulModM(rngM2-rngA23n, s.cg[3], rngM2)) % rngM2
	s.cg[3], s.cg[4], s.cg[5] = s.cg[4], s.cg[5], p2

	if p1 > p2 {
		return float64(p1-p2) * rngNorm
	}
	return float64(p1-p2+rngM1) * rngNorm
}

// RandInt returns a uniform integer in [i, j].
func (s *Stream) RandInt(i, j int) int {
	return i + int(s.RandU01()*float64(j-i+1))
}

// === RngManager ===

// defaultPackageSeed is the canonical RngStreams default.
var defaultPackageSeed = [6]uint64{12345, 12345, 12345, 12345, 12345, 12345}

// RngManager allocates named independent streams from a package seed and
// tracks the process-wide current stream that draw helpers read from.
// Drawing before any Set reads whichever stream was created first —
// defined but almost certainly wrong, so models Set explicitly before
// every block of draws.
type RngManager struct {
	nextSeed [6]uint64
	current  *Stream
	streams  map[string]*Stream
}

// NewRngManager returns a manager seeded with the package default.
func NewRngManager() *RngManager {
	return &RngManager{nextSeed: defaultPackageSeed, streams: make(map[string]*Stream)}
}

// SetPackageSeed replaces the package seed. The first three words must be
// below m1, the last three below m2, and neither triple may be all zero.
// Streams created afterwards start from the new seed; existing streams are
// unaffected.
func (m *RngManager) SetPackageSeed(seed [6]uint64) error {
	if seed[0] == 0 && seed[1] == 0 && seed[2] == 0 {
		return fmt.Errorf("rng: first three seed words are all zero")
	}
	if seed[3] == 0 && seed[4] == 0 && seed[5] == 0 {
		return fmt.Errorf("rng: last three seed words are all zero")
	}
	for i := 0; i < 3; i++ {
		if seed[i] >= rngM1 {
			return fmt.Errorf("rng: seed[%d] = %d out of range (max %d)", i, seed[i], rngM1-1)
		}
	}
	for i := 3; i < 6; i++ {
		if seed[i] >= rngM2 {
			return fmt.Errorf("rng: seed[%d] = %d out of range (max %d)", i, seed[i], rngM2-1)
		}
	}
	m.nextSeed = seed
	return nil
}

// New allocates the next stream, 2^127 steps beyond the previous one.
// Streams created from the same package seed in the same order always
// carry the same states, regardless of how draws interleave.
func (m *RngManager) New(name string) *Stream {
	s := &Stream{name: name, mgr: m, ig: m.nextSeed}
	s.bg = s.ig
	s.cg = s.ig

	var v1, v2 [3]uint64
	copy(v1[:], m.nextSeed[0:3])
	copy(v2[:], m.nextSeed[3:6])
	v1 = matVecModM(a1p127, v1, rngM1)
	v2 = matVecModM(a2p127, v2, rngM2)
	copy(m.nextSeed[0:3], v1[:])
	copy(m.nextSeed[3:6], v2[:])

	if m.current == nil {
		m.current = s
	}
	m.streams[name] = s
	return s
}

// Stream returns a previously created stream by name, or nil.
func (m *RngManager) Stream(name string) *Stream {
	return m.streams[name]
}

// Current returns the active stream.
func (m *RngManager) Current() *Stream {
	if m.current == nil {
		logrus.Panicf("rng: draw before any stream was created")
	}
	return m.current
}
