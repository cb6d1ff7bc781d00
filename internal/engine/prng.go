package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
)

// SeedFromString returns a 64-bit seed from an arbitrary string using SHA256.
func SeedFromString(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(h[:8])
}

// Derive returns a deterministic child seed based on a base seed and a label using HMAC-SHA256.
// Labels should be stable strings such as "advice" or "advice:campaign:dndCampaign".
func Derive(base uint64, label string) uint64 {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, base)
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(label))
	sum := m.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// SessionSeed is the textual seed of one editing session and the root of
// every random stream the session uses.
type SessionSeed struct {
	Text string
	root uint64
}

// NewSessionSeed creates a deterministic seed from text. Empty text is rejected.
func NewSessionSeed(text string) (SessionSeed, error) {
	if text == "" {
		return SessionSeed{}, errors.Wrap(ErrInvalidInput, "seed text must not be empty")
	}
	return SessionSeed{Text: text, root: SeedFromString(text)}, nil
}

// Stream returns a new deterministic RNG stream derived from the session root.
func (s SessionSeed) Stream(label string) *Stream {
	return newStream(Derive(s.root, label))
}

// SplitMix64 PRNG implementation for deterministic streams.
type SplitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *SplitMix64 { return &SplitMix64{state: seed} }

func (s *SplitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *SplitMix64) float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

// Stream provides deterministic random numbers with support for labelled child streams.
// It satisfies Roller.
type Stream struct {
	base uint64
	sm   *SplitMix64
}

func newStream(seed uint64) *Stream {
	return &Stream{base: seed, sm: newSplitMix64(seed)}
}

// Float64 returns a float in [0,1).
func (s *Stream) Float64() float64 { return s.sm.float64() }

// Child creates a stable sub-stream derived from this stream's base seed and label.
func (s *Stream) Child(label string) *Stream { return newStream(Derive(s.base, label)) }

// FixedRoller always returns the same value. Tests use it to force or
// suppress the optional advice.
type FixedRoller float64

// Float64 implements Roller.
func (f FixedRoller) Float64() float64 { return float64(f) }
