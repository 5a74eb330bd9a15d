package hardware

import (
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/greenshed/plantnode/internal/logging"
	"go.uber.org/zap"
)

// IRSink transmits a single-byte command code over infrared to the LED
// strip controller. Transmission is fire-and-forget: the controller never
// acknowledges, so a nil return only means the code left this node.
type IRSink interface {
	Send(code byte) error
}

// MoistureSensor reads the analog soil moisture input. Readings are raw
// ADC counts in [0, 1023].
type MoistureSensor interface {
	Read() (int, error)
}

// StatusLED drives the activity indicator LED.
type StatusLED interface {
	Set(on bool) error
}

// Bench bundles the hardware collaborators a node needs.
type Bench struct {
	IR       IRSink
	Moisture MoistureSensor
	Status   StatusLED
}

// NewSimBench returns a bench backed entirely by simulated hardware.
// Used for development hosts and tests.
func NewSimBench() *Bench {
	return &Bench{
		IR:       &SimIRSink{},
		Moisture: &SimMoistureSensor{Base: 512, Jitter: 40},
		Status:   &SimStatusLED{},
	}
}

// NewFIFOBench returns a bench whose IR sink writes codes to a FIFO or
// character device consumed by an external transmitter process, with
// simulated sensor and LED. sinkPath is typically a named pipe such as
// /run/plantnode/ir.
func NewFIFOBench(sinkPath string) *Bench {
	return &Bench{
		IR:       &FIFOIRSink{Path: sinkPath},
		Moisture: &SimMoistureSensor{Base: 512, Jitter: 40},
		Status:   &SimStatusLED{},
	}
}

// SimIRSink records transmitted codes and logs them. Safe for concurrent use.
type SimIRSink struct {
	mu    sync.Mutex
	codes []byte
}

func (s *SimIRSink) Send(code byte) error {
	s.mu.Lock()
	s.codes = append(s.codes, code)
	s.mu.Unlock()
	logging.Debug("sim IR transmit", zap.String("code", fmt.Sprintf("0x%02x", code)))
	return nil
}

// Sent returns a copy of every code transmitted so far.
func (s *SimIRSink) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.codes))
	copy(out, s.codes)
	return out
}

// SimMoistureSensor produces readings around Base with uniform Jitter,
// clamped to the ADC range.
type SimMoistureSensor struct {
	Base   int
	Jitter int
}

func (s *SimMoistureSensor) Read() (int, error) {
	v := s.Base
	if s.Jitter > 0 {
		v += rand.Intn(2*s.Jitter+1) - s.Jitter
	}
	if v < 0 {
		v = 0
	}
	if v > 1023 {
		v = 1023
	}
	return v, nil
}

// SimStatusLED tracks the last commanded state.
type SimStatusLED struct {
	mu sync.Mutex
	on bool
}

func (s *SimStatusLED) Set(on bool) error {
	s.mu.Lock()
	s.on = on
	s.mu.Unlock()
	return nil
}

func (s *SimStatusLED) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// FIFOIRSink writes each code as a decimal line to a FIFO or device file.
// An external transmitter daemon (e.g. one driving a GPIO IR LED) reads
// the other end.
type FIFOIRSink struct {
	Path string
}

func (f *FIFOIRSink) Send(code byte) error {
	fh, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("failed to open IR sink %s: %w", f.Path, err)
	}
	defer fh.Close()

	if _, err := fmt.Fprintf(fh, "%d\n", code); err != nil {
		return fmt.Errorf("failed to write IR code: %w", err)
	}
	return nil
}
