// Package canbus packs vehicle state into a fixed CAN frame so bench
// hardware and loggers can follow a simulation.
package canbus

import (
	"errors"
	"fmt"
	"math"

	"go.einride.tech/can"

	"github.com/san-kum/longsim/internal/vehicle"
)

// FrameID is the arbitration ID of the VehicleDynamics frame.
const FrameID uint32 = 0x3E8

const frameLength = 8

var (
	ErrFrameID     = errors.New("canbus: unexpected frame id")
	ErrFrameLength = errors.New("canbus: short frame")
)

// Signal describes one field of the frame payload.
type Signal struct {
	Name      string
	StartBit  int
	BitLength int
	Signed    bool
	Factor    float64
	Wrap      bool
}

// Layout of the VehicleDynamics frame, little-endian.
var (
	Velocity     = Signal{Name: "velocity", StartBit: 0, BitLength: 16, Factor: 0.01}
	Acceleration = Signal{Name: "acceleration", StartBit: 16, BitLength: 16, Signed: true, Factor: 0.001}
	EngineSpeed  = Signal{Name: "engine_speed", StartBit: 32, BitLength: 16, Factor: 0.1}
	Position     = Signal{Name: "position", StartBit: 48, BitLength: 16, Factor: 1, Wrap: true}
)

// Signals is the physical content of a decoded frame.
type Signals struct {
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	EngineSpeed  float64 `json:"engine_speed"`
	Position     float64 `json:"position"`
}

// Encode packs s into a VehicleDynamics frame. Values outside a signal's
// range saturate, except position which wraps; NaN and an infinite position
// encode as zero.
func Encode(s vehicle.State) can.Frame {
	var payload uint64
	payload = Velocity.put(payload, s.V)
	payload = Acceleration.put(payload, s.A)
	payload = EngineSpeed.put(payload, s.W)
	payload = Position.put(payload, s.X)

	f := can.Frame{ID: FrameID, Length: frameLength}
	for i := 0; i < frameLength; i++ {
		f.Data[i] = byte(payload >> (8 * i))
	}
	return f
}

func Decode(f can.Frame) (Signals, error) {
	if f.ID != FrameID {
		return Signals{}, fmt.Errorf("%w: 0x%X", ErrFrameID, f.ID)
	}
	if f.Length < frameLength {
		return Signals{}, fmt.Errorf("%w: dlc %d", ErrFrameLength, f.Length)
	}

	var payload uint64
	for i := 0; i < frameLength; i++ {
		payload |= uint64(f.Data[i]) << (8 * i)
	}
	return Signals{
		Velocity:     Velocity.get(payload),
		Acceleration: Acceleration.get(payload),
		EngineSpeed:  EngineSpeed.get(payload),
		Position:     Position.get(payload),
	}, nil
}

func (sig Signal) put(payload uint64, v float64) uint64 {
	var raw int64
	switch {
	case math.IsNaN(v):
		raw = 0
	case sig.Wrap && math.IsInf(v, 0):
		// No position to wrap.
		raw = 0
	case sig.Wrap:
		raw = int64(math.Floor(math.Mod(v/sig.Factor, float64(uint64(1)<<sig.BitLength))))
	default:
		raw = clampRaw(v/sig.Factor, sig.BitLength, sig.Signed)
	}
	return setBits(payload, sig.StartBit, sig.BitLength, uint64(raw))
}

func (sig Signal) get(payload uint64) float64 {
	u := getBits(payload, sig.StartBit, sig.BitLength)
	raw := int64(u)
	if sig.Signed && u&(uint64(1)<<(sig.BitLength-1)) != 0 {
		raw -= int64(1) << sig.BitLength
	}
	return float64(raw) * sig.Factor
}

func getBits(payload uint64, startBit, bitLen int) uint64 {
	mask := uint64(1)<<bitLen - 1
	return (payload >> startBit) & mask
}

func setBits(payload uint64, startBit, bitLen int, value uint64) uint64 {
	mask := uint64(1)<<bitLen - 1
	payload &^= mask << startBit
	payload |= (value & mask) << startBit
	return payload
}

func clampRaw(scaled float64, bitLen int, signed bool) int64 {
	lo, hi := 0.0, float64(uint64(1)<<bitLen-1)
	if signed {
		lo = -float64(int64(1) << (bitLen - 1))
		hi = float64(int64(1)<<(bitLen-1) - 1)
	}
	r := math.Round(scaled)
	if r < lo {
		return int64(lo)
	}
	if r > hi {
		return int64(hi)
	}
	return int64(r)
}
