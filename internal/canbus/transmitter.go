package canbus

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/san-kum/longsim/internal/sim"
)

// FrameWriter sends one frame on a bus.
type FrameWriter interface {
	TransmitFrame(ctx context.Context, f can.Frame) error
}

// Transmitter is a sim.Observer that writes every sample as a
// VehicleDynamics frame. Send failures are logged and counted, never fatal
// to the run.
type Transmitter struct {
	ctx    context.Context
	tx     FrameWriter
	conn   net.Conn
	log    logrus.FieldLogger
	every  int
	sent   int
	failed int
}

// Dial opens a socketcan connection on iface (e.g. "vcan0").
func Dial(ctx context.Context, iface string, log logrus.FieldLogger) (*Transmitter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	t := NewTransmitter(ctx, socketcan.NewTransmitter(conn), log)
	t.conn = conn
	return t, nil
}

func NewTransmitter(ctx context.Context, tx FrameWriter, log logrus.FieldLogger) *Transmitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transmitter{ctx: ctx, tx: tx, log: log, every: 1}
}

// Decimate sends only every n-th sample.
func (t *Transmitter) Decimate(n int) *Transmitter {
	if n > 0 {
		t.every = n
	}
	return t
}

func (t *Transmitter) OnStep(s sim.Sample) {
	if s.Step%t.every != 0 {
		return
	}
	if err := t.tx.TransmitFrame(t.ctx, Encode(s.State)); err != nil {
		t.failed++
		if t.failed == 1 || t.failed%100 == 0 {
			t.log.WithFields(logrus.Fields{"step": s.Step, "failed": t.failed}).WithError(err).Warn("can transmit failed")
		}
		return
	}
	t.sent++
}

func (t *Transmitter) Sent() int   { return t.sent }
func (t *Transmitter) Failed() int { return t.failed }

func (t *Transmitter) Close() error {
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
