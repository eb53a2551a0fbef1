// Package stream publishes simulation samples to WebSocket clients.
package stream

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/longsim/internal/sim"
)

// Message is the wire form of one sample.
type Message struct {
	Step     int     `json:"step"`
	T        float64 `json:"t"`
	X        float64 `json:"x"`
	V        float64 `json:"v"`
	A        float64 `json:"a"`
	W        float64 `json:"w"`
	WDot     float64 `json:"wdot"`
	Throttle float64 `json:"throttle"`
	Incline  float64 `json:"incline"`
}

func NewMessage(s sim.Sample) Message {
	return Message{
		Step:     s.Step,
		T:        s.T,
		X:        s.State.X,
		V:        s.State.V,
		A:        s.State.A,
		W:        s.State.W,
		WDot:     s.State.WDot,
		Throttle: s.Throttle,
		Incline:  s.Incline,
	}
}

// Hub owns the client set. All membership changes and broadcasts go
// through Run's goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.WithField("clients", len(h.clients)).Debug("client connected")
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("dropping slow client")
					h.drop(c)
				}
			}
		case <-h.done:
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() { close(h.done) }

// Broadcast queues msg for every client. It never blocks the caller; when
// the hub is backed up the message is discarded.
func (h *Hub) Broadcast(msg []byte) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		return false
	}
}

// Publish encodes s and broadcasts it.
func (h *Hub) Publish(s sim.Sample) error {
	b, err := json.Marshal(NewMessage(s))
	if err != nil {
		return err
	}
	h.Broadcast(b)
	return nil
}

// Observer returns a sim.Observer that publishes every sample.
func (h *Hub) Observer() sim.Observer {
	return sim.ObserverFunc(func(s sim.Sample) {
		if err := h.Publish(s); err != nil {
			h.log.WithError(err).WithField("step", s.Step).Warn("stream publish failed")
		}
	})
}
