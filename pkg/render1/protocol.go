// Package render1 implements the render1 protocol: the server streams
// timeline snapshots over a WebSocket while the client drives the simulator
// with control messages.
package render1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

// Simulator is the server-side simulator driven by a Protocol.
type Simulator interface {
	Start(ctx context.Context) <-chan model.Snapshot
	Reset()
	SetNetworkPreset(id string) error
	SetCacheHit(hit bool)
	Snapshot() model.Snapshot
}

// Protocol is the implementation of the render1 protocol.
type Protocol struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// New returns a new Protocol for the given connection.
func New(conn *websocket.Conn) *Protocol {
	return &Protocol{conn: conn}
}

// Upgrade takes a HTTP request and upgrades the connection to WebSocket.
// Returns a websocket Conn if the upgrade succeeded, and an error otherwise.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	// We expect WebSocket's subprotocol to be render1's. The same subprotocol
	// is added as a header on the response.
	if r.Header.Get("Sec-WebSocket-Protocol") != spec.SecWebSocketProtocol {
		w.WriteHeader(http.StatusBadRequest)
		return nil, errors.New("missing Sec-WebSocket-Protocol header")
	}
	h := http.Header{}
	h.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	u := websocket.Upgrader{
		// Allow cross-origin resource sharing.
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	return u.Upgrade(w, r, h)
}

// SenderLoop starts the server side of the protocol. It sends the current
// snapshot of sim right away, then every frame of the current run, and
// applies control messages received from the client. The context's lifetime
// determines how long to run for. It returns a channel with the control
// messages received and a channel for errors. The control channel can be
// ignored, the errors channel MUST be drained by the caller.
func (p *Protocol) SenderLoop(ctx context.Context, sim Simulator) (<-chan model.ControlMessage, <-chan error) {
	// In no case this method will run for longer than spec.MaxRuntime.
	deadline := time.Now().Add(spec.MaxRuntime)
	p.conn.SetWriteDeadline(deadline)
	p.conn.SetReadDeadline(deadline)
	p.conn.SetReadLimit(spec.MaxMessageSize)

	controlIn := make(chan model.ControlMessage, 16)
	controlOut := make(chan model.ControlMessage, 100)
	errCh := make(chan error, 2)

	go p.controlReader(ctx, controlIn, errCh)
	go p.sender(ctx, sim, controlIn, controlOut, errCh)
	return controlOut, errCh
}

func (p *Protocol) controlReader(ctx context.Context, out chan<- model.ControlMessage,
	errCh chan<- error) {
	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			errCh <- err
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var m model.ControlMessage
		if err := json.Unmarshal(data, &m); err != nil {
			errCh <- err
			return
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Protocol) sender(ctx context.Context, sim Simulator, controlIn <-chan model.ControlMessage,
	controlOut chan<- model.ControlMessage, errCh chan<- error) {
	if err := p.SendSnapshot(sim.Snapshot()); err != nil {
		errCh <- err
		return
	}
	var frames <-chan model.Snapshot
	for {
		select {
		case <-ctx.Done():
			p.Close()
			return
		case snap, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			if err := p.SendSnapshot(snap); err != nil {
				errCh <- err
				return
			}
		case m := <-controlIn:
			switch m.Type {
			case model.ControlStart:
				frames = sim.Start(ctx)
			case model.ControlReset:
				sim.Reset()
				frames = nil
			case model.ControlConfig:
				if m.Preset != "" {
					if err := sim.SetNetworkPreset(m.Preset); err != nil {
						log.Info("invalid preset in control message", "error", err)
					}
				}
				if m.CacheHit != nil {
					sim.SetCacheHit(*m.CacheHit)
				}
			default:
				log.Debug("unknown control message", "type", m.Type)
				continue
			}
			// Start sends its own first frame.
			if m.Type != model.ControlStart {
				if err := p.SendSnapshot(sim.Snapshot()); err != nil {
					errCh <- err
					return
				}
			}
			// This send is non-blocking in case there is no one to read the
			// control messages and the channel's buffer is full.
			select {
			case controlOut <- m:
			default:
			}
		}
	}
}

// SendSnapshot writes snap as a JSON text message.
func (p *Protocol) SendSnapshot(snap model.Snapshot) error {
	return p.writeJSON(snap)
}

// SendControl writes a control message. It is used by clients.
func (p *Protocol) SendControl(m model.ControlMessage) error {
	return p.writeJSON(m)
}

func (p *Protocol) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, b)
}

// ReceiverLoop starts the client side of the protocol: it reads snapshots
// until the connection fails or is closed. It returns a channel of
// snapshots and a channel for errors, which MUST be drained by the caller.
// The snapshots channel is closed once ctx is done and a snapshot cannot
// be delivered.
func (p *Protocol) ReceiverLoop(ctx context.Context) (<-chan model.Snapshot, <-chan error) {
	deadline := time.Now().Add(spec.MaxRuntime)
	p.conn.SetReadDeadline(deadline)

	snapshots := make(chan model.Snapshot, spec.FrameBufferSize)
	errCh := make(chan error, 1)
	go func() {
		for {
			kind, data, err := p.conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			if kind != websocket.TextMessage {
				continue
			}
			var snap model.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				errCh <- err
				return
			}
			if ctx.Err() != nil {
				close(snapshots)
				return
			}
			select {
			case snapshots <- snap:
			case <-ctx.Done():
				close(snapshots)
				return
			}
		}
	}()
	return snapshots, errCh
}

// Close sends a normal closure message to the other party.
func (p *Protocol) Close() {
	msg := websocket.FormatCloseMessage(
		websocket.CloseNormalClosure, "Done")
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	err := p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err != nil {
		log.Debug("WriteControl failed", "error", err)
		return
	}
	log.Debug("Close message sent")
}
