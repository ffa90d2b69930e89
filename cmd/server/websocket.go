package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/miretskiy/ossim/simulator"
)

const writeWait = 5 * time.Second

// ClientMessage is a command sent by the browser
type ClientMessage struct {
	Type    string          `json:"type"`              // simulate, play, pause, next, previous, reset, state
	Request json.RawMessage `json:"request,omitempty"` // For simulate, same shape as POST /api/simulate
	SpeedMs int             `json:"speedMs,omitempty"` // For play; 0 keeps the current speed
}

// ServerMessage is pushed to the browser
type ServerMessage struct {
	Type    string                   `json:"type"` // status, trace, state, error
	Run     *simulator.Run           `json:"run,omitempty"`
	Steps   []stepView               `json:"steps,omitempty"`
	State   *simulator.PlaybackState `json:"state,omitempty"`
	Message string                   `json:"message,omitempty"`
}

// stepView tags a trace step with its kind so the client can pick a renderer
type stepView struct {
	Kind  string         `json:"kind"`
	Label string         `json:"label"`
	Step  simulator.Step `json:"step"`
}

func stepViews(trace simulator.Trace) []stepView {
	views := make([]stepView, trace.Len())
	for i, step := range trace {
		views[i] = stepView{Kind: step.Kind().String(), Label: step.String(), Step: step}
	}
	return views
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	_ = sc.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sc.Conn.WriteJSON(v)
}

// handleWebSocket runs one playback session. Each connection owns its own
// controller; the timer lives inside the controller and pushes state
// snapshots through OnChange.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sc := &safeConn{Conn: conn}
	log := s.logger.With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")

	promMetrics.activeSessions.Inc()
	defer promMetrics.activeSessions.Dec()

	ctrl := simulator.NewController(s.cfg.DefaultStepIntervalMs)
	ctrl.OnChange = func(state simulator.PlaybackState) {
		if err := sc.WriteJSON(ServerMessage{Type: "state", State: &state}); err != nil {
			log.Debug().Err(err).Msg("failed to push state")
		}
	}
	defer ctrl.Close()

	initial := ctrl.State()
	if err := sc.WriteJSON(ServerMessage{Type: "status", State: &initial}); err != nil {
		log.Warn().Err(err).Msg("failed to send status")
		return
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("error reading message")
			}
			break
		}
		log.Debug().Str("command", msg.Type).Msg("received command")
		promMetrics.playbackCommands.WithLabelValues(msg.Type).Inc()

		if err := s.dispatch(r, sc, ctrl, msg); err != nil {
			if werr := sc.WriteJSON(ServerMessage{Type: "error", Message: err.Error()}); werr != nil {
				break
			}
		}
	}

	log.Info().Msg("client disconnected")
}

// dispatch applies one client command. State changes reach the client
// through the controller's OnChange.
func (s *server) dispatch(r *http.Request, sc *safeConn, ctrl *simulator.Controller, msg ClientMessage) error {
	switch msg.Type {
	case "simulate":
		if len(msg.Request) == 0 {
			return simulator.ErrInvalidInput("simulate needs a request")
		}
		req := s.newRequest()
		if err := json.Unmarshal(msg.Request, &req); err != nil {
			return simulator.ErrInvalidInput("invalid request: " + err.Error())
		}
		run, err := s.execute(r.Context(), req)
		if err != nil {
			return err
		}
		if err := sc.WriteJSON(ServerMessage{Type: "trace", Run: run, Steps: stepViews(run.Trace())}); err != nil {
			return err
		}
		ctrl.Load(run.Trace())

	case "play":
		speed := msg.SpeedMs
		if speed == 0 {
			speed = ctrl.State().StepIntervalMs
		}
		if _, err := ctrl.Play(speed); err != nil {
			return err
		}

	case "pause":
		ctrl.Pause()

	case "next":
		ctrl.Next()

	case "previous":
		ctrl.Previous()

	case "reset":
		ctrl.Reset()

	case "state":
		state := ctrl.State()
		return sc.WriteJSON(ServerMessage{Type: "state", State: &state})

	default:
		return simulator.ErrInvalidInput("unknown command " + msg.Type)
	}
	return nil
}
