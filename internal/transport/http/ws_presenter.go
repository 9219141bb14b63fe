package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/domain"
)

const sendBuffer = 32

// Dispatcher receives participant commands coming from a browser.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type lifecyclePayload struct {
	Event string `json:"event"`
}

type waitingPayload struct {
	Code string `json:"code"`
	domain.Participant
}

type textPayload struct {
	Message string `json:"message"`
}

type countdownPayload struct {
	Remaining string `json:"remaining"`
}

type directivePayload struct {
	Event string `json:"event"`
	domain.Directive
}

type client struct {
	send chan outboundMessage[any]
}

// WebUI renders the attempt to websocket clients and relays their input back.
// Presenter methods never block: frames go to each client's buffered send channel
// and a client that cannot keep up loses the frame.
type WebUI struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu         sync.Mutex
	clients    map[*client]struct{}
	screen     *outboundMessage[any]
	countdown  *outboundMessage[any]
	handlers   map[int]app.LifecycleHandler
	nextID     int
	dispatcher Dispatcher
}

func NewWebUI(logger *slog.Logger) *WebUI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WebUI{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:      logger,
		clients:  make(map[*client]struct{}),
		handlers: make(map[int]app.LifecycleHandler),
	}
}

// Bind sets where inbound commands go. It is called once the attempt exists.
func (u *WebUI) Bind(d Dispatcher) {
	u.mu.Lock()
	u.dispatcher = d
	u.mu.Unlock()
}

// Handler serves the websocket endpoint and a health check.
func (u *WebUI) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", u.ServeWS)
	return mux
}

// Subscribe implements app.LifecycleSource for lifecycle frames sent by browsers.
func (u *WebUI) Subscribe(handler app.LifecycleHandler) func() {
	u.mu.Lock()
	id := u.nextID
	u.nextID++
	u.handlers[id] = handler
	u.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			u.mu.Lock()
			delete(u.handlers, id)
			u.mu.Unlock()
		})
	}
}

func (u *WebUI) ShowWaiting(code string, participant domain.Participant) {
	u.setScreen("waiting", waitingPayload{Code: code, Participant: participant})
}

func (u *WebUI) RenderQuestion(view domain.QuestionView) {
	u.setScreen("question", view)
}

func (u *WebUI) RenderCountdown(remaining string) {
	msg := outboundMessage[any]{Type: "countdown", Payload: countdownPayload{Remaining: remaining}}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.countdown = &msg
	u.broadcastLocked(msg)
}

func (u *WebUI) ShowWarning(message string) {
	u.broadcast("warning", textPayload{Message: message})
}

func (u *WebUI) ShowConfirm(prompt string) {
	u.setScreen("confirm", textPayload{Message: prompt})
}

func (u *WebUI) ShowLoading(message string) {
	u.broadcast("loading", textPayload{Message: message})
}

func (u *WebUI) HideLoading() {
	u.broadcast("loading", textPayload{})
}

func (u *WebUI) ShowSubmitError(message string) {
	u.setScreen("submitError", textPayload{Message: message})
}

func (u *WebUI) ShowCompleted() {
	u.setScreen("completed", textPayload{Message: "Quiz submitted successfully"})
}

// setScreen broadcasts a frame and remembers it for clients that connect later.
func (u *WebUI) setScreen(typ string, payload any) {
	msg := outboundMessage[any]{Type: typ, Payload: payload}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.screen = &msg
	u.broadcastLocked(msg)
}

func (u *WebUI) broadcast(typ string, payload any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.broadcastLocked(outboundMessage[any]{Type: typ, Payload: payload})
}

func (u *WebUI) broadcastLocked(msg outboundMessage[any]) {
	for c := range u.clients {
		select {
		case c.send <- msg:
		default:
			u.log.Warn("ws client too slow, dropping frame", "type", msg.Type)
		}
	}
}

// ServeWS upgrades the request and pumps frames in both directions until the socket closes.
func (u *WebUI) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &client{send: make(chan outboundMessage[any], sendBuffer)}
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				u.log.Debug("ws write error", "err", err)
				return
			}
		}
	}()

	u.mu.Lock()
	if u.screen != nil {
		c.send <- *u.screen
	}
	if u.countdown != nil {
		c.send <- *u.countdown
	}
	u.clients[c] = struct{}{}
	u.mu.Unlock()

	// Commands are not tied to the socket: a reload must not abort a submit in flight.
	ctx := context.WithoutCancel(r.Context())
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if reply, ok := u.handleInbound(ctx, inbound); ok {
			u.sendTo(c, reply)
		}
	}

	u.mu.Lock()
	delete(u.clients, c)
	close(c.send)
	u.mu.Unlock()
	<-writerDone
}

func (u *WebUI) handleInbound(ctx context.Context, inbound inboundMessage) (outboundMessage[any], bool) {
	switch inbound.Type {
	case "command":
		var cmd domain.Command
		if err := json.Unmarshal(inbound.Payload, &cmd); err != nil {
			return errorFrame("invalid command payload"), true
		}
		u.mu.Lock()
		d := u.dispatcher
		u.mu.Unlock()
		if d == nil {
			return errorFrame("attempt not ready"), true
		}
		if err := d.Dispatch(ctx, cmd); err != nil {
			return errorFrame(err.Error()), true
		}
		return outboundMessage[any]{}, false
	case "lifecycle":
		var payload lifecyclePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorFrame("invalid lifecycle payload"), true
		}
		ev, ok := domain.ParseLifecycleEvent(payload.Event)
		if !ok {
			return errorFrame("unknown lifecycle event"), true
		}
		directive := u.emit(ev)
		return outboundMessage[any]{Type: "directive", Payload: directivePayload{Event: string(ev), Directive: directive}}, true
	default:
		return errorFrame("unsupported message type"), true
	}
}

// emit runs the subscribed handlers without holding u.mu and merges their directives.
func (u *WebUI) emit(ev domain.LifecycleEvent) domain.Directive {
	u.mu.Lock()
	handlers := make([]app.LifecycleHandler, 0, len(u.handlers))
	for _, h := range u.handlers {
		handlers = append(handlers, h)
	}
	u.mu.Unlock()

	var out domain.Directive
	for _, h := range handlers {
		d := h(ev)
		out.PreventDefault = out.PreventDefault || d.PreventDefault
		out.ConfirmLeave = out.ConfirmLeave || d.ConfirmLeave
	}
	return out
}

func (u *WebUI) sendTo(c *client, msg outboundMessage[any]) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		u.log.Warn("ws client too slow, dropping reply", "type", msg.Type)
	}
}

func errorFrame(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: textPayload{Message: message}}
}
