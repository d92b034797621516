package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	EventCart    = "cart"
	EventSession = "session"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	eventQueueSize = 32
)

// Event is one message on the change feed
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// EventsHandler streams cart and session changes over a websocket
type EventsHandler struct {
	cart     *service.Cart
	auth     *service.Auth
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewEventsHandler creates a new EventsHandler. An empty allowedOrigins list
// accepts every origin.
func NewEventsHandler(cart *service.Cart, auth *service.Auth, allowedOrigins []string, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		cart:   cart,
		auth:   auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes registers the websocket route
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/events", h.Stream)
}

// Stream upgrades the connection, sends the current cart and session, then
// every change until the client goes away.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events := make(chan Event, eventQueueSize)
	publish := func(e Event) {
		select {
		case events <- e:
		default:
			h.logger.Warn("Dropping event for slow websocket client", zap.String("type", e.Type))
		}
	}

	publish(Event{Type: EventCart, Data: toCartResponse(h.cart.Snapshot()), At: time.Now().UTC()})
	publish(Event{Type: EventSession, Data: h.auth.Session(), At: time.Now().UTC()})

	stopCart := h.cart.Subscribe(func(s domain.CartSnapshot) {
		publish(Event{Type: EventCart, Data: toCartResponse(s), At: time.Now().UTC()})
	})
	defer stopCart()
	stopSession := h.auth.Subscribe(func(s domain.Session) {
		publish(Event{Type: EventSession, Data: s, At: time.Now().UTC()})
	})
	defer stopSession()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return readPump(conn)
	})
	g.Go(func() error {
		err := writePump(ctx, conn, events)
		// unblocks the read pump
		conn.Close()
		return err
	})

	if err := g.Wait(); err != nil && !isNormalClose(err) {
		h.logger.Debug("Websocket closed", zap.Error(err))
	}
}

// readPump discards client messages and keeps the read deadline fresh
func readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, events <-chan Event) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil
		case e := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
