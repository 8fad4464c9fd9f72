// Package wshandler pushes notification snapshots to dashboard websocket
// listeners as JSON messages.
package wshandler

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/atiapp/inviteboard/internal/model"
)

// Conn is the subset of a websocket connection the handler needs.
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type WebMessage struct {
	Typ          string                 `json:"type"`
	Notification *model.NotificationDTO `json:"notification,omitempty"`
}

type JSONWsHandler struct {
	log    *slog.Logger
	name   string
	ws     Conn
	ch     chan *WebMessage
	active int32

	// guards close(ch) against concurrent sends
	mx sync.Mutex
}

func NewHandler(log *slog.Logger, name string, ws Conn) *JSONWsHandler {
	return &JSONWsHandler{
		log:    log.With("client", name),
		name:   name,
		ws:     ws,
		ch:     make(chan *WebMessage, 10),
		active: 1,
	}
}

func (w *JSONWsHandler) IsActive() bool {
	return w != nil && atomic.LoadInt32(&w.active) == 1
}

func (w *JSONWsHandler) stop() {
	w.mx.Lock()
	defer w.mx.Unlock()

	if atomic.CompareAndSwapInt32(&w.active, 1, 0) {
		close(w.ch)
		w.ws.Close()
	}
}

func (w *JSONWsHandler) writer() {
	for item := range w.ch {
		if item == nil {
			continue
		}

		_ = w.ws.WriteJSON(item)
	}
}

func (w *JSONWsHandler) reader() {
	defer w.stop()

	for {
		if _, _, err := w.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// SendNotification queues one snapshot; a full buffer drops the message
// rather than blocking the mutation path. Safe against a concurrent
// disconnect: the channel close and the send are serialized.
func (w *JSONWsHandler) SendNotification(n *model.Notification) bool {
	if w == nil {
		return false
	}

	w.mx.Lock()
	defer w.mx.Unlock()

	if atomic.LoadInt32(&w.active) != 1 {
		return false
	}

	select {
	case w.ch <- &WebMessage{Typ: "notification", Notification: n.DTO()}:
	default:
	}

	return true
}

func (w *JSONWsHandler) Listen() {
	go w.writer()
	w.reader()
}
