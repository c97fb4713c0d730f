package telem

import (
	"context"
	"fmt"

	"github.com/darkdragonsastro/trackcore/internal/database"
)

// DatabaseSink persists each telemetry sample under a timestamped key,
// reusing a generic JSON key-value Database rather than a bespoke
// time-series store.
type DatabaseSink struct {
	db     database.Database
	prefix string
}

func NewDatabaseSink(db database.Database, keyPrefix string) *DatabaseSink {
	return &DatabaseSink{db: db, prefix: keyPrefix}
}

func (d *DatabaseSink) PublishTelemetry(ctx context.Context, s Sample) error {
	key := fmt.Sprintf("%s/%d", d.prefix, s.Time.UnixNano())
	return d.db.SetJSON(ctx, key, s)
}

// hub is the subset of *websocket.Hub this package depends on, narrowed
// to allow test doubles without importing net/http machinery.
type hub interface {
	Broadcast(msgType string, data any)
}

// WebSocketSink broadcasts each telemetry sample to connected live
// viewers.
type WebSocketSink struct {
	hub     hub
	msgType string
}

func NewWebSocketSink(h hub, msgType string) *WebSocketSink {
	return &WebSocketSink{hub: h, msgType: msgType}
}

func (w *WebSocketSink) PublishTelemetry(ctx context.Context, s Sample) error {
	w.hub.Broadcast(w.msgType, s)
	return nil
}
