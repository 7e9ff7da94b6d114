package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedChannel = "applications.feed"

type Logger interface {
	Info(msg string)
	Error(msg string)
}

// Feed fans application lifecycle events out to admin dashboards over
// server-sent events, with redis pub/sub carrying them between instances.
// A nil client disables the feed without disabling the callers.
type Feed struct {
	client *redis.Client
	logger Logger
}

func NewFeed(client *redis.Client, logger Logger) *Feed {
	return &Feed{client: client, logger: logger}
}

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

func (f *Feed) Publish(ctx context.Context, event string, payload any) {
	if f == nil || f.client == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		f.logError(fmt.Sprintf("feed payload marshal failed event=%s: %v", event, err))
		return
	}
	body, err := json.Marshal(envelope{Event: event, Payload: raw, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := f.client.Publish(ctx, feedChannel, body).Err(); err != nil {
		f.logError(fmt.Sprintf("feed publish failed event=%s: %v", event, err))
	}
}

// ServeHTTP streams feed events to the client until it disconnects. Each
// event goes out as one SSE message; a periodic comment line keeps idle
// connections from being reaped by proxies.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f == nil || f.client == nil {
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := f.client.Subscribe(r.Context(), feedChannel)
	defer func() {
		_ = sub.Close()
	}()
	messages := sub.Channel()
	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, open := <-messages:
			if !open {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Event, msg.Payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (f *Feed) logError(msg string) {
	if f.logger == nil {
		return
	}
	f.logger.Error(msg)
}
