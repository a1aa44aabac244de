package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/seacorridor/internal/adapters/nats"
	"github.com/samirrijal/seacorridor/internal/pkg/metrics"
)

// wsMessage is sent by clients to subscribe to or unsubscribe from a channel.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "updates" | "runs" | "corridors" | "overlaps"
	GroupID int64  `json:"group_id,omitempty"`
}

// subjectsFor maps a client message onto NATS subjects. A group id narrows
// the corridor and overlap channels to that group; an overlap names the
// group on either side of the pair.
func subjectsFor(m wsMessage) ([]string, error) {
	switch m.Channel {
	case "", "updates":
		return []string{natsadapter.SubjectBroadcast}, nil
	case "runs":
		return []string{natsadapter.SubjectRunCompleted}, nil
	case "corridors":
		if m.GroupID > 0 {
			return []string{natsadapter.CorridorSubject(m.GroupID)}, nil
		}
		return []string{natsadapter.SubjectCorridorPrefix + ">"}, nil
	case "overlaps":
		if m.GroupID > 0 {
			g := strconv.FormatInt(m.GroupID, 10)
			return []string{
				natsadapter.SubjectOverlapPrefix + g + ".*",
				natsadapter.SubjectOverlapPrefix + "*." + g,
			}, nil
		}
		return []string{natsadapter.SubjectOverlapPrefix + ">"}, nil
	default:
		return nil, fmt.Errorf("unknown channel: %s", m.Channel)
	}
}

// WebSocketHandler relays corridor events from NATS to connected clients.
// Every client starts subscribed to the updates channel and may send
// {"action":"subscribe","channel":"corridors","group_id":7}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.With("remote_addr", remoteAddr)
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription)

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(map[string]any{"subject": msg.Subject, "data": json.RawMessage(msg.Data)})
		}
		subscribe := func(subject string) error {
			s, err := nc.Subscribe(subject, relay)
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream not configured"})
			return
		}
		if err := subscribe(natsadapter.SubjectBroadcast); err != nil {
			log.Error("ws default subscribe failed", "error", err)
			return
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Action != "subscribe" && m.Action != "unsubscribe" {
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
				continue
			}
			subjects, err := subjectsFor(m)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			for _, subject := range subjects {
				switch m.Action {
				case "subscribe":
					if _, exists := subs[subject]; exists {
						_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
						continue
					}
					if err := subscribe(subject); err != nil {
						_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
						continue
					}
					_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

				case "unsubscribe":
					if s, exists := subs[subject]; exists {
						_ = s.Unsubscribe()
						delete(subs, subject)
						_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
					} else {
						_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
					}
				}
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
