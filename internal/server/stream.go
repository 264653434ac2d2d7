package server

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxCloseReason = 123
)

// hello is the first message of every stream.
type hello struct {
	Session    string `json:"session"`
	IntervalMS int64  `json:"interval_ms"`
}

// GET /ws?interval=ms
// Upgrades to a websocket, initialises the engine if needed and then sends
// the frames produced by the shared stream ticker until the client goes away
// or the engine fails. Every stream sees the same ticks; interval only asks
// for frames less often than the server produces them.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	minGap := s.interval
	if v := r.URL.Query().Get("interval"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
		minGap = max(minGap, time.Duration(ms)*time.Millisecond)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			s.logger.Error("websocket upgrade failed", "error", err)
		}
		return
	}
	defer conn.Close()

	session := uuid.Must(uuid.NewV7()).String()
	log := s.logger.With("session", session)
	log.Info("stream opened", "remote", r.RemoteAddr, "interval", minGap)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readUntilClosed(conn, cancel)

	if _, err := s.engine.Init(); err != nil {
		closeWith(conn, websocket.CloseInternalServerErr, err.Error())
		log.Error("stream init failed", "error", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello{Session: session, IntervalMS: minGap.Milliseconds()}); err != nil {
		log.Debug("stream write failed", "error", err)
		return
	}

	sub := s.streams.subscribe()
	defer s.streams.unsubscribe(sub)

	if err := forwardFrames(ctx, conn, sub, minGap); err != nil {
		log.Info("stream closed", "reason", err)
		return
	}
	log.Info("stream closed")
}

// forwardFrames writes the subscriber's frames, skipping any that arrive
// sooner than minGap after the previous write. It returns nil when the
// client left, the engine or write error otherwise.
func forwardFrames(ctx context.Context, conn *websocket.Conn, sub *subscriber, minGap time.Duration) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.failed:
			closeWith(conn, websocket.CloseInternalServerErr, err.Error())
			return err
		case f := <-sub.frames:
			// A quarter of the gap is tolerated as ticker jitter.
			if !last.IsZero() && time.Since(last) < minGap-minGap/4 {
				continue
			}
			last = time.Now()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// readUntilClosed drains client messages so control frames are processed,
// and cancels the stream once the connection is gone.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// closeWith sends a close frame. The reason is cut to fit the 123 byte
// limit on a rune boundary, since clients reject invalid UTF-8.
func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, closeMessage(code, text), time.Now().Add(writeWait))
}

func closeMessage(code int, text string) []byte {
	if len(text) > maxCloseReason {
		text = text[:maxCloseReason]
		for !utf8.ValidString(text) {
			text = text[:len(text)-1]
		}
	}
	return websocket.FormatCloseMessage(code, text)
}
