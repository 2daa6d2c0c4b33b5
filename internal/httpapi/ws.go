package httpapi

import (
	"context"
	"time"

	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// wsOriginPatterns restricts websocket origins. Empty means same-origin
// checks only; a single "*" disables the check.
var wsOriginPatterns []string

// SetWSOriginPatterns configures allowed websocket origins.
func SetWSOriginPatterns(origins []string) {
	wsOriginPatterns = append([]string(nil), origins...)
}

// handleTelemetryWS streams telemetry snapshots to the client as JSON
// messages, one per collector tick. The client is not expected to send
// anything; its read side is drained only to notice the close frame.
func handleTelemetryWS(telem TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: wsOriginPatterns,
		})
		if err != nil {
			zlog.Warn().Err(err).Msg("websocket accept failed")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		wsClientsActive.Inc()
		defer wsClientsActive.Dec()
		zlog.Debug().Str("remote", r.RemoteAddr).Msg("telemetry stream opened")

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		snapshots, unsubscribe := telem.Subscribe()
		defer unsubscribe()

		// Drain the read side so the close frame terminates the stream.
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
			}
		}()

		// Send the latest snapshot immediately so clients do not wait a
		// full sample interval for their first frame.
		if snap, ok := telem.Latest(); ok {
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				return
			}
		}

		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if err := writeSnapshot(ctx, conn, snap); err != nil {
					if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
						zlog.Debug().Err(err).Msg("telemetry stream write failed")
					}
					return
				}
			case <-readDone:
				zlog.Debug().Str("remote", r.RemoteAddr).Msg("telemetry stream closed by client")
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap any) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, snap)
}
