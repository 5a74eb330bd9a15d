package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/greenshed/plantnode/internal/telemetry"
)

// Watch subscribes to a node's telemetry stream and invokes fn for every
// event until the stream ends or ctx is cancelled. telemetryAddr is the
// node's telemetry host:port.
func Watch(ctx context.Context, telemetryAddr string, fn func(telemetry.Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+telemetryAddr+"/events", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to telemetry stream: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop on cancellation
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("telemetry stream closed: %w", err)
		}
		var ev telemetry.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("malformed telemetry event: %w", err)
		}
		fn(ev)
	}
}
