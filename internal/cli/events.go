package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/navalcombat/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream game events from the server",
		Long: `Connect to the server's websocket endpoint and stream events in real-time.

Events include:
  - game_reset: A new game was set up
  - game_started: The battle began
  - shot_fired: A shot landed
  - turn_changed: The other side is firing
  - game_ended: One fleet is sunk
  - game_saved, game_loaded, save_failed: Persistence results

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// eventsURL turns the server's http(s) URL into the websocket endpoint
func eventsURL(serverURL string) string {
	base := strings.TrimSuffix(serverURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/api/v1/events"
}

func streamEvents(ctx context.Context, w io.Writer, jsonOutput bool) error {
	url := eventsURL(client.BaseURL())

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on Ctrl+C
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to %s\n", url)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Fprintln(w, "Disconnected")
				}
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("server closed the stream: %w", err)
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printEvent(w, data, jsonOutput)
	}
}

func printEvent(w io.Writer, data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Fprintln(w, string(data))
		return
	}

	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil {
		fmt.Fprintf(w, "unreadable event: %s\n", string(data))
		return
	}

	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, event.Type)
	if event.Payload != nil {
		payload, _ := json.Marshal(event.Payload)
		line += ": " + string(payload)
	}
	fmt.Fprintln(w, line)
}
