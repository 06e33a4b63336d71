// sessionwatch is a terminal viewer for a live session's observer feed: it
// subscribes to a room's websocket and renders checkpoints, status changes,
// and transcripts as they arrive.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	serverURL := flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL of the agent worker")
	room := flag.String("room", "", "Room to observe")
	flag.Parse()

	if *room == "" {
		fmt.Fprintln(os.Stderr, "Error: -room is required")
		os.Exit(1)
	}

	target, err := url.Parse(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid url: %v\n", err)
		os.Exit(1)
	}
	query := target.Query()
	query.Set("room", *room)
	target.RawQuery = query.Encode()

	feed := make(chan tea.Msg, 64)
	reader := newFeedReader(target.String(), feed)
	go reader.run()

	p := tea.NewProgram(newModel(*room, feed), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
