package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oplab/lab400/internal/tui"
)

func main() {
	addr := flag.String("addr", "localhost:8400", "console server host:port")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	client, err := tui.Dial(u.String())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	p := tea.NewProgram(tui.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
