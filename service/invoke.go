package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"blogapi/app/routes"
)

// invoke dispatches one gateway-style event read from path, or from stdin
// when path is empty or "-", and prints the response. Logs go to stderr so
// stdout carries only the response.
func invoke(path string) int {
	cfg := loadConfig()
	logger := newLogger(os.Stderr, cfg.LogLevel)

	var in io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Printf("Failed to open event file: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	var ev routes.Event
	if err := json.NewDecoder(in).Decode(&ev); err != nil {
		fmt.Printf("Failed to decode event: %v\n", err)
		return 1
	}

	ctx := context.Background()
	app, err := Build(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		return 1
	}
	defer app.Close()

	out, err := json.MarshalIndent(app.Dispatcher.HandleEvent(ctx, ev), "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode response: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
