package service

import (
	"fmt"
	"io"
	"log/slog"

	"blogapi/app/config"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// confirm asks a yes/no question on stdout and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Print(question + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
