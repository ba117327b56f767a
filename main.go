package main

import (
	"fmt"
	"os"
	"strings"

	"blogapi/service"
)

// CliVersion is the version reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args and exits with the command's status.
func RealMain() {
	args := os.Args[1:]
	if len(args) > 0 && strings.ToLower(args[0]) == "version" {
		fmt.Printf("blogapi version %s\n", CliVersion)
		exit(0)
		return
	}
	exit(service.HandleCommand(args))
}
