package main

import (
	"os"

	"agendacal/internal/commands"
	appLog "agendacal/internal/log"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		appLog.Error("agendacal failed", err)
		os.Exit(1)
	}
}
