package main

import (
	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/claude-activity/internal/cli"
)

func main() {
	cli.Execute()
}
