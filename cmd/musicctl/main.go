// Command musicctl searches songs and manages favorites from the terminal,
// sharing configuration with the HTTP server.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "musicctl",
		Usage:    "Search Kugou songs and manage favorites",
		Version:  "0.1.0",
		Commands: r.register(),
	}
}

func main() {
	runner := NewRunner(RunnerOpts{})

	err := newApp(runner).Run(context.Background(), os.Args)
	if cerr := runner.Close(); cerr != nil {
		log.Warnf("failed to close favorites: %v", cerr)
	}
	if err != nil {
		log.Fatalf("musicctl: %v", err)
	}
}
