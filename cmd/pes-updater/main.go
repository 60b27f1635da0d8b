// Command pes-updater keeps a PES 2013 install current: it backs up the game
// folder, fetches player transfers, rewrites the player store and installs
// team kits and logos.
//
// Usage:
//
//	pes-updater run [--transfers] [--database] [--assets]
//	pes-updater backup
//	pes-updater transfers
//	pes-updater database update [--file transfers_20240101_000000.csv]
//	pes-updater assets download|copy
//	pes-updater package
//	pes-updater schedule
//	pes-updater runs [--limit 20]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const appVersion = "dev"

func main() {
	if os.Getenv("PES_UPDATER_SKIP_RUN") == "1" {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
