package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/maplist-import/cmd/maplist/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
