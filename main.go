package main

import (
	"context"
	"os"
	"os/signal"

	"SkyrimAlchemy/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exiter, code := cli.Run(ctx, os.Args[1:])
	stop()
	exiter(code)
}
