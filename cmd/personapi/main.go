package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/personapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := personapi.Main(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "personapi:", err)
		stop()
		os.Exit(1)
	}
}
