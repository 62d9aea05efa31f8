// cmd/notify-client/main.go
//
// A small terminal subscriber. It connects to the notify server,
// announces an identity and prints every pushed message. Useful for
// watching the pipeline end to end during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/realtime"
)

func main() {
	url := flag.String("url", "ws://localhost:4000/ws", "websocket endpoint of the notify server")
	user := flag.String("user", "", "user ID to announce")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: notify-client -user <userId> [-url ws://host:port/ws]")
		os.Exit(2)
	}

	log := logger.NewStructured("info", "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := realtime.NewSubscriber(*url, *user, func(message string) {
		fmt.Printf("[notification] %s\n", message)
	}, log)

	sub.Run(ctx)
}
