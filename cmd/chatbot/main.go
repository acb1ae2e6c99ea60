// Command chatbot runs an in-process protocol bot client against a chatd
// server.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/horgh/chatd/internal/bot"
)

func main() {
	log.SetFlags(0)

	host := flag.String("host", "::1", "Server host.")
	port := flag.Int("port", 6667, "Server port.")
	name := flag.String("name", "chatbot", "Bot nickname.")
	channel := flag.String("channel", "#general", "Channel to join.")
	secret := flag.String("secret", "", "BOT_AUTH shared secret (optional).")
	factsFile := flag.String("facts", "", "Newline-delimited joke/fact file (optional).")
	flag.Parse()

	var facts bot.FactSource
	if len(*factsFile) > 0 {
		facts = bot.NewFileFactSource(*factsFile)
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	b := bot.New(addr, *name, *channel, *secret, facts)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := b.Connect(ctx); err != nil {
		log.Fatalf("connect error: %s", err)
	}

	if err := b.Run(ctx); err != nil {
		log.Printf("disconnected: %s", err)
	}
}
