// Command chatd runs the chat server.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/horgh/chatd/internal/ircd"
)

func main() {
	log.SetFlags(0)

	configFile := flag.String("config", "", "Configuration file (optional).")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	cfg, err := ircd.LoadFile(*configFile)
	if err != nil {
		log.Fatalf("configuration error: %s", err)
	}

	cfg, err = ircd.OverlayEnv(cfg)
	if err != nil {
		log.Fatalf("configuration error: %s", err)
	}

	srv := ircd.NewServer(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received %s, shutting down", sig)
		srv.Shutdown()
	}()

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %s", err)
	}

	log.Printf("server shutdown cleanly.")
}
