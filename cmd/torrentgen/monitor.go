package main

import (
	"context"
	"log"
	"time"

	tgconfig "github.com/torrentgen/torrentgen/internal/config"
	"github.com/torrentgen/torrentgen/internal/monitor"
)

// startMonitor launches the local progress server and returns the sink
// feeding it plus a stop function that shuts the server down.
func startMonitor(cfg *tgconfig.Config, totalBytes uint64) (*monitor.Sink, func()) {
	hub := monitor.NewHub()
	go hub.Run()

	srv := monitor.NewServer(cfg.MonitorAddr, hub)
	if err := srv.Start(); err != nil {
		log.Printf("monitor: failed to start server: %v", err)
	}

	sink := monitor.NewSink(hub, totalBytes)
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		hub.Close()
	}
	return sink, stop
}
