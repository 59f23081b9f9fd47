package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	universePath := flag.String("universe", "universe.yaml", "Path to static universe data")
	dbPath := flag.String("db", "startrader.db", "Path to SQLite database ('' disables accounts)")
	clientDir := flag.String("client", "", "Path to client directory ('' disables static serving)")
	flag.Parse()

	universe, err := LoadUniverse(*universePath)
	if err != nil {
		logrus.Fatalf("static data load failed: %v", err)
	}

	var db *DB
	if *dbPath != "" {
		db, err = OpenDB(*dbPath)
		if err != nil {
			logrus.Warnf("database unavailable, running guest-only: %v", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	var saves SnapshotStore
	if db != nil {
		saves = db
	}
	game := NewGame(universe, saves)
	go game.Run()

	hub := NewHub(game, db)
	go hub.Run()

	mux := SetupRoutes(hub, *clientDir)
	server := &http.Server{Addr: *addr, Handler: mux}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    *addr,
			"systems": len(universe.Systems),
			"goods":   len(universe.Goods),
		}).Info("server starting")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logrus.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	logrus.Info("shutting down")
	game.Stop()
	server.Close()
}
