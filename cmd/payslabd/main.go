package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"payslab/config"
	"payslab/core/events"
	"payslab/core/state"
	"payslab/native/escrow"
	"payslab/native/reputation"
	"payslab/rpc"
	"payslab/storage"
)

// slogEmitter forwards engine events to the process log. Events are
// append-only notifications; nothing in the engine reads them back.
type slogEmitter struct {
	logger *slog.Logger
}

func (e slogEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	e.logger.Info("event", slog.String("type", evt.EventType()))
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	owner, err := cfg.Owner()
	if err != nil {
		logger.Error("Invalid owner address", slog.Any("error", err))
		os.Exit(1)
	}
	collector, err := cfg.FeeCollector()
	if err != nil {
		logger.Error("Invalid fee collector address", slog.Any("error", err))
		os.Exit(1)
	}
	vault, err := cfg.Vault()
	if err != nil {
		logger.Error("Invalid vault address", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "payslab"))
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	emitter := slogEmitter{logger: logger}

	repEngine := reputation.NewEngine(manager)
	repEngine.SetEmitter(emitter)

	engine := escrow.NewEngine()
	engine.SetState(manager)
	engine.SetToken(escrow.NewLedgerToken(manager, vault))
	engine.SetReputation(repEngine)
	engine.SetVault(vault)
	engine.SetPauses(manager)
	engine.SetEmitter(emitter)
	if err := engine.Initialize(owner, collector, cfg.PlatformFeeBps); err != nil {
		logger.Error("Failed to initialize engine", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(engine, repEngine)
	logger.Info("Starting JSON-RPC server",
		slog.String("address", cfg.RPCAddress),
		slog.String("network", cfg.NetworkName))
	if err := server.Start(cfg.RPCAddress); err != nil {
		fmt.Fprintf(os.Stderr, "RPC server stopped: %v\n", err)
		os.Exit(1)
	}
}
