package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebas/callkeeper/internal/calllog"
	"github.com/sebas/callkeeper/internal/config"
	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/jobs"
	"github.com/sebas/callkeeper/internal/logger"
	"github.com/sebas/callkeeper/internal/session"
	"github.com/sebas/callkeeper/internal/telephony/simdriver"
	"github.com/sebas/callkeeper/internal/uplink"
)

func main() {
	demo := flag.Bool("demo", false, "Run a scripted call flow against the simulated driver")

	cfg, err := config.Load()
	if err != nil {
		logger.InitLogger(os.Stdout)
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.InitLogger(os.Stdout)
	logger.SetLevel(cfg.LogLevel)

	store, err := calllog.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open record store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jobStore := openJobStore(cfg)
	defer jobStore.Close()

	hostname, _ := os.Hostname()
	uplinkCfg := uplink.DefaultConfig()
	uplinkCfg.Address = cfg.SyncAddr
	uplinkCfg.DeviceID = hostname
	uplinkCfg.ConnectTimeout = cfg.SyncConnectTimeout
	up, err := uplink.NewClient(uplinkCfg)
	if err != nil {
		slog.Error("Failed to create sync client", "addr", cfg.SyncAddr, "error", err)
		os.Exit(1)
	}
	defer up.Close()

	worker := jobs.NewWorker(jobStore, alwaysOnline{}, cfg.JobPollInterval)
	calllog.NewHandlers(store, up, nil).Register(worker)
	worker.Start()
	defer worker.Close()

	resolver := identity.NewResolver(demoWorkDirectory, nil, demoContacts)
	orchestrator := calllog.NewOrchestrator(store, worker, resolver, demoSlots{}, cfg.CallLogDeleteGrace)

	audio := &localAudio{}
	manager := session.NewManager(session.ManagerConfig{
		Resolver:    resolver,
		Audio:       audio,
		Messenger:   logMessenger{},
		RemovalHook: orchestrator,
	})

	driver := simdriver.New()
	driver.SetHandler(manager)

	slog.Info("Starting callkeeper daemon",
		"db", cfg.DatabasePath,
		"sync", cfg.SyncAddr,
	)

	go watchSnapshots(manager)
	if *demo {
		go runDemo(driver)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)
}

// openJobStore prefers the durable redis queue and degrades to the
// in-memory queue when redis is unreachable.
func openJobStore(cfg *config.Config) jobs.Store {
	redisStore, err := jobs.NewRedisStore(jobs.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		slog.Warn("Redis unavailable, jobs will not survive restarts", "addr", cfg.RedisAddr, "error", err)
		return jobs.NewMemoryStore()
	}
	return redisStore
}

// watchSnapshots logs every published session snapshot.
func watchSnapshots(manager *session.Manager) {
	for state := range manager.Watch() {
		if state == nil {
			slog.Info("[Watch] No live call")
			continue
		}
		slog.Info("[Watch] Session snapshot",
			"name", state.Name,
			"number", state.Number,
			"status", state.Status,
			"kind", state.Kind,
			"can_merge", state.CanMerge,
			"can_swap", state.CanSwap,
			"second_call", state.HasSecondCall,
		)
	}
}
