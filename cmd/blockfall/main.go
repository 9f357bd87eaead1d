package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blockfall/server/internal/config"
	coresys "github.com/blockfall/server/internal/core/system"
	"github.com/blockfall/server/internal/data"
	"github.com/blockfall/server/internal/handler"
	gonet "github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
	"github.com/blockfall/server/internal/persist"
	"github.com/blockfall/server/internal/scripting"
	"github.com/blockfall/server/internal/system"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            blockfall  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      方塊對戰 · Go 遊戲伺服器             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("BLOCKFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	saveRepo := persist.NewSaveRepo(db)
	eventRepo := persist.NewEventRepo(db)

	// A crashed server leaves online flags set; clear them at boot.
	if err := accountRepo.ResetOnline(ctx); err != nil {
		return fmt.Errorf("reset online flags: %w", err)
	}
	fmt.Println()

	// 5. Load rule tables and scripts
	printSection("資料載入")

	rules, err := data.LoadRules(cfg.Game.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	printOK("遊戲規則載入完成")

	luaEngine, err := scripting.NewEngine(cfg.Game.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua 腳本載入完成")
	fmt.Println()

	// 6. Create world state, packet registry, handlers
	worldState := world.NewState()

	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		AccountRepo: accountRepo,
		SaveRepo:    saveRepo,
		EventRepo:   eventRepo,
		Config:      cfg,
		Log:         log,
		World:       worldState,
		Scripting:   luaEngine,
		Rules:       rules,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Create network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Server.Name,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		pktPerSec,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Create systems and register with runner
	store := gonet.NewSessionStore()
	events := system.NewEventBuffer()

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, store, cfg.Network.MaxPacketsPerTick, accountRepo, saveRepo, worldState, log))
	runner.Register(system.NewGameSystem(worldState, luaEngine, events, log))
	runner.Register(system.NewOutputSystem(worldState, store))
	persistSys := system.NewPersistSystem(worldState, saveRepo, eventRepo, events, log, cfg.Game.SaveIntervalTicks)
	runner.Register(persistSys)

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()
	inputPoll := time.NewTicker(cfg.Network.TickRate / 5)
	defer inputPoll.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case <-ticker.C:
			// Measured delta, not the nominal tick rate: a stalled loop
			// catches up through the instances' gravity accumulator.
			now := time.Now()
			runner.Tick(now.Sub(last))
			last = now
		case <-inputPoll.C:
			// Drain packets between full ticks so a client action lands
			// in the next simulation step instead of waiting out a whole
			// tick in the socket buffer.
			runner.TickPhase(coresys.PhaseInput, 0)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			persistSys.SaveAllPlayers()
			netServer.Shutdown()
			log.Info("伺服器已停止")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
