package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/valkyrja/ro2go/internal/char"
	"github.com/valkyrja/ro2go/internal/config"
	"github.com/valkyrja/ro2go/internal/db"
	"github.com/valkyrja/ro2go/internal/login"
	"github.com/valkyrja/ro2go/internal/maps"
	"github.com/valkyrja/ro2go/internal/mapserver"
	"github.com/valkyrja/ro2go/internal/store"
)

const (
	loginConfigPath = "config/loginserver.yaml"
	charConfigPath  = "config/charserver.yaml"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	loginCfg, err := config.LoadLoginServer(loginConfigPath)
	if err != nil {
		return fmt.Errorf("loading login config: %w", err)
	}
	charCfg, err := config.LoadCharServer(charConfigPath)
	if err != nil {
		return fmt.Errorf("loading character config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(loginCfg.LogLevel),
	})))
	slog.Info("ro2go starting", "login_port", loginCfg.Port, "char_port", charCfg.Port)

	stores := char.Stores{
		Accounts:    store.NewAccountStore(),
		Characters:  store.NewCharacterStore(),
		Inventories: store.NewInventoryStore(),
		Tickets:     store.NewTicketStore(),
	}

	persist, err := hydrate(ctx, loginCfg, charCfg, stores)
	if err != nil {
		return err
	}

	table, err := loadMapTable(charCfg)
	if err != nil {
		return fmt.Errorf("loading map table: %w", err)
	}
	slog.Info("map table loaded", "maps", table.Len())

	zone := mapserver.NewStatic(resolveIP(charCfg.MapServerAddress), charCfg.MapServerPort, table.IDs())

	loginServer := login.NewServer(loginCfg, stores.Accounts, stores.Tickets)
	charServer := char.NewServer(charCfg, stores, table, zone)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := loginServer.Run(gctx); err != nil {
			return fmt.Errorf("login server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := charServer.Run(gctx); err != nil {
			return fmt.Errorf("character server: %w", err)
		}
		return nil
	})

	err = g.Wait()

	// Tokens die with the process; everything else is written back.
	stores.Accounts.PurgeWebTokens()
	if persist != nil {
		if perr := persist(context.Background()); perr != nil {
			slog.Error("snapshot write-back failed", "err", perr)
		}
	}
	return err
}

// hydrate fills the stores from the configured backend and returns the
// write-back hook, nil for the in-memory backend.
func hydrate(ctx context.Context, loginCfg config.LoginServer, charCfg config.CharServer, stores char.Stores) (func(context.Context) error, error) {
	if loginCfg.AccountDB.Type != config.DBPostgres {
		if err := stores.Accounts.Init(); err != nil {
			return nil, fmt.Errorf("seeding dev account: %w", err)
		}
		slog.Info("using in-memory stores", "accounts", stores.Accounts.Count())
		return nil, nil
	}

	database, err := db.New(ctx, loginCfg.AccountDB.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := db.RunMigrations(ctx, database.Pool()); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	accs, err := database.Accounts().LoadAll(ctx)
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := stores.Accounts.Restore(accs); err != nil {
		database.Close()
		return nil, fmt.Errorf("restoring accounts: %w", err)
	}

	chars, err := database.Characters().LoadAll(ctx)
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := stores.Characters.Restore(chars); err != nil {
		database.Close()
		return nil, fmt.Errorf("restoring characters: %w", err)
	}

	invs, err := database.Inventories().LoadAll(ctx)
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := stores.Inventories.Restore(invs); err != nil {
		database.Close()
		return nil, fmt.Errorf("restoring inventories: %w", err)
	}

	slog.Info("stores hydrated from database",
		"accounts", len(accs), "characters", len(chars), "inventories", len(invs))

	return func(ctx context.Context) error {
		defer database.Close()
		if err := database.Accounts().UpsertAll(ctx, stores.Accounts.Snapshot()); err != nil {
			return err
		}
		if err := database.Characters().UpsertAll(ctx, stores.Characters.Snapshot()); err != nil {
			return err
		}
		return database.Inventories().UpsertAll(ctx, stores.Inventories.Snapshot())
	}, nil
}

func loadMapTable(cfg config.CharServer) (*maps.Table, error) {
	table, err := maps.Load(cfg.MapNamesFile)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	// No map list shipped: fall back to the starting maps so creation and
	// selection still resolve.
	slog.Warn("map names file missing, using starting maps only", "path", cfg.MapNamesFile)
	return maps.New([]string{cfg.Novice.Map, cfg.Doram.Map})
}

func resolveIP(address string) net.IP {
	ip := net.ParseIP(address)
	if ip == nil {
		return net.IPv4(127, 0, 0, 1)
	}
	return ip
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
