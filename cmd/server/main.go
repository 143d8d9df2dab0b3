package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multirpg/internal/config"
	"multirpg/internal/dependencies/clock"
	"multirpg/internal/dependencies/random"
	"multirpg/internal/dispatch"
	"multirpg/internal/model"
	"multirpg/internal/services/admin"
	"multirpg/internal/services/events"
	"multirpg/internal/services/player"
	"multirpg/internal/services/progression"
	"multirpg/internal/services/session"
	"multirpg/internal/storage"
	"multirpg/internal/storage/memory"
	redisstorage "multirpg/internal/storage/redis"
	"multirpg/internal/transport"
	"multirpg/internal/web"
	"multirpg/internal/world"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	clk := clock.New()
	rnd := random.New()

	var store storage.Store
	if cfg.Redis.Enabled {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		store, err = redisstorage.New(redisCfg)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		store = memory.New()
		logger.Warn("using in-memory storage, player state will not survive a restart")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	players := player.New(store, clk, rnd, logger)
	if err := players.Load(ctx); err != nil {
		logger.Error("failed to load player records", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go players.Run(ctx)

	state := world.NewState(clk.Now().Add(cfg.Game.QuestDelay))
	prog := progression.New(rnd, logger, progression.Config{SelfClock: cfg.Game.SelfClock})
	ev := events.New(rnd, clk, state, logger, events.Config{SelfClock: cfg.Game.SelfClock})
	sess := session.New(players, state, clk, logger, session.Config{LimitPen: cfg.Game.LimitPen})

	registry := transport.NewRegistry(state, clk,
		dispatch.Config{MinDelay: cfg.Dispatch.MinDelay}, logger)
	for _, nw := range cfg.Networks {
		registry.Register(transport.NewWriterConn(nw.Name, os.Stdout), nw.Channel)
		logger.Info("network registered",
			slog.String("network", nw.Name),
			slog.String("host", nw.Host),
			slog.Int("port", nw.Port),
			slog.String("channel", nw.Channel),
			slog.String("nick", nw.Nick),
			slog.Bool("ssl", nw.UseSSL))
	}

	// The local operator console is a network like any other, so its
	// replies and notices flow through the same queues
	registry.Register(transport.NewWriterConn(consoleNetwork, os.Stdout), consoleChannel)

	adm := admin.New(players, state, ev, registry, logger)

	feed := web.NewFeed(logger)
	go feed.Run()
	defer feed.Close()

	// The tick pass: progression then events inside one store pass, then
	// routing and delivery outside the critical section.
	tick := func(elapsed int) {
		var msgs []model.Broadcast
		players.Pass(func(tx *player.Tx) {
			res := prog.Tick(tx, elapsed, questTarget(state))
			msgs = append(res.Broadcasts, ev.Tick(tx, res)...)
		})
		registry.RouteAll(msgs)
		for _, b := range msgs {
			if b.Scope == model.ScopeAll || b.Scope == model.ScopeNetwork {
				feed.Publish("announce", b.Text)
			}
		}
		registry.FlushAll(ctx)
	}

	worldClock := world.NewClock(state, clk,
		time.Duration(cfg.Game.SelfClock)*time.Second, tick, logger)
	go worldClock.Run(ctx)

	router := web.NewRouter(web.RouterConfig{
		Logger:   logger,
		Store:    players,
		State:    state,
		Feed:     feed,
		Networks: registry.Networks,
	})

	serverConfig := web.DefaultServerConfig()
	serverConfig.Host = cfg.Web.Host
	serverConfig.Port = cfg.Web.Port
	server := web.NewServer(router, serverConfig, logger)

	go runConsole(ctx, sess, adm, registry, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		registry.Wait()
	}

	logger.Info("server stopped")
}

// questTarget projects the active quest into what movement needs: grid
// quests pull their questers toward the current waypoint.
func questTarget(state *world.State) progression.QuestTarget {
	q := state.Quest()
	if q == nil || q.Type != world.QuestGrid {
		return progression.QuestTarget{}
	}
	x, y := q.Target()
	return progression.QuestTarget{
		Active:   true,
		Questers: q.QuesterIDs(),
		X:        x,
		Y:        y,
	}
}

func logLevel(name string) slog.Level {
	switch name {
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
