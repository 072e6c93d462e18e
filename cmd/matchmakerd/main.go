package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"matchmaker/internal/denylist"
	"matchmaker/internal/matchserver"
	"matchmaker/internal/telemetry"
)

func main() {
	// Admin subcommands are checked before flag parsing, same as the
	// teacher's cli.go dispatch.
	if len(os.Args) > 1 {
		if runCLI(os.Args[1:], "matchmaker-denylist.db") {
			return
		}
	}

	network := flag.String("network", "tcp4", "listen network: tcp4 or tcp6")
	addr := flag.String("addr", ":30000", "listen address")
	versions := flag.String("versions", "1", "comma-separated accepted protocol versions")
	sessionTimeout := flag.Duration("session-timeout", 60*time.Second, "idle session read timeout")
	groups := flag.String("groups", "default", "comma-separated group names, in group_index order")
	maxRoomsPerGroup := flag.Int("max-rooms-per-group", 0, "max rooms per group (0 = unlimited)")
	maxConcurrentSessions := flag.Int("max-concurrent-sessions", 0, "max concurrent sessions (0 = unlimited)")
	denylistPath := flag.String("denylist-db", "matchmaker-denylist.db", "SQLite denylist database path (empty disables the denylist check)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus /metrics and /healthz listen address (empty disables)")
	flag.Parse()

	cfg := matchserver.Config{
		ListenNetwork:         *network,
		ListenAddr:            *addr,
		AcceptedVersions:      parseVersions(*versions),
		SessionTimeout:        *sessionTimeout,
		Groups:                strings.Split(*groups, ","),
		MaxRoomsPerGroup:      *maxRoomsPerGroup,
		MaxConcurrentSessions: *maxConcurrentSessions,
	}

	var dl *denylist.Store
	if *denylistPath != "" {
		var err error
		dl, err = denylist.Open(*denylistPath)
		if err != nil {
			slog.Error("open denylist database", "error", err)
			os.Exit(1)
		}
		defer dl.Close()
	}

	metrics := telemetry.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		slog.Info("matchmakerd: shutting down")
		cancel()
	}()

	if *metricsAddr != "" {
		httpSrv := telemetry.NewHTTPServer(metrics, *metricsAddr)
		go func() {
			if err := httpSrv.Run(ctx); err != nil {
				slog.Error("telemetry http server", "error", err)
			}
		}()
		slog.Info("matchmakerd: telemetry listening", "addr", *metricsAddr)
	}

	srv := matchserver.New(cfg, dl, metrics)
	if err := srv.Run(ctx); err != nil {
		slog.Error("matchserver", "error", err)
		os.Exit(1)
	}
}

func parseVersions(s string) []uint16 {
	parts := strings.Split(s, ",")
	out := make([]uint16, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			slog.Warn("matchmakerd: ignoring malformed -versions entry", "value", p, "error", err)
			continue
		}
		out = append(out, uint16(n))
	}
	return out
}
