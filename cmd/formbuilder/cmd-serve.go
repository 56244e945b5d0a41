package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"

	"github.com/goliatone/go-formbuilder/pkg/server"
)

type serveCmd struct {
	Addr     string `help:"Override server.addr." placeholder:"HOST:PORT"`
	BasePath string `name:"base-path" help:"Override server.base_path."`
	Variant  string `help:"Initial theme variant (light or dark)."`
}

func (s *serveCmd) Run(g *globalOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.BasePath != "" {
		cfg.Server.BasePath = s.BasePath
	}
	variant := cfg.Theme.Variant
	if s.Variant != "" {
		variant = s.Variant
	}

	handler, err := server.New(rt.builder,
		server.WithBasePath(cfg.Server.BasePath),
		server.WithTitle(cfg.Server.Title),
		server.WithMaxImportBytes(cfg.Server.MaxImportBytes),
		server.WithDefaultVariant(variant),
		server.WithLogger(rt.logger),
	)
	if err != nil {
		return err
	}

	srv := server.NewServer(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, rt.logger)

	level.Info(rt.logger).Log("msg", "starting formbuilder", "addr", cfg.Server.Addr, "storage", rt.store.Driver(), "version", Version)
	return srv.Run(ctx)
}
