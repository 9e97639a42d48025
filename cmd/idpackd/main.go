package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/idpack/chain"
	"xdao.co/idpack/config"
	"xdao.co/idpack/ident"
	"xdao.co/idpack/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("idpackd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "JSON config file (comments allowed)")
	listen := fs.String("listen", "", "Listen address (overrides the config file)")
	listProfiles := fs.Bool("list-profiles", false, "List identifier profiles and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *listProfiles {
		for _, name := range ident.Profiles() {
			fmt.Fprintln(out, name)
		}
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	profile, err := ident.ProfileByName(cfg.Profile)
	if err != nil {
		logger.Error("invalid profile", "error", err)
		return 2
	}
	store, err := cfg.OpenRegistry()
	if err != nil {
		logger.Error("open registry", "backend", cfg.Registry.Backend, "error", err)
		return 2
	}
	srv := &rpc.Server{Profile: profile, Registry: store}
	if cfg.Chain.RPCURL != "" {
		client, err := chain.Dial(ctx, cfg.Chain.RPCURL)
		if err != nil {
			logger.Error("dial chain rpc", "url", cfg.Chain.RPCURL, "error", err)
			return 1
		}
		defer client.Close()
		srv.Chain = client
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error("listen", "addr", cfg.Listen, "error", err)
		return 1
	}
	defer lis.Close()

	s := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLogger(logger)))
	rpc.RegisterCodecServer(s, srv)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		s.GracefulStop()
	}()

	logger.Info("idpackd listening",
		"addr", lis.Addr().String(),
		"profile", profile.Name,
		"registry", cfg.Registry.Backend,
		"chain", cfg.Chain.RPCURL != "",
	)
	if err := s.Serve(lis); err != nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}
