package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/config"
	"github.com/example/imgedit/internal/httpapi"
)

// serveCmd exposes an editing session over HTTP.
type serveCmd struct {
	addr string
	mode string
	*root
	fs *flag.FlagSet
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	srv := config.New().Server
	if r != nil && r.config != nil {
		srv = r.config.Server
	}
	fs.StringVar(&s.addr, "addr", srv.Addr, "listen address")
	fs.StringVar(&s.mode, "mode", srv.Mode, "gin mode: debug, release or test")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if s.addr == "" {
		s.addr = config.DefaultAddr
	}
	return s, nil
}

func (s *serveCmd) Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if s.mode != "" {
		gin.SetMode(s.mode)
	}
	handler := httpapi.NewHandler(s.newEditor())
	server := httpapi.NewServer(s.addr, httpapi.InitRoutes(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}
