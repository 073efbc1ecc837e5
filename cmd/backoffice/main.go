package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bitminded/backoffice/config"
	"github.com/bitminded/backoffice/internal/adminapi"
	"github.com/bitminded/backoffice/internal/app"
	"github.com/bitminded/backoffice/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "backoffice.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
)

// filled in by the release build
var (
	BuildVersion = "dev"
	BuildTime    = ""
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Printf("backoffice %s %s\n", BuildVersion, BuildTime)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	webserver.Init(application)
	adminapi.InitRouter(application)
	application.StartBackgroundJobs(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		zap.L().Info("shutting down", zap.String("signal", s.String()))
		cancel()
		webserver.Shutdown()
	}()

	zap.L().Info("admin server starting",
		zap.String("host", cfg.Web.Host),
		zap.Int("port", cfg.Web.Port))
	if err := webserver.Listen(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
