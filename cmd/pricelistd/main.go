package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/harings-be/commerce-pricelist/config"
	"github.com/harings-be/commerce-pricelist/internal/adminapi"
	"github.com/harings-be/commerce-pricelist/internal/app"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
)

var (
	conffile = flag.String("c", "/etc/pricelistd.yml", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showver  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showver {
		fmt.Println("pricelistd", version)
		return
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
	application.StartBackgroundJobs(ctx)

	webserver.Init(cfg, application.DB())
	adminapi.Init()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		cancel()
		application.Release()
		os.Exit(0)
	}()

	if err := webserver.Listen(); err != nil {
		zap.L().Fatal("webserver exited", zap.Error(err))
	}
}
