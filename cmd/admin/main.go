package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/logger"
	"github.com/mrbata-dev/Product-Stock/internal/server"
)

func main() {
	// .env 可选，生产环境直接用环境变量
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		log.Fatalf("failed to run admin server: %v", err)
	}
}
