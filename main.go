// @title UAS Practice API
// @version 1.0
// @description 无人机考试练习平台的后端服务器。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"uas_practice_backend/internal/app"
	"uas_practice_backend/internal/config"
	"uas_practice_backend/pkg/configwatcher"
	"uas_practice_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", application.OnConfigReload)

	application.Run()
}
