package main

import (
	"fmt"
	"os"

	"webbot/file-api/app"
	"webbot/file-api/aws"
	"webbot/file-api/config"
	"webbot/file-api/db"
	"webbot/file-api/internal"
	"webbot/file-api/internal/service"
	"webbot/file-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	err := config.Setup()
	if err != nil {
		return err
	}

	app.MakeLogger()

	d, err := buildDeps()
	if err != nil {
		return err
	}

	router := app.NewRouter(d)

	zap.L().Info("Server starting", zap.Int("port", viper.GetInt("host.port")))

	return router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
}

func buildDeps() (*internal.Deps, error) {
	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	s3, err := aws.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	// The analysis stage ships disabled, flipping analysis.enabled swaps the
	// nil analyzer for Textract without touching the orchestrator
	var analyzer service.DocumentAnalyzer
	if viper.GetBool("analysis.enabled") {
		t, err := aws.NewTextract()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Textract client, %w", err)
		}
		analyzer = t
	}

	fileStore := store.NewFileStore(conn)

	return &internal.Deps{
		Store: fileStore,
		Lifecycle: &service.Lifecycle{
			Store:         fileStore,
			Objects:       s3,
			Analyzer:      analyzer,
			StagingPath:   viper.GetString("storage.staging_path"),
			DownloadsPath: viper.GetString("storage.downloads_path"),
			KeyPrefix:     viper.GetString("aws.prefix"),
		},
	}, nil
}
