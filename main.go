package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"deckscan/pkg/config"
	"deckscan/pkg/ocr"
	"deckscan/pkg/scryfall"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(os.Getenv("DECKSCAN_CONFIG"))
	if err != nil {
		log.Fatal("config: ", err)
	}

	// Support a lightweight migrate command: `./deckscan migrate`
	// Runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if cfg.DatabaseURL == "" {
			log.Fatal("migrate requires DECKSCAN_DATABASE_URL")
		}
		initDB(cfg.DatabaseURL)
		fmt.Println("migration completed")
		return
	}

	initDB(cfg.DatabaseURL)
	ensureUploadBase(cfg.UploadDir)

	profiles, err := ocr.LoadProfiles(cfg.ZoneProfiles)
	if err != nil {
		log.Fatal("zone profiles: ", err)
	}
	var tool *ocr.ExternalTool
	if cfg.UpscaleTool != "" {
		tool = &ocr.ExternalTool{
			Interpreter: cfg.UpscaleInterpreter,
			Path:        cfg.UpscaleTool,
			Timeout:     30 * time.Second,
		}
	}
	pipeline := ocr.NewPipeline(ocr.PipelineOptions{
		Profiles:     profiles,
		Upscaler:     &ocr.Upscaler{Tool: tool},
		VisionAPIKey: cfg.VisionAPIKey,
		Budget:       ocr.NewRateBudget(cfg.VisionPerMinute, cfg.VisionBurst),
	})

	s := &server{
		pipeline:  pipeline,
		scryfall:  scryfall.NewClient(""),
		uploadDir: cfg.UploadDir,
	}

	r := gin.Default()
	setupRoutes(r, s)

	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal(err)
	}
}
