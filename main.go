package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/camden-git/personasapi/config"
	"github.com/camden-git/personasapi/database"
	"github.com/camden-git/personasapi/handlers"
	"github.com/camden-git/personasapi/media"
	"github.com/camden-git/personasapi/repository"
	"github.com/camden-git/personasapi/services"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		log.Printf("Ensuring database directory exists: %s", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath, database.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypePersonaImage: cfg.ImagesSubDir,
		media.AssetTypeDefaultImage: media.DefaultImagesSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore, cfg.ImageMaxSize, int64(cfg.MaxImageKB)*1024)
	if err := mediaProcessor.EnsureDefaultImage(); err != nil {
		log.Fatalf("FATAL: Failed to prepare default image: %v", err)
	}

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing persona images in: %s", filepath.Join(cfg.MediaStoragePath, cfg.ImagesSubDir))
	log.Printf("Image max size (longest side): %dpx, upload limit: %dKB", cfg.ImageMaxSize, cfg.MaxImageKB)

	personaRepo := repository.NewPersonaRepository(db)
	personaService := services.NewPersonaService(personaRepo, mediaProcessor)
	personaHandler := handlers.NewPersonaHandler(personaService, cfg.MaxUploadBytes)

	r := handlers.NewRouter(handlers.RouterConfig{
		Personas:           personaHandler,
		Store:              mediaStore,
		DB:                 db,
		Metrics:            handlers.NewMetrics(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
