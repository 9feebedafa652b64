package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spellstar/internal/audio"
	"spellstar/internal/catalog"
	"spellstar/internal/config"
	"spellstar/internal/database"
	"spellstar/internal/handlers"
	"spellstar/internal/repository"
	"spellstar/internal/security"
	"spellstar/internal/service"
	"spellstar/internal/speech"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Word content served from local JSON files
	wordCatalog := catalog.New(catalog.NewFileFetcher(cfg.WordsPath))

	// Initialize narration
	var tts *speech.TTSService
	if cfg.SpeechEnabled {
		tts = speech.NewTTSService(cfg.AudioCachePath)
		if err := pregenerateNarration(wordCatalog, tts); err != nil {
			log.Printf("Warning: Failed to pre-generate narration audio: %v", err)
		}
	} else {
		log.Println("Narration disabled")
	}

	// Progress report email via SES
	reportService, err := service.NewReportService(cfg.AWSRegion, cfg.ReportFromEmail, cfg.ReportFromName)
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}

	// Save data behind the key-value repository
	saveRepo := repository.NewSaveRepository(db)
	manager := handlers.NewGameManager(wordCatalog, saveRepo, tts)

	// Kiosk installs play cue sounds on the server machine as well
	if cfg.LocalAudio {
		player := audio.NewBeepPlayer()
		if err := player.Initialize(); err != nil {
			log.Printf("Warning: local audio unavailable: %v", err)
		} else {
			defer player.Cleanup()
			manager.SetLocalAudio(player)
			log.Println("Local audio enabled")
		}
	}

	// Initialize handlers
	signer := security.NewTokenSigner(cfg.SessionSecret, cfg.SessionDuration)
	middleware := handlers.NewMiddleware(signer, cfg.SessionDuration)
	gameHandler := handlers.NewGameHandler(manager)
	progressHandler := handlers.NewProgressHandler(manager, wordCatalog, reportService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files (front end assets and cached narration audio)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Game routes
	mux.HandleFunc("POST /api/game/start", middleware.PlayerSession(gameHandler.StartLevel))
	mux.HandleFunc("POST /api/game/key", middleware.PlayerSession(gameHandler.Keystroke))
	mux.HandleFunc("POST /api/game/backspace", middleware.PlayerSession(gameHandler.Backspace))
	mux.HandleFunc("POST /api/game/help", middleware.PlayerSession(gameHandler.Help))
	mux.HandleFunc("POST /api/game/hear-again", middleware.PlayerSession(gameHandler.HearAgain))
	mux.HandleFunc("POST /api/game/continue", middleware.PlayerSession(gameHandler.Continue))
	mux.HandleFunc("POST /api/game/back", middleware.PlayerSession(gameHandler.Back))
	mux.HandleFunc("GET /api/game/state", middleware.PlayerSession(gameHandler.GetState))

	// Level select, settings and grown-up routes
	mux.HandleFunc("GET /api/themes", middleware.PlayerSession(progressHandler.ListThemes))
	mux.HandleFunc("GET /api/settings", middleware.PlayerSession(progressHandler.GetSettings))
	mux.HandleFunc("POST /api/settings", middleware.PlayerSession(progressHandler.UpdateSettings))
	mux.HandleFunc("POST /api/settings/pin", middleware.PlayerSession(progressHandler.SetPIN))
	mux.HandleFunc("POST /api/progress/reset", middleware.PlayerSession(progressHandler.ResetProgress))
	mux.HandleFunc("POST /api/progress/report", middleware.PlayerSession(progressHandler.SendReport))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// pregenerateNarration creates the narration MP3s for every word, sentence
// and prompt up front so first play never waits on the TTS endpoint
func pregenerateNarration(cat *catalog.Catalog, tts *speech.TTSService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var phrases []string
	for _, themeID := range cat.ListThemeIDs() {
		list, err := cat.LoadTheme(ctx, themeID)
		if err != nil {
			return err
		}
		for _, level := range list.Levels {
			for _, word := range level.Words {
				phrases = append(phrases,
					fmt.Sprintf("Spell the word: %s.", word.Word),
					word.Sentence,
				)
				for _, letter := range word.Word {
					phrases = append(phrases, string(letter))
				}
			}
		}
	}
	phrases = append(phrases, "Try again!")

	results, err := tts.BatchGenerateAudio(ctx, phrases)
	if err != nil {
		return err
	}

	log.Printf("Narration audio ready (%d files)", len(results))
	return nil
}
