package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/database"
	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/server"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
	"github.com/Adarsh-MG101/VerifyCert2/internal/version"
)

func main() {
	_ = godotenv.Load()

	// Setup logging with rotation
	logDir := filepath.Join("data", "logs")
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "verifycert.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		resetPassword(cfg, os.Args[2], os.Args[3])
		return
	}

	logger.Log().Infof("starting %s %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := database.Seed(db, os.Getenv("VC_ADMIN_EMAIL"), os.Getenv("VC_ADMIN_PASSWORD")); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	cleanup := services.NewCleanupService(cfg.UploadsDir, cfg.CleanupMaxAge)
	if err := cleanup.Start(); err != nil {
		log.Fatalf("start cleanup schedule: %v", err)
	}
	defer cleanup.Stop()

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func resetPassword(cfg config.Config, email, newPassword string) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	if err := user.SetPassword(newPassword); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("failed to save user: %v", err)
	}
	log.Printf("Password updated successfully for user %s", email)
}
