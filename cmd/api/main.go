package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nginxforge/nginxforge/internal/config"
	"github.com/nginxforge/nginxforge/internal/database"
	"github.com/nginxforge/nginxforge/internal/logger"
	"github.com/nginxforge/nginxforge/internal/models"
	"github.com/nginxforge/nginxforge/internal/server"
	"github.com/nginxforge/nginxforge/internal/services"
	"github.com/nginxforge/nginxforge/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and a rotated file
	_ = os.MkdirAll(cfg.LogDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "nginxforge.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(!cfg.IsProduction(), io.MultiWriter(os.Stdout, rotator))

	// CLI commands that run against the database and exit
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		resetPassword(cfg)
		return
	}

	logger.WithFields(map[string]interface{}{
		"version": version.Full(),
		"env":     cfg.Environment,
	}).Infof("starting %s", version.Name)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log().WithError(err).Fatal("open database")
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		logger.Log().WithError(err).Fatal("build server")
	}

	audit := services.NewAuditService(srv.Services.Sites, srv.Services.Notifications, cfg.AuditSchedule)
	if err := audit.Start(); err != nil {
		logger.Log().WithError(err).Fatal("start audit scheduler")
	}
	defer audit.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(map[string]interface{}{"port": cfg.HTTPPort}).Info("listening")
	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Fatal("server error")
	}
}

// resetPassword updates a user's password and clears any lockout. Meant for
// operators locked out of the web UI.
func resetPassword(cfg config.Config) {
	if len(os.Args) != 4 {
		log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
	}
	email, newPassword := os.Args[2], os.Args[3]

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	if err := user.SetPassword(newPassword); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	user.LockedUntil = nil
	user.FailedLoginAttempts = 0

	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("failed to save user: %v", err)
	}
	log.Printf("Password updated successfully for user %s", email)
}
