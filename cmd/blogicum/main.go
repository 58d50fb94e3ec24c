package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/notify"
	"github.com/blogicum/blogicum/internal/server"
	"github.com/blogicum/blogicum/internal/storage"
)

const usage = `usage: blogicum [command]

commands:
  serve             run the web server (default)
  migrate           create or update database tables
  createsuperuser   create a staff account
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.GinMode == gin.ReleaseMode); err != nil {
		fmt.Fprintf(os.Stderr, "LOG_LEVEL: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "createsuperuser":
		err = createSuperuser(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", err, map[string]any{"command": cmd})
		os.Exit(1)
	}
}

func openDB(cfg config.Config, migrate bool) (database.Service, error) {
	level := gormlogger.Warn
	if cfg.GinMode == gin.DebugMode {
		level = gormlogger.Info
	}
	return database.New(cfg.Database, database.Options{LogLevel: level, Migrate: migrate})
}

func newMediaStore(ctx context.Context, cfg config.Media) (storage.Store, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.S3PublicURL)
	}
	return storage.NewLocal(cfg.Root, cfg.URL)
}

func serve(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	media, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("media storage: %w", err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMSEnabled() {
		notifier = notify.NewSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
		logger.Info("✅ SMS comment notifications enabled", nil)
	}

	srv, err := server.New(cfg, db, media, notifier).HTTPServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server starting", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited", nil)
	return nil
}

func migrate(cfg config.Config) error {
	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	return db.Close()
}

func createSuperuser(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	username := fs.String("username", "", "username of the new staff account")
	email := fs.String("email", "", "email address")
	password := fs.String("password", os.Getenv("BLOGICUM_SUPERUSER_PASSWORD"), "password (or BLOGICUM_SUPERUSER_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !forms.ValidUsername(*username) {
		return errors.New("a valid -username is required")
	}
	if msg := forms.CheckPassword(*password); msg != "" {
		return errors.New(msg)
	}

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	user := models.User{Username: *username, Email: *email, Password: hashed, IsStaff: true}
	if err := db.GetDB().Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("user %q already exists", *username)
		}
		return fmt.Errorf("create user: %w", err)
	}

	logger.Info("✅ Superuser created", map[string]any{"username": user.Username})
	return nil
}
