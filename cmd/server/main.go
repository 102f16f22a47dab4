package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"roombooking/internal/api"
	"roombooking/internal/auth"
	"roombooking/internal/config"
	"roombooking/internal/logging"
	"roombooking/internal/migrations"
	"roombooking/internal/realtime"
	"roombooking/internal/repository"
	"roombooking/internal/service"
	"roombooking/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := migrations.Up(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images, uploads, err := imageStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to set up image storage: %v", err)
	}

	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	sender, err := service.NewSenderService(
		service.NewMailer(cfg.SendGrid, log),
		service.NewSMSSender(cfg.Twilio, log),
		cfg.Location, log,
	)
	if err != nil {
		log.Fatalf("Failed to set up notifications: %v", err)
	}

	roomSvc := service.NewRoomService(roomRepo, images, log)
	bookingSvc := service.NewBookingService(bookingRepo, roomRepo, userRepo, sender, service.BookingPolicy{
		Location:      cfg.Location,
		CheckInBefore: cfg.CheckInBefore,
		CheckInAfter:  cfg.CheckInAfter,
	}, log)
	userSvc := service.NewUserService(userRepo, log)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log)
	jobSvc := service.NewJobService(jobRepo, bookingRepo, sender, cfg.Location, log)

	hub := realtime.NewHub(log)
	go func() {
		if err := realtime.Listen(ctx, cfg.DatabaseURL, hub, log); err != nil {
			log.WithError(err).Error("realtime listener stopped")
		}
	}()

	scheduler := cron.New(cron.WithLocation(cfg.Location))
	if err := jobSvc.Schedule(ctx, scheduler); err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	routerCfg := api.RouterConfig{
		Authenticator: auth.NewAuthenticator(cfg.JWTSecret, userSvc),
		LoginLimiter:  api.NewIPRateLimiter(cfg.LoginRatePerSecond, cfg.LoginBurst),
		CORSOrigins:   cfg.CORSOrigins,
		Log:           log,
	}
	if uploads != nil {
		prefix := strings.TrimRight(cfg.Storage.PublicURL, "/")
		routerCfg.Uploads = http.StripPrefix(prefix, uploads)
		routerCfg.UploadsPrefix = prefix + "/"
	}
	router := api.NewRouter(api.Handlers{
		Auth:     api.NewAuthHandler(authSvc, userSvc, log),
		Rooms:    api.NewRoomHandler(roomSvc, log),
		Bookings: api.NewBookingHandler(bookingSvc, log),
		Manager:  api.NewManagerHandler(bookingSvc, log),
		Admin:    api.NewAdminHandler(roomSvc, bookingSvc, userSvc, log),
		Realtime: api.NewRealtimeHandler(hub, cfg.CORSOrigins, log),
	}, routerCfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown")
	}
	<-scheduler.Stop().Done()
	sender.Wait()
}

// imageStore picks the configured backend. The returned handler serves local
// files and is nil for S3.
func imageStore(ctx context.Context, cfg config.StorageConfig) (storage.ImageStore, http.Handler, error) {
	if cfg.Driver == "s3" {
		store, err := storage.NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.PublicURL)
		return store, nil, err
	}
	store, err := storage.NewLocalStore(cfg.Dir, cfg.PublicURL)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasPrefix(cfg.PublicURL, "/") {
		return store, nil, nil
	}
	return store, http.FileServer(http.Dir(store.Dir())), nil
}
