package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/manjeshpatagar/mytradingview/internal/auth"
	"github.com/manjeshpatagar/mytradingview/internal/config"
	"github.com/manjeshpatagar/mytradingview/internal/database"
	"github.com/manjeshpatagar/mytradingview/internal/handlers"
	"github.com/manjeshpatagar/mytradingview/internal/logging"
	"github.com/manjeshpatagar/mytradingview/internal/middleware"
	"github.com/manjeshpatagar/mytradingview/internal/store"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

const shutdownTimeout = 10 * time.Second

// Server is the assembled HTTP application.
type Server struct {
	cfg     *config.Config
	log     *logrus.Logger
	handler http.Handler
	limiter *middleware.RateLimiter
}

// NewServer wires routes and middleware on top of an open database.
func NewServer(cfg *config.Config, db *gorm.DB, clock util.Clock, log *logrus.Logger) *Server {
	if cfg.Development() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Only reachable in development; config rejects it elsewhere.
		secret = uuid.NewString()
		log.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}

	svc := auth.NewService(
		store.NewUsers(db),
		auth.NewTokens(secret, cfg.Auth.TokenTTL, clock),
		clock,
		log.WithField("component", "auth"),
	)

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	metrics := middleware.NewMetrics("mytradingview")

	r := gin.New()
	r.Use(
		handlers.Recovery(log),
		middleware.RequestLogger(log),
		metrics.Handler(),
		handlers.ErrorHandler(log),
		limiter.Handler(),
	)
	r.GET("/metrics", gin.WrapH(metrics.Exposition()))

	handlers.New(handlers.Deps{
		DB:        db,
		Auth:      svc,
		Clock:     clock,
		Log:       log,
		APIPrefix: cfg.App.APIPrefix,
		Cookie: handlers.Cookie{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.TokenTTL,
		},
	}).RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	return &Server{cfg: cfg, log: log, handler: c.Handler(r), limiter: limiter}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.App.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.limiter.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run loads configuration, opens and migrates the database and serves until
// ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	clock := util.SystemClock(cfg.Location())

	db, err := database.Open(database.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.DSN(),
		Clock:  clock,
		Log:    log,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.WithFields(logrus.Fields{
		"driver":   cfg.Database.Driver,
		"timezone": cfg.App.Timezone,
	}).Info("database ready")

	return NewServer(cfg, db, clock, log).Serve(ctx)
}
