package main // Entry point package

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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cineverse/internal/account"
	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/config"
	"github.com/iliyamo/cineverse/internal/database"
	"github.com/iliyamo/cineverse/internal/handler"
	"github.com/iliyamo/cineverse/internal/middleware"
	"github.com/iliyamo/cineverse/internal/queue"
	"github.com/iliyamo/cineverse/internal/quiz"
	"github.com/iliyamo/cineverse/internal/repository"
	"github.com/iliyamo/cineverse/internal/router"
	"github.com/iliyamo/cineverse/internal/service"
)

// quizIdleTimeout is how long an untouched quiz session survives.
const quizIdleTimeout = 30 * time.Minute

func logLevel(s string) log.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	}
	return log.INFO
}

// openStores picks the backends: the durable store is MySQL when configured,
// else Redis, else memory; the session store is Redis with a TTL, else
// memory.
func openStores(cfg config.Config, rdb *redis.Client) (durable, sessions repository.Store, db *sql.DB) {
	switch {
	case cfg.HasDB():
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		if err := database.Migrate(db, cfg.MigrationsPath); err != nil {
			log.Fatalf("mysql: %v", err)
		}
		durable = repository.NewSQLStore(db)
		log.Infof("durable store: mysql %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	case rdb != nil:
		durable = repository.NewRedisStore(rdb, "cineverse:data", 0)
		log.Info("durable store: redis")
	default:
		durable = repository.NewMemoryStore()
		log.Warn("durable store: memory, data is lost on restart")
	}
	if rdb != nil {
		sessions = repository.NewRedisStore(rdb, "cineverse:session", cfg.SessionTTL)
	} else {
		sessions = repository.NewMemoryStore()
	}
	return durable, sessions, db
}

func main() {
	cfg := config.Load() // Load environment config
	log.SetLevel(logLevel(cfg.LogLevel))

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable: cache and rate limiting disabled")
	}
	durable, sessions, db := openStores(cfg, rdb)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	bank, err := quiz.LoadBank(cfg.QuestionsPath)
	if err != nil {
		// The quiz answers 503 until a bank is deployed; booking still works.
		log.Errorf("question bank: %v", err)
		bank = quiz.Bank{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.BookingEvents = queue.Discard{}
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.RabbitURL, cfg.BookingLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("booking-consumer: %v", err)
			}
		}()
	}

	bookings := service.NewBookingService(sessions, durable, cat, events)
	quizzes := service.NewQuizService(bank, sessions, durable)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := quizzes.Sweep(ctx, quizIdleTimeout); n > 0 {
					log.Debugf("[quiz] swept %d idle sessions", n)
				}
			}
		}
	}()

	e := echo.New() // Create Echo instance
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(echomw.Recover())
	e.Use(middleware.Session(cfg.SessionTTL))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	users := repository.NewUserRepo(durable)

	router.RegisterRoutes(e, &handler.ReadyHandler{DB: db, Redis: rdb})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, account.NewService(users, cfg.BcryptCost), repository.NewTokenRepo(durable)), cfg.JWTSecret, limit)
	router.RegisterPublic(e, handler.NewPublicHandler(cat), cache)
	router.RegisterBooking(e, handler.NewBookingHandler(bookings), cfg.JWTSecret, limit)
	router.RegisterQuiz(e, handler.NewQuizHandler(quizzes), cfg.JWTSecret)
	router.RegisterPrefs(e, &handler.PrefsHandler{Store: durable}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
