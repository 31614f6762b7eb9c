package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-directory/internal/cache"
	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/database"
	"github.com/iliyamo/user-directory/internal/handler"
	"github.com/iliyamo/user-directory/internal/queue"
	"github.com/iliyamo/user-directory/internal/repository"
	"github.com/iliyamo/user-directory/internal/router"
	"github.com/iliyamo/user-directory/internal/service"
	"github.com/iliyamo/user-directory/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// A nil client is fine: the gateway degrades to always-miss and the rate
	// limiter disables itself.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, caching and rate limiting disabled")
	}

	tokens := token.NewManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	var events service.EventPublisher
	if cfg.AmqpURL != "" {
		events = queue.NewPublisher(cfg.AmqpURL)
	}

	accounts := repository.NewAccountRepo(db)
	authSvc := service.NewAuthService(accounts, tokens, cfg.BcryptCost, events)
	acctSvc := service.NewAccountService(accounts, cache.New(rdb), cfg.CacheTTL)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), tokens, rdb, cfg)
	router.RegisterAccounts(e, handler.NewAccountHandler(acctSvc), tokens)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
