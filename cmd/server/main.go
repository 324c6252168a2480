package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/go-petr/beverage-pos/internal/catalogrepo"
	"github.com/go-petr/beverage-pos/internal/ledgerrepo"
	"github.com/go-petr/beverage-pos/internal/middleware"
	"github.com/go-petr/beverage-pos/internal/sessiondelivery"
	"github.com/go-petr/beverage-pos/internal/sessionservice"
	"github.com/go-petr/beverage-pos/internal/settlementrepo"
	"github.com/go-petr/beverage-pos/internal/settlementservice"
	"github.com/go-petr/beverage-pos/pkg/configpkg"
	"github.com/go-petr/beverage-pos/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	server, err := createServer(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = server.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func createServer(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	ctx := logger.WithContext(context.Background())

	catalogRepo := catalogrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn, config.LedgerLabel)
	settlementRepo := settlementrepo.NewRepoPGS(conn, config.LedgerLabel)

	// The catalog snapshot is loaded once; without it there is no session.
	catalog, err := catalogRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	settlementService := settlementservice.New(settlementRepo)
	session := sessionservice.New(catalog, settlementService, ledgerRepo)

	sessionHandler := sessiondelivery.NewHandler(session)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.GET("/session", sessionHandler.Get)
	server.POST("/session/commands", sessionHandler.Command)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("command", sessiondelivery.ValidCommand)
		if err != nil {
			return nil, errors.New("cannot register command validator")
		}
	}

	return server, nil
}
