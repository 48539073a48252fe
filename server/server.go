package main

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/api"
	"github.com/shruggr/utxo-orders/broadcast"
	_ "github.com/shruggr/utxo-orders/docs"
	"github.com/shruggr/utxo-orders/index"
	"github.com/shruggr/utxo-orders/lib"
)

const CACHE_SIZE = 1024

func main() {
	cfg, err := orders.LoadConfig("../.env")
	if err != nil {
		log.Fatal(err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := index.Migrate(cfg.Migrations, cfg.Postgres); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	store, err := index.Open(cfg.Postgres)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	loader, err := lib.NewLoader(cfg.JungleBus, CACHE_SIZE)
	if err != nil {
		logger.Fatal("junglebus", zap.Error(err))
	}

	s := &api.Server{
		Boxes:     store,
		Fallback:  api.BoxSourceFunc(loader.LoadBox),
		Finder:    store,
		Protocols: orders.NewProtocols(cfg),
		Txs:       loader,
		Log:       logger,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := broadcast.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		s.Publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, unsigned transactions are only returned")
	}

	r := gin.Default()
	s.Routes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logger.Info("listening", zap.String("addr", cfg.Listen))
	if err := r.Run(cfg.Listen); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
