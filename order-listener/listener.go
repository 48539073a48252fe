package main

import (
	"context"
	"log"
	"sync"

	"github.com/GorillaPool/go-junglebus"
	jbModels "github.com/GorillaPool/go-junglebus/models"
	"github.com/libsv/go-bt/v2"
	"go.uber.org/zap"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/index"
	"github.com/shruggr/utxo-orders/lib"
)

const INDEXER = "orders"

var (
	logger  *zap.Logger
	store   *index.Store
	indexer *index.Indexer
)

func main() {
	cfg, err := orders.LoadConfig("../.env")
	if err != nil {
		log.Fatal(err)
	}
	if logger, err = zap.NewProduction(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := index.Migrate(cfg.Migrations, cfg.Postgres); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if store, err = index.Open(cfg.Postgres); err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()
	indexer = index.NewIndexer(store, orders.NewProtocols(cfg), logger)

	loader, err := lib.NewLoader(cfg.JungleBus, 1)
	if err != nil {
		logger.Fatal("junglebus", zap.Error(err))
	}

	ctx := context.Background()
	fromBlock, err := store.Progress(ctx, INDEXER)
	if err != nil {
		logger.Fatal("progress", zap.Error(err))
	}
	if fromBlock > 0 {
		fromBlock++
	}
	if fromBlock < cfg.FromBlock {
		fromBlock = cfg.FromBlock
	}
	logger.Info("subscribing", zap.String("subscription", cfg.Subscription), zap.Uint64("from", fromBlock))

	var wg sync.WaitGroup
	wg.Add(1)
	if _, err = loader.JungleBus().Subscribe(
		ctx,
		cfg.Subscription,
		fromBlock,
		junglebus.EventHandler{
			OnTransaction: onTransaction,
			OnMempool:     onTransaction,
			OnStatus: func(status *jbModels.ControlResponse) {
				logger.Info("status",
					zap.Uint32("code", uint32(status.StatusCode)),
					zap.String("message", status.Message),
					zap.Uint32("block", uint32(status.Block)),
				)
				if status.StatusCode == 200 {
					if err := store.SetProgress(ctx, INDEXER, uint32(status.Block)); err != nil {
						logger.Error("set progress", zap.Error(err))
					}
				}
			},
			OnError: func(err error) {
				logger.Error("subscription", zap.Error(err))
			},
		},
	); err != nil {
		logger.Error("failed getting subscription", zap.Error(err))
		wg.Done()
	}

	wg.Wait()
}

// Transactions are indexed in delivery order so a box is always saved
// before the transaction spending it.
func onTransaction(txResp *jbModels.TransactionResponse) {
	tx, err := bt.NewTxFromBytes(txResp.Transaction)
	if err != nil {
		logger.Error("parse tx", zap.String("txid", txResp.Id), zap.Error(err))
		return
	}
	if err := indexer.IndexTx(context.Background(), tx); err != nil {
		logger.Error("index tx",
			zap.String("txid", txResp.Id),
			zap.Uint64("height", uint64(txResp.BlockHeight)),
			zap.Error(err),
		)
		return
	}
	logger.Debug("indexed", zap.String("txid", txResp.Id), zap.Uint64("height", uint64(txResp.BlockHeight)))
}
