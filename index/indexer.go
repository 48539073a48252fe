package index

import (
	"context"
	"encoding/hex"

	"github.com/libsv/go-bt/v2"
	"go.uber.org/zap"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/lib"
	"github.com/shruggr/utxo-orders/models"
)

type BoxWriter interface {
	SaveBox(ctx context.Context, box *models.Box, kind *orders.Kind) error
	MarkSpent(ctx context.Context, outpoint models.Outpoint, spend []byte, state orders.State) (bool, error)
}

// Indexer records the boxes a transaction creates and the boxes it spends.
type Indexer struct {
	store     BoxWriter
	protocols *orders.Protocols
	log       *zap.Logger
}

func NewIndexer(store BoxWriter, protocols *orders.Protocols, log *zap.Logger) *Indexer {
	return &Indexer{store: store, protocols: protocols, log: log}
}

func (ix *Indexer) IndexTx(ctx context.Context, tx *bt.Tx) error {
	txid := tx.TxIDBytes()
	boxes, err := lib.BoxesFromTx(tx)
	if err != nil {
		return err
	}

	for _, input := range tx.Inputs {
		outpoint := models.NewOutpoint(input.PreviousTxID(), input.PreviousTxOutIndex)
		state := orders.ClassifySpend(outpoint, boxes)
		spent, err := ix.store.MarkSpent(ctx, outpoint, txid, state)
		if err != nil {
			return err
		}
		if spent {
			ix.log.Debug("box spent",
				zap.String("outpoint", outpoint.String()),
				zap.String("spend", hex.EncodeToString(txid)),
				zap.Stringer("state", state),
			)
		}
	}

	for _, box := range boxes {
		var kind *orders.Kind
		if p, ok := ix.protocols.For(box); ok {
			if !p.BoxSpec().Matches(box) {
				ix.log.Warn("malformed order box",
					zap.String("outpoint", box.ID.String()),
					zap.Stringer("kind", p.Kind()),
				)
			} else {
				k := p.Kind()
				kind = &k
				ix.log.Info("order opened",
					zap.String("outpoint", box.ID.String()),
					zap.Stringer("kind", k),
					zap.Uint64("value", box.Value),
				)
			}
		}
		if err := ix.store.SaveBox(ctx, box, kind); err != nil {
			return err
		}
	}
	return nil
}
