package broadcast

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shruggr/utxo-orders/lib"
	"github.com/shruggr/utxo-orders/models"
)

// Event is what the external signer consumes.
type Event struct {
	ID     string                      `json:"id"`
	Action string                      `json:"action"`
	Txid   string                      `json:"txid"`
	RawTx  string                      `json:"rawtx"`
	Tx     *models.UnsignedTransaction `json:"tx"`
}

func NewEvent(action string, utx *models.UnsignedTransaction) (*Event, error) {
	tx, err := lib.BuildTx(utx)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:     uuid.NewString(),
		Action: action,
		Txid:   tx.TxID(),
		RawTx:  hex.EncodeToString(tx.Bytes()),
		Tx:     utx,
	}, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer hands unsigned transactions to the signing service.
type Producer struct {
	writer messageWriter
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		log: log,
	}
}

func (p *Producer) Publish(ctx context.Context, ev *Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Txid),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(ev.ID)},
			{Key: "action", Value: []byte(ev.Action)},
		},
	})
	if err != nil {
		return err
	}
	p.log.Info("published unsigned tx",
		zap.String("txid", ev.Txid),
		zap.String("action", ev.Action),
		zap.String("event", ev.ID),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
