package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shruggr/utxo-orders/models"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func sampleTx() *models.UnsignedTransaction {
	return &models.UnsignedTransaction{
		Inputs:     []models.BoxRef{{ID: models.NewOutpoint(bytes.Repeat([]byte{1}, 32), 0), Value: 10}},
		DataInputs: []models.BoxRef{},
		Outputs: []models.OutputCandidate{
			{Value: 9, Address: "12ZEw5Hcv1hTb6YUQJ69y1V7uhcoDz92PH"},
			{Value: 1, Address: "15fioDrrk36NmHdRCtGTu2TMj6rPXzG3sn"},
		},
	}
}

func TestPublish(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w, log: zap.NewNop()}

	ev, err := NewEvent("reclaim", sampleTx())
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	require.Len(t, ev.Txid, 64)

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, ev.Txid, string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "reclaim", got.Action)
	assert.Equal(t, ev.RawTx, got.RawTx)
	assert.Len(t, got.Tx.Outputs, 2)
}

func TestPublishError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{writer: &recordingWriter{err: boom}, log: zap.NewNop()}

	ev, err := NewEvent("create", sampleTx())
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(context.Background(), ev), boom)
}
