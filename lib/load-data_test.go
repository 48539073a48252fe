package lib

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shruggr/utxo-orders/models"
)

func TestLoaderCachesTransactions(t *testing.T) {
	utx := &models.UnsignedTransaction{
		Inputs: []models.BoxRef{{ID: models.NewOutpoint(bytes.Repeat([]byte{1}, 32), 0), Value: 10}},
		Outputs: []models.OutputCandidate{
			{Value: 10, Address: "12ZEw5Hcv1hTb6YUQJ69y1V7uhcoDz92PH", Registers: []models.Constant{models.NewLong(3)}},
		},
	}
	tx, err := BuildTx(utx)
	require.NoError(t, err)
	raw := tx.Bytes()
	txid := tx.TxID()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if !strings.Contains(r.URL.Path, txid) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	l, err := NewLoader(srv.URL, 16)
	require.NoError(t, err)

	got, err := l.LoadTx(context.Background(), txid)
	require.NoError(t, err)
	assert.Equal(t, txid, got.TxID())

	_, err = l.LoadTx(context.Background(), txid)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	box, err := l.LoadBox(context.Background(), models.NewOutpoint(tx.TxIDBytes(), 0))
	require.NoError(t, err)
	assert.Equal(t, "owner", box.Address)
	assert.Equal(t, uint64(10), box.Value)

	_, err = l.LoadBox(context.Background(), models.NewOutpoint(tx.TxIDBytes(), 5))
	assert.Error(t, err)

	_, err = l.LoadTx(context.Background(), strings.Repeat("00", 32))
	assert.ErrorIs(t, err, ErrTxNotFound)
}
