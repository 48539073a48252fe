package index

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/lib"
	"github.com/shruggr/utxo-orders/models"
)

// Addresses that lock to real scripts: base58 P2PKH or hex for contracts.
const (
	sellContract = "a914555555555555555555555555555555555555555587"
	swapContract = "a914666666666666666666666666666666666666666687"
	feeAddress   = "15fioDrrk36NmHdRCtGTu2TMj6rPXzG3sn"
	ownerAddress = "12ZEw5Hcv1hTb6YUQJ69y1V7uhcoDz92PH"
	buyerAddress = "147Us9aEq2PvBC5wobBJw1yEpQEbPKzssA"
)

type memStore struct {
	boxes map[string]*models.Box
	kinds map[string]*orders.Kind
	spent map[string]orders.State
}

func newMemStore() *memStore {
	return &memStore{
		boxes: map[string]*models.Box{},
		kinds: map[string]*orders.Kind{},
		spent: map[string]orders.State{},
	}
}

func (m *memStore) SaveBox(_ context.Context, box *models.Box, kind *orders.Kind) error {
	m.boxes[box.ID.String()] = box
	m.kinds[box.ID.String()] = kind
	return nil
}

func (m *memStore) MarkSpent(_ context.Context, outpoint models.Outpoint, _ []byte, state orders.State) (bool, error) {
	if _, ok := m.boxes[outpoint.String()]; !ok {
		return false, nil
	}
	m.spent[outpoint.String()] = state
	return true, nil
}

func testProtocols() *orders.Protocols {
	return orders.NewProtocols(&orders.Config{
		SellContract: sellContract,
		SwapContract: swapContract,
		FeeAddress:   feeAddress,
	})
}

func TestIndexerTracksSellLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ps := testProtocols()
	ix := NewIndexer(store, ps, zap.NewNop())

	funding := &models.Box{
		ID:      models.NewOutpoint(bytes.Repeat([]byte{7}, 32), 0),
		Address: ownerAddress,
		Value:   1_000_000,
	}
	require.NoError(t, store.SaveBox(ctx, funding, nil))

	create, err := ps.Sell.Create(orders.SellParams{Owner: ownerAddress, AskAmount: 500_000}, funding, 10, 1_000)
	require.NoError(t, err)
	createTx, err := lib.BuildTx(create)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTx(ctx, createTx))

	orderID := models.NewOutpoint(createTx.TxIDBytes(), 0)
	order := store.boxes[orderID.String()]
	require.NotNil(t, order)
	require.NotNil(t, store.kinds[orderID.String()])
	assert.Equal(t, orders.Sell, *store.kinds[orderID.String()])
	assert.Nil(t, store.kinds[models.NewOutpoint(createTx.TxIDBytes(), 1).String()], "fee box is not an order")
	_, fundingSpent := store.spent[funding.ID.String()]
	assert.True(t, fundingSpent)

	buyer := &models.Box{
		ID:      models.NewOutpoint(bytes.Repeat([]byte{8}, 32), 0),
		Address: buyerAddress,
		Value:   500_000,
	}
	require.NoError(t, store.SaveBox(ctx, buyer, nil))

	exec, err := ps.Sell.Execute(order, buyer, 11, 1_000)
	require.NoError(t, err)
	execTx, err := lib.BuildTx(exec)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTx(ctx, execTx))

	assert.Equal(t, orders.Fulfilled, store.spent[orderID.String()])
}

func TestIndexerReclaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ps := testProtocols()
	ix := NewIndexer(store, ps, zap.NewNop())

	regs, err := models.NewRegisters(models.NewString(ownerAddress), models.NewLong(5))
	require.NoError(t, err)
	order := &models.Box{
		ID:        models.NewOutpoint(bytes.Repeat([]byte{9}, 32), 0),
		Address:   sellContract,
		Value:     10_000,
		Registers: regs,
	}
	require.NoError(t, store.SaveBox(ctx, order, nil))

	reclaim, err := ps.Sell.Reclaim(order, 12, 1_000)
	require.NoError(t, err)
	tx, err := lib.BuildTx(reclaim)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTx(ctx, tx))

	assert.Equal(t, orders.Reclaimed, store.spent[order.ID.String()])
	refund := store.boxes[models.NewOutpoint(tx.TxIDBytes(), 0).String()]
	require.NotNil(t, refund)
	assert.Equal(t, ownerAddress, refund.Address)
	assert.Equal(t, uint64(9_000), refund.Value)
}

func TestIndexerMalformedOrderIsPlainBox(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ix := NewIndexer(store, testProtocols(), zap.NewNop())

	utx := &models.UnsignedTransaction{
		Inputs:  []models.BoxRef{{ID: models.NewOutpoint(bytes.Repeat([]byte{3}, 32), 0), Value: 5}},
		Outputs: []models.OutputCandidate{{Value: 5, Address: sellContract}},
	}
	tx, err := lib.BuildTx(utx)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTx(ctx, tx))

	id := models.NewOutpoint(tx.TxIDBytes(), 0).String()
	require.Contains(t, store.boxes, id)
	assert.Nil(t, store.kinds[id])
}
