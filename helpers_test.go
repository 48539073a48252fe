package utxoorders

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shruggr/utxo-orders/models"
)

const (
	sellContract = "sell-contract"
	swapContract = "swap-contract"
	feeAddress   = "fee-address"
	owner        = "9fOwnerAddress"
	fulfiller    = "9fFulfillerAddress"
)

func testConfig() *Config {
	return &Config{
		SellContract: sellContract,
		SwapContract: swapContract,
		FeeAddress:   feeAddress,
	}
}

func outpoint(seed byte, vout uint32) models.Outpoint {
	txid := make([]byte, 32)
	for i := range txid {
		txid[i] = seed
	}
	return models.NewOutpoint(txid, vout)
}

func plainBox(seed byte, address string, value uint64, tokens ...models.Token) *models.Box {
	return &models.Box{
		ID:      outpoint(seed, 0),
		Address: address,
		Value:   value,
		Tokens:  tokens,
		Height:  100,
	}
}

// outputBox materializes output i of tx as a box.
func outputBox(t *testing.T, tx *models.UnsignedTransaction, seed byte, i int) *models.Box {
	t.Helper()
	require.Greater(t, len(tx.Outputs), i)
	b, err := tx.Outputs[i].ToBox(outpoint(seed, uint32(i)))
	require.NoError(t, err)
	return b
}

func requireConserved(t *testing.T, tx *models.UnsignedTransaction, fee uint64) {
	t.Helper()
	require.Equal(t, tx.InputValue(), tx.OutputValue())
	require.Equal(t, fee, tx.Fee(feeAddress))
	require.Equal(t, tx.InputValue(), tx.OutputValue()-tx.Fee(feeAddress)+fee)
	require.Empty(t, tx.DataInputs)
}
