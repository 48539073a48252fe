package utxoorders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	for _, k := range []string{"SELL_CONTRACT", "SWAP_CONTRACT", "FEE_ADDRESS", "KAFKA_BROKERS", "FROM_BLOCK", "LISTEN"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte(
		"SELL_CONTRACT=sellAddr\nSWAP_CONTRACT=swapAddr\nFEE_ADDRESS=feeAddr\nKAFKA_BROKERS=a:9092,b:9092\nFROM_BLOCK=42\n",
	), 0o644))

	cfg, err := LoadConfig(env)
	require.NoError(t, err)
	assert.Equal(t, "sellAddr", cfg.SellContract)
	assert.Equal(t, "swapAddr", cfg.SwapContract)
	assert.Equal(t, "feeAddr", cfg.FeeAddress)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, uint64(42), cfg.FromBlock)
	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
}

func TestLoadConfigRequiresContracts(t *testing.T) {
	t.Setenv("SELL_CONTRACT", "")
	t.Setenv("SWAP_CONTRACT", "swap")
	t.Setenv("FEE_ADDRESS", "fee")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigSkipsMissingEnvFiles(t *testing.T) {
	for _, k := range []string{"SELL_CONTRACT", "SWAP_CONTRACT", "FEE_ADDRESS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("SELL_CONTRACT=sellAddr\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("SELL_CONTRACT=ignored\nSWAP_CONTRACT=swapAddr\nFEE_ADDRESS=feeAddr\n"), 0o644))

	cfg, err := LoadConfig(filepath.Join(dir, "missing.env"), first, second)
	require.NoError(t, err)
	assert.Equal(t, "sellAddr", cfg.SellContract, "earlier files win")
	assert.Equal(t, "swapAddr", cfg.SwapContract)
	assert.Equal(t, "feeAddr", cfg.FeeAddress)
}
