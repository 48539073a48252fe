package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "9f4QF8AD1nQ3nJahQVkMj8hFSVVzVom77b52JU7EW71Zexg6N8v", "héllo"} {
		got, err := NewString(s).String()
		require.NoError(t, err)
		assert.Equal(t, s, got)

		parsed, err := ParseConstant(NewString(s).Bytes())
		require.NoError(t, err)
		got, err = parsed.String()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestConstantLongRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 500_000, math.MaxInt64, math.MaxUint64} {
		got, err := NewLong(v).Uint64()
		require.NoError(t, err)
		assert.Equal(t, v, got)

		parsed, err := ParseConstant(NewLong(v).Bytes())
		require.NoError(t, err)
		got, err = parsed.Uint64()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestConstantTypeMismatch(t *testing.T) {
	_, err := NewLong(7).String()
	assert.ErrorIs(t, err, ErrConstantType)

	_, err = NewString("7").Uint64()
	assert.ErrorIs(t, err, ErrConstantType)
}

func TestParseConstantRejectsGarbage(t *testing.T) {
	_, err := ParseConstant(nil)
	assert.Error(t, err)

	_, err = ParseConstant([]byte{byte(SLong), 1, 2})
	assert.Error(t, err)

	_, err = ParseConstant([]byte{0x42, 1})
	assert.Error(t, err)
}

func TestConstantJSON(t *testing.T) {
	in := []Constant{NewString("owner"), NewLong(42), NewString("")}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out []Constant
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 3)
	for i := range in {
		assert.True(t, in[i].Equal(out[i]), "constant %d", i)
	}
}

func TestConstantEncodings(t *testing.T) {
	c := NewBytes([]byte{0x00, 0x01, 0xff})
	assert.Equal(t, "0001ff", c.Base16())
	assert.NotEmpty(t, c.Base58())
}

func TestOutpoint(t *testing.T) {
	txid := make([]byte, 32)
	txid[0] = 0xab
	o := NewOutpoint(txid, 3)
	assert.Len(t, o, 36)
	assert.Equal(t, txid, o.Txid())
	assert.Equal(t, uint32(3), o.Vout())

	parsed, err := NewOutpointFromString(o.String())
	require.NoError(t, err)
	assert.Equal(t, o, parsed)

	_, err = NewOutpointFromString("abcd")
	assert.Error(t, err)
}

func TestRegisters(t *testing.T) {
	r, err := NewRegisters(NewString("a"), NewLong(1))
	require.NoError(t, err)

	c, ok := r.Get(1)
	require.True(t, ok)
	v, err := c.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	_, ok = r.Get(2)
	assert.False(t, ok)
	_, ok = r.Get(-1)
	assert.False(t, ok)
	assert.Len(t, r.Dense(), 2)

	_, err = NewRegisters(make([]Constant, RegisterCapacity+1)...)
	assert.Error(t, err)
}

func TestBoxJSONRoundTrip(t *testing.T) {
	regs, err := NewRegisters(NewString("owner"), NewLong(10))
	require.NoError(t, err)
	box := Box{
		ID:        NewOutpoint(make([]byte, 32), 1),
		Address:   "addr",
		Value:     100,
		Tokens:    []Token{{ID: "tok", Amount: 5}},
		Registers: regs,
		Height:    7,
	}
	data, err := json.Marshal(box)
	require.NoError(t, err)

	var out Box
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, box.ID, out.ID)
	assert.Equal(t, box.Tokens, out.Tokens)
	assert.Len(t, out.Registers.Dense(), 2)
	assert.Nil(t, out.Registers[2])
}

func TestUnsignedTransactionTotals(t *testing.T) {
	tx := &UnsignedTransaction{
		Inputs: []BoxRef{{Value: 10}, {Value: 5}},
		Outputs: []OutputCandidate{
			{Value: 12, Address: "owner"},
			{Value: 3, Address: "fee"},
		},
	}
	assert.Equal(t, uint64(15), tx.InputValue())
	assert.Equal(t, uint64(15), tx.OutputValue())
	assert.Equal(t, uint64(3), tx.Fee("fee"))
}
