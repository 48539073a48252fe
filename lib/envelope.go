package lib

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/libsv/go-bt/v2"
	"github.com/libsv/go-bt/v2/bscript"
	"github.com/shruggr/utxo-orders/models"
)

// An output's locking script is the spending condition for its address
// followed by an envelope that never executes:
//
//	<predicate> OP_FALSE OP_IF "orders" address height tokenCount (tokenId amount)* register* OP_ENDIF
//
// Every envelope field is a serialized constant. The predicate is P2PKH for a
// base58 address, or the script itself when the address is hex. Outputs
// without a consistent envelope are foreign boxes whose address is the hex of
// their locking script.

var PATTERN = []byte{bscript.OpFALSE, bscript.OpIF, 6, 'o', 'r', 'd', 'e', 'r', 's'}

var (
	ErrNotEnvelope = errors.New("not an envelope")
	ErrBadAddress  = errors.New("address is neither base58 nor a hex script")
)

// LockingScript is the spending condition behind address. Hex is tried
// first since base58 decoding does not verify the checksum.
func LockingScript(address string) (*bscript.Script, error) {
	if b, err := hex.DecodeString(address); err == nil && len(b) > 0 {
		return bscript.NewFromBytes(b), nil
	}
	s, err := bscript.NewP2PKHFromAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, address)
	}
	return s, nil
}

func EnvelopeScript(c models.OutputCandidate) (*bscript.Script, error) {
	predicate, err := LockingScript(c.Address)
	if err != nil {
		return nil, err
	}

	parts := []models.Constant{
		models.NewString(c.Address),
		models.NewLong(uint64(c.CreationHeight)),
		models.NewLong(uint64(len(c.Tokens))),
	}
	for _, t := range c.Tokens {
		parts = append(parts, models.NewString(t.ID), models.NewLong(t.Amount))
	}
	parts = append(parts, c.Registers...)

	s := bscript.NewFromBytes(append(append([]byte{}, *predicate...), PATTERN...))
	for _, p := range parts {
		if err := s.AppendPushData(p.Bytes()); err != nil {
			return nil, err
		}
	}
	*s = append(*s, bscript.OpENDIF)
	return s, nil
}

// ParseEnvelope decodes the envelope of script and checks that the script
// really is locked to the address it names.
func ParseEnvelope(script []byte) (c models.OutputCandidate, err error) {
	idx := bytes.Index(script, PATTERN)
	if idx == -1 {
		err = fmt.Errorf("%w: no envelope", ErrNotEnvelope)
		return
	}
	body := script[idx+len(PATTERN):]
	if len(body) == 0 || body[len(body)-1] != bscript.OpENDIF {
		err = fmt.Errorf("%w: unterminated envelope", ErrNotEnvelope)
		return
	}

	parts, err := bscript.DecodeParts(body[:len(body)-1])
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrNotEnvelope, err)
		return
	}
	consts := make([]models.Constant, 0, len(parts))
	for _, p := range parts {
		k, e := models.ParseConstant(p)
		if e != nil {
			err = fmt.Errorf("%w: %v", ErrNotEnvelope, e)
			return
		}
		consts = append(consts, k)
	}
	if len(consts) < 3 {
		err = fmt.Errorf("%w: %d parts", ErrNotEnvelope, len(consts))
		return
	}

	if c.Address, err = consts[0].String(); err != nil {
		err = fmt.Errorf("%w: %v", ErrNotEnvelope, err)
		return
	}
	predicate, err := LockingScript(c.Address)
	if err != nil || !bytes.Equal(*predicate, script[:idx]) {
		err = fmt.Errorf("%w: script is not locked to %q", ErrNotEnvelope, c.Address)
		return
	}

	height, err := consts[1].Uint64()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrNotEnvelope, err)
		return
	}
	if height > math.MaxUint32 {
		err = fmt.Errorf("%w: height %d out of range", ErrNotEnvelope, height)
		return
	}
	c.CreationHeight = uint32(height)
	n, err := consts[2].Uint64()
	if err != nil || n > uint64(len(consts)-3)/2 {
		err = fmt.Errorf("%w: bad token count", ErrNotEnvelope)
		return
	}

	rest := consts[3:]
	for i := uint64(0); i < n; i++ {
		var t models.Token
		if t.ID, err = rest[2*i].String(); err != nil {
			err = fmt.Errorf("%w: %v", ErrNotEnvelope, err)
			return
		}
		if t.Amount, err = rest[2*i+1].Uint64(); err != nil {
			err = fmt.Errorf("%w: %v", ErrNotEnvelope, err)
			return
		}
		c.Tokens = append(c.Tokens, t)
	}
	c.Registers = rest[2*n:]
	if len(c.Registers) > models.RegisterCapacity {
		err = fmt.Errorf("%w: %d registers", ErrNotEnvelope, len(c.Registers))
	}
	return
}

// BoxFromOutput decodes output vout of the transaction txid.
func BoxFromOutput(txid []byte, vout uint32, out *bt.Output) (*models.Box, error) {
	id := models.NewOutpoint(txid, vout)
	var script []byte
	if out.LockingScript != nil {
		script = *out.LockingScript
	}

	c, err := ParseEnvelope(script)
	if errors.Is(err, ErrNotEnvelope) {
		return &models.Box{
			ID:      id,
			Address: hex.EncodeToString(script),
			Value:   out.Satoshis,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	c.Value = out.Satoshis
	return c.ToBox(id)
}

func BoxesFromTx(tx *bt.Tx) (boxes []*models.Box, err error) {
	txid := tx.TxIDBytes()
	for vout, out := range tx.Outputs {
		box, err := BoxFromOutput(txid, uint32(vout), out)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	return
}

// BuildTx renders an unsigned transaction in ledger wire form. Unlocking
// scripts are left empty for the signer.
func BuildTx(utx *models.UnsignedTransaction) (*bt.Tx, error) {
	tx := bt.NewTx()
	for _, in := range utx.Inputs {
		input := &bt.Input{
			PreviousTxOutIndex: in.ID.Vout(),
			PreviousTxSatoshis: in.Value,
			UnlockingScript:    &bscript.Script{},
			SequenceNumber:     bt.DefaultSequenceNumber,
		}
		if err := input.PreviousTxIDAdd(in.ID.Txid()); err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, input)
	}
	for _, out := range utx.Outputs {
		script, err := EnvelopeScript(out)
		if err != nil {
			return nil, err
		}
		tx.AddOutput(&bt.Output{
			Satoshis:      out.Value,
			LockingScript: script,
		})
	}
	return tx, nil
}
