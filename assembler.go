package utxoorders

import (
	"encoding/hex"
	"math/bits"

	"github.com/shruggr/utxo-orders/models"
)

// CreateCandidate builds an output box candidate. Slices are copied.
func CreateCandidate(
	value uint64,
	address string,
	tokens []models.Token,
	registers []models.Constant,
	height uint32,
) (models.OutputCandidate, error) {
	if value == 0 {
		return models.OutputCandidate{}, errorf(ErrInvalidValue, "output to %s has zero value", address)
	}
	if len(registers) > models.RegisterCapacity {
		return models.OutputCandidate{}, errorf(ErrRegisterOverflow,
			"%d registers, capacity %d", len(registers), models.RegisterCapacity)
	}
	for _, t := range tokens {
		if t.Amount == 0 {
			return models.OutputCandidate{}, errorf(ErrInvalidValue, "token %s has zero amount", t.ID)
		}
	}

	return models.OutputCandidate{
		Value:          value,
		Address:        address,
		Tokens:         append([]models.Token{}, tokens...),
		Registers:      append([]models.Constant{}, registers...),
		CreationHeight: height,
	}, nil
}

// Assembler checks conservation and packages inputs and outputs into an
// unsigned transaction. It never decides who pays the fee.
type Assembler struct {
	FeeAddress string
}

func (a Assembler) FeeOutput(amount uint64, height uint32) (models.OutputCandidate, error) {
	return CreateCandidate(amount, a.FeeAddress, nil, nil, height)
}

func (a Assembler) Assemble(inputs []*models.Box, outputs []models.OutputCandidate) (*models.UnsignedTransaction, error) {
	var in, out uint64
	var carry uint64
	for _, b := range inputs {
		if in, carry = bits.Add64(in, b.Value, 0); carry != 0 {
			return nil, errorf(ErrImbalancedValue, "input value overflows")
		}
	}
	for _, o := range outputs {
		if out, carry = bits.Add64(out, o.Value, 0); carry != 0 {
			return nil, errorf(ErrImbalancedValue, "output value overflows")
		}
	}
	if in != out {
		return nil, errorf(ErrImbalancedValue, "inputs %d, outputs %d", in, out)
	}
	if err := checkTokens(inputs, outputs); err != nil {
		return nil, err
	}

	tx := &models.UnsignedTransaction{
		Inputs:     make([]models.BoxRef, 0, len(inputs)),
		DataInputs: []models.BoxRef{},
		Outputs:    append([]models.OutputCandidate{}, outputs...),
	}
	for _, b := range inputs {
		tx.Inputs = append(tx.Inputs, models.RefOf(b))
	}
	return tx, nil
}

// Tokens may be burned but not created, except the id minted from the
// first input.
func checkTokens(inputs []*models.Box, outputs []models.OutputCandidate) error {
	var minted string
	if len(inputs) > 0 {
		minted = hex.EncodeToString(inputs[0].ID)
	}

	available := map[string]uint64{}
	var carry uint64
	for _, b := range inputs {
		for _, t := range b.Tokens {
			if available[t.ID], carry = bits.Add64(available[t.ID], t.Amount, 0); carry != 0 {
				return errorf(ErrImbalancedValue, "token %s input amount overflows", t.ID)
			}
		}
	}
	spent := map[string]uint64{}
	for _, o := range outputs {
		for _, t := range o.Tokens {
			if spent[t.ID], carry = bits.Add64(spent[t.ID], t.Amount, 0); carry != 0 {
				return errorf(ErrImbalancedValue, "token %s output amount overflows", t.ID)
			}
		}
	}
	for id, amt := range spent {
		if id == minted {
			continue
		}
		if amt > available[id] {
			return errorf(ErrImbalancedValue, "token %s: outputs %d exceed inputs %d", id, amt, available[id])
		}
	}
	return nil
}
