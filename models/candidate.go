package models

// OutputCandidate is a box that a transaction will create once signed.
type OutputCandidate struct {
	Value          uint64     `json:"value"`
	Address        string     `json:"address"`
	Tokens         []Token    `json:"tokens"`
	Registers      []Constant `json:"registers"`
	CreationHeight uint32     `json:"creationHeight"`
}

// BoxRef points at a box spent (or read) by a transaction.
type BoxRef struct {
	ID      Outpoint `json:"boxId"`
	Address string   `json:"address"`
	Value   uint64   `json:"value"`
}

func RefOf(b *Box) BoxRef {
	return BoxRef{ID: b.ID, Address: b.Address, Value: b.Value}
}

type UnsignedTransaction struct {
	Inputs     []BoxRef          `json:"inputs"`
	DataInputs []BoxRef          `json:"dataInputs"`
	Outputs    []OutputCandidate `json:"outputs"`
}

// Fee sums the outputs paid to feeAddress.
func (tx *UnsignedTransaction) Fee(feeAddress string) (fee uint64) {
	for _, out := range tx.Outputs {
		if out.Address == feeAddress {
			fee += out.Value
		}
	}
	return
}

func (tx *UnsignedTransaction) InputValue() (total uint64) {
	for _, in := range tx.Inputs {
		total += in.Value
	}
	return
}

func (tx *UnsignedTransaction) OutputValue() (total uint64) {
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return
}

// ToBox is the box c becomes once its transaction is accepted under id.
func (c OutputCandidate) ToBox(id Outpoint) (*Box, error) {
	regs, err := NewRegisters(c.Registers...)
	if err != nil {
		return nil, err
	}
	return &Box{
		ID:        id,
		Address:   c.Address,
		Value:     c.Value,
		Tokens:    append([]Token{}, c.Tokens...),
		Registers: regs,
		Height:    c.CreationHeight,
	}, nil
}
