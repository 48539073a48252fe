package utxoorders

import (
	"bytes"

	"github.com/shruggr/utxo-orders/models"
)

type State int

const (
	Open State = iota
	Reclaimed
	Fulfilled
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Reclaimed:
		return "reclaimed"
	case Fulfilled:
		return "fulfilled"
	}
	return "unknown"
}

// CanTransition allows only Open -> Reclaimed and Open -> Fulfilled.
func (s State) CanTransition(to State) bool {
	return s == Open && (to == Reclaimed || to == Fulfilled)
}

// ClassifySpend decides how an order box was consumed from the outputs of the
// spending transaction: a payout marked with the order id means it was filled.
func ClassifySpend(order models.Outpoint, outputs []*models.Box) State {
	for _, out := range outputs {
		c, ok := out.Registers.Get(0)
		if ok && c.Type == models.SCollByte && bytes.Equal(c.Payload, order) {
			return Fulfilled
		}
	}
	return Reclaimed
}
