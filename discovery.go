package utxoorders

import (
	"context"

	"github.com/shruggr/utxo-orders/models"
)

// Finder looks up unspent boxes that satisfy spec and, when accept is not
// nil, accept. Implementations keep searching until they have a full result
// or run out of boxes. Results are treated as hints: callers re-check them.
type Finder interface {
	FindBoxes(ctx context.Context, spec BoxSpec, accept func(*models.Box) bool) ([]*models.Box, error)
}

// FindCounterparty returns the first discovered box that really fulfills the
// order, or ErrNotFound when there is none.
func FindCounterparty(ctx context.Context, f Finder, p Protocol, order *models.Box) (*models.Box, error) {
	spec, err := p.MatchSpec(order)
	if err != nil {
		return nil, err
	}
	fulfills := func(b *models.Box) bool {
		return b != nil && p.CheckCounterparty(order, b) == nil
	}
	candidates, err := f.FindBoxes(ctx, spec, fulfills)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if fulfills(c) {
			return c, nil
		}
	}
	return nil, errorf(ErrNotFound, "no counterparty for %s order %s", p.Kind(), order.ID)
}

// Protocols resolves the protocol governing a box by its contract address.
type Protocols struct {
	Sell *SellProtocol
	Swap *SwapProtocol
}

func NewProtocols(cfg *Config) *Protocols {
	return &Protocols{
		Sell: NewSellProtocol(cfg),
		Swap: NewSwapProtocol(cfg),
	}
}

func (ps *Protocols) For(box *models.Box) (Protocol, bool) {
	if box == nil {
		return nil, false
	}
	switch box.Address {
	case ps.Sell.ContractAddress:
		return ps.Sell, true
	case ps.Swap.ContractAddress:
		return ps.Swap, true
	}
	return nil, false
}

func (ps *Protocols) ContractAddresses() []string {
	return []string{ps.Sell.ContractAddress, ps.Swap.ContractAddress}
}
