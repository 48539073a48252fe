package utxoorders

import (
	"github.com/shruggr/utxo-orders/models"
)

/*
SwapProtocol holds a token that is exchanged for another token.

	R4 orderOwner      Coll[Byte]  address receiving the swapped tokens
	R5 orderTokenId    Coll[Byte]  token wanted in exchange
	R6 orderAmount     Long        minimum amount of orderTokenId
	tokens(0)                      the token on offer

Two swap orders fulfill each other when each offers what the other wants.
The transaction fee is split evenly between them.
*/
type SwapProtocol struct {
	ContractAddress string
	Assembler       Assembler
}

type SwapParams struct {
	Owner         string
	DesiredToken  string
	DesiredAmount uint64
}

func NewSwapProtocol(cfg *Config) *SwapProtocol {
	return &SwapProtocol{
		ContractAddress: cfg.SwapContract,
		Assembler:       Assembler{FeeAddress: cfg.FeeAddress},
	}
}

func (p *SwapProtocol) Kind() Kind { return Swap }

func (p *SwapProtocol) BoxSpec() BoxSpec {
	addr := p.ContractAddress
	return NewBoxSpec(&addr, nil, []*RegisterSpec{
		AnyRegister(models.SCollByte),
		AnyRegister(models.SCollByte),
		AnyRegister(models.SLong),
	}, []*TokenSpec{
		{Amount: AtLeast(1)},
	})
}

func (p *SwapProtocol) Create(params SwapParams, funding *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	if funding == nil || funding.Value <= fee {
		var v uint64
		if funding != nil {
			v = funding.Value
		}
		return nil, errorf(ErrInsufficientFunds, "funding value %d does not cover fee %d", v, fee)
	}
	if len(funding.Tokens) == 0 {
		return nil, errorf(ErrInsufficientFunds, "funding box %s carries no token to offer", funding.ID)
	}

	order, err := CreateCandidate(
		funding.Value-fee,
		p.ContractAddress,
		funding.Tokens,
		[]models.Constant{
			models.NewString(params.Owner),
			models.NewString(params.DesiredToken),
			models.NewLong(params.DesiredAmount),
		},
		height,
	)
	if err != nil {
		return nil, err
	}
	feeOut, err := p.Assembler.FeeOutput(fee, height)
	if err != nil {
		return nil, err
	}
	return p.Assembler.Assemble([]*models.Box{funding}, []models.OutputCandidate{order, feeOut})
}

func (p *SwapProtocol) Reclaim(order *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	return reclaim(p, p.Assembler, order, height, fee)
}

// Execute settles order against another swap order. Each owner receives the
// other box's tokens; order pays fee/2 and the counterparty the remainder.
func (p *SwapProtocol) Execute(order, counterparty *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	if err := p.CheckCounterparty(order, counterparty); err != nil {
		return nil, err
	}

	orderFee := fee / 2
	counterFee := fee - orderFee
	if order.Value <= orderFee || counterparty.Value <= counterFee {
		return nil, errorf(ErrInsufficientFunds, "box values %d and %d do not cover fee shares %d and %d",
			order.Value, counterparty.Value, orderFee, counterFee)
	}
	orderOwner, err := ownerOf(order)
	if err != nil {
		return nil, err
	}
	counterOwner, err := ownerOf(counterparty)
	if err != nil {
		return nil, err
	}

	toOrderOwner, err := CreateCandidate(order.Value-orderFee, orderOwner, counterparty.Tokens, payoutMarker(order), height)
	if err != nil {
		return nil, err
	}
	toCounterOwner, err := CreateCandidate(counterparty.Value-counterFee, counterOwner, order.Tokens, payoutMarker(counterparty), height)
	if err != nil {
		return nil, err
	}
	feeOut, err := p.Assembler.FeeOutput(fee, height)
	if err != nil {
		return nil, err
	}
	return p.Assembler.Assemble(
		[]*models.Box{order, counterparty},
		[]models.OutputCandidate{toOrderOwner, toCounterOwner, feeOut},
	)
}

// MatchSpec requires another swap order offering at least the desired amount
// of the desired token and wanting the token order offers. How much it wants
// is checked by CheckCounterparty.
func (p *SwapProtocol) MatchSpec(order *models.Box) (BoxSpec, error) {
	if err := requireShape(p, order); err != nil {
		return BoxSpec{}, err
	}
	c, _ := order.Registers.Get(1)
	desiredToken, err := c.String()
	if err != nil {
		return BoxSpec{}, errorf(ErrSpecMismatch, "box %s desired token: %v", order.ID, err)
	}
	desiredAmount, err := longAt(order, 2)
	if err != nil {
		return BoxSpec{}, err
	}
	offered := order.Tokens[0]

	addr := p.ContractAddress
	return NewBoxSpec(&addr, nil,
		[]*RegisterSpec{
			AnyRegister(models.SCollByte),
			ExactRegister(models.NewString(offered.ID)),
			AnyRegister(models.SLong),
		},
		[]*TokenSpec{
			{ID: desiredToken, Amount: AtLeast(desiredAmount)},
		},
	), nil
}

// CheckCounterparty holds when each order satisfies the other's match spec,
// so the result does not depend on which box is passed first.
func (p *SwapProtocol) CheckCounterparty(order, counterparty *models.Box) error {
	spec, err := p.MatchSpec(order)
	if err != nil {
		return err
	}
	if !spec.Matches(counterparty) {
		return errorf(ErrSpecMismatch, "counterparty does not satisfy swap order %s", order.ID)
	}
	if err := requireDistinct(order, counterparty); err != nil {
		return err
	}
	reverse, err := p.MatchSpec(counterparty)
	if err != nil {
		return err
	}
	if !reverse.Matches(order) {
		return errorf(ErrSpecMismatch, "swap order %s does not satisfy counterparty %s", order.ID, counterparty.ID)
	}
	return nil
}
