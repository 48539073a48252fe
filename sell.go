package utxoorders

import (
	"slices"

	"github.com/shruggr/utxo-orders/models"
)

/*
SellProtocol locks value at the sell contract until someone pays the owner at
least askAmount.

	R4 orderOwner  Coll[Byte]  address receiving the payout
	R5 askAmount   Long        minimum payout value

The contract accepts a spend when an output pays orderOwner at least askAmount
and carries R4 == SELF.id, or when orderOwner signs.
*/
type SellProtocol struct {
	ContractAddress string
	// Contracts lists every order contract. Boxes locked there never fulfill
	// a sell order.
	Contracts []string
	Assembler Assembler
}

type SellParams struct {
	Owner     string
	AskAmount uint64
}

func NewSellProtocol(cfg *Config) *SellProtocol {
	return &SellProtocol{
		ContractAddress: cfg.SellContract,
		Contracts:       []string{cfg.SellContract, cfg.SwapContract},
		Assembler:       Assembler{FeeAddress: cfg.FeeAddress},
	}
}

func (p *SellProtocol) Kind() Kind { return Sell }

func (p *SellProtocol) BoxSpec() BoxSpec {
	addr := p.ContractAddress
	value := AtLeast(1)
	return NewBoxSpec(&addr, &value, []*RegisterSpec{
		AnyRegister(models.SCollByte),
		AnyRegister(models.SLong),
	}, nil)
}

func (p *SellProtocol) Create(params SellParams, funding *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	if funding == nil || funding.Value <= fee {
		var v uint64
		if funding != nil {
			v = funding.Value
		}
		return nil, errorf(ErrInsufficientFunds, "funding value %d does not cover fee %d", v, fee)
	}
	if len(funding.Tokens) > 0 {
		return nil, errorf(ErrSpecMismatch, "funding box %s carries tokens, a sell order holds value only", funding.ID)
	}

	order, err := CreateCandidate(
		funding.Value-fee,
		p.ContractAddress,
		nil,
		[]models.Constant{
			models.NewString(params.Owner),
			models.NewLong(params.AskAmount),
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

func (p *SellProtocol) Reclaim(order *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	return reclaim(p, p.Assembler, order, height, fee)
}

// Execute pays the whole counterparty value to the owner and the order value,
// less the fee, to the counterparty's address.
func (p *SellProtocol) Execute(order, counterparty *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	if err := p.CheckCounterparty(order, counterparty); err != nil {
		return nil, err
	}
	if order.Value <= fee {
		return nil, errorf(ErrInsufficientFunds, "order value %d does not cover fee %d", order.Value, fee)
	}
	owner, err := ownerOf(order)
	if err != nil {
		return nil, err
	}

	payout, err := CreateCandidate(counterparty.Value, owner, nil, payoutMarker(order), height)
	if err != nil {
		return nil, err
	}
	rewardTokens := append(append([]models.Token{}, order.Tokens...), counterparty.Tokens...)
	reward, err := CreateCandidate(order.Value-fee, counterparty.Address, rewardTokens, nil, height)
	if err != nil {
		return nil, err
	}
	feeOut, err := p.Assembler.FeeOutput(fee, height)
	if err != nil {
		return nil, err
	}
	return p.Assembler.Assemble(
		[]*models.Box{order, counterparty},
		[]models.OutputCandidate{payout, reward, feeOut},
	)
}

// MatchSpec accepts any box worth at least the ask.
func (p *SellProtocol) MatchSpec(order *models.Box) (BoxSpec, error) {
	if err := requireShape(p, order); err != nil {
		return BoxSpec{}, err
	}
	ask, err := longAt(order, 1)
	if err != nil {
		return BoxSpec{}, err
	}
	value := AtLeast(ask)
	return NewBoxSpec(nil, &value, nil, nil), nil
}

// CheckCounterparty also refuses boxes locked at an order contract: paying the
// reward back to a contract address would strand it.
func (p *SellProtocol) CheckCounterparty(order, counterparty *models.Box) error {
	spec, err := p.MatchSpec(order)
	if err != nil {
		return err
	}
	if !spec.Matches(counterparty) {
		return errorf(ErrSpecMismatch, "counterparty does not satisfy sell order %s", order.ID)
	}
	if err := requireDistinct(order, counterparty); err != nil {
		return err
	}
	if counterparty.Address == p.ContractAddress || slices.Contains(p.Contracts, counterparty.Address) {
		return errorf(ErrSpecMismatch, "box %s is locked at an order contract", counterparty.ID)
	}
	return nil
}
