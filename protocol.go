package utxoorders

import (
	"bytes"
	"fmt"

	"github.com/shruggr/utxo-orders/models"
)

type Kind int

const (
	Sell Kind = iota
	Swap
)

func (k Kind) String() string {
	switch k {
	case Sell:
		return "sell"
	case Swap:
		return "swap"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Protocol is implemented by each order kind. Every action is a pure function
// of its arguments and returns a transaction that still has to be signed.
//
// Whether the signer may spend the order box (owner on reclaim, contract
// conditions on execute) is decided by the ledger's script layer. Nothing
// here checks it.
type Protocol interface {
	Kind() Kind
	// BoxSpec describes any well-formed order box of this kind.
	BoxSpec() BoxSpec
	Reclaim(order *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error)
	Execute(order, counterparty *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error)
	// MatchSpec derives what a box must look like to fulfill order.
	MatchSpec(order *models.Box) (BoxSpec, error)
	// CheckCounterparty is the full test Execute applies: the match spec plus
	// any rule a BoxSpec cannot express.
	CheckCounterparty(order, counterparty *models.Box) error
}

// ownerOf decodes the owner address held in register 0.
func ownerOf(order *models.Box) (string, error) {
	c, ok := order.Registers.Get(0)
	if !ok {
		return "", errorf(ErrSpecMismatch, "box %s has no owner register", order.ID)
	}
	owner, err := c.String()
	if err != nil {
		return "", errorf(ErrSpecMismatch, "box %s owner register: %v", order.ID, err)
	}
	return owner, nil
}

func longAt(order *models.Box, i int) (uint64, error) {
	c, ok := order.Registers.Get(i)
	if !ok {
		return 0, errorf(ErrSpecMismatch, "box %s has no register %d", order.ID, i)
	}
	v, err := c.Uint64()
	if err != nil {
		return 0, errorf(ErrSpecMismatch, "box %s register %d: %v", order.ID, i, err)
	}
	return v, nil
}

func requireShape(p Protocol, order *models.Box) error {
	if order == nil {
		return errorf(ErrSpecMismatch, "nil %s order box", p.Kind())
	}
	if !p.BoxSpec().Matches(order) {
		return errorf(ErrSpecMismatch, "box %s is not a %s order", order.ID, p.Kind())
	}
	return nil
}

// reclaim returns the order value minus fee, and all tokens, to the owner.
func reclaim(p Protocol, a Assembler, order *models.Box, height uint32, fee uint64) (*models.UnsignedTransaction, error) {
	if err := requireShape(p, order); err != nil {
		return nil, err
	}
	if order.Value <= fee {
		return nil, errorf(ErrInsufficientFunds, "order value %d does not cover fee %d", order.Value, fee)
	}
	owner, err := ownerOf(order)
	if err != nil {
		return nil, err
	}

	refund, err := CreateCandidate(order.Value-fee, owner, order.Tokens, nil, height)
	if err != nil {
		return nil, err
	}
	feeOut, err := a.FeeOutput(fee, height)
	if err != nil {
		return nil, err
	}
	return a.Assemble([]*models.Box{order}, []models.OutputCandidate{refund, feeOut})
}

// payoutMarker tags a payout with the id of the order it settles.
func payoutMarker(order *models.Box) []models.Constant {
	return []models.Constant{models.NewBytes(order.ID)}
}

func requireDistinct(order, counterparty *models.Box) error {
	if counterparty != nil && bytes.Equal(order.ID, counterparty.ID) {
		return errorf(ErrSpecMismatch, "box %s cannot fulfill itself", order.ID)
	}
	return nil
}
