package utxoorders

import (
	"encoding/json"
	"math"

	"github.com/shruggr/utxo-orders/models"
)

// ValueRange is inclusive on both ends.
type ValueRange struct {
	Min uint64 `json:"min"`
	Max uint64 `json:"max"`
}

// AtLeast is the range [min, MaxUint64].
func AtLeast(min uint64) ValueRange {
	return ValueRange{Min: min, Max: math.MaxUint64}
}

func (r ValueRange) Contains(v uint64) bool {
	return v >= r.Min && v <= r.Max
}

type RegisterSpec struct {
	Type  models.SType     `json:"type"`
	Value *models.Constant `json:"value,omitempty"`
}

func AnyRegister(t models.SType) *RegisterSpec {
	return &RegisterSpec{Type: t}
}

func ExactRegister(c models.Constant) *RegisterSpec {
	return &RegisterSpec{Type: c.Type, Value: &c}
}

func (rs *RegisterSpec) matches(c models.Constant) bool {
	if c.Type != rs.Type {
		return false
	}
	return rs.Value == nil || rs.Value.Equal(c)
}

// TokenSpec constrains one token slot. An empty ID accepts any token.
type TokenSpec struct {
	ID     string     `json:"id,omitempty"`
	Amount ValueRange `json:"amount"`
}

func (ts *TokenSpec) matches(t models.Token) bool {
	if ts.ID != "" && ts.ID != t.ID {
		return false
	}
	return ts.Amount.Contains(t.Amount)
}

// BoxSpec describes the boxes acceptable in some role. Nil register or token
// entries leave that position unconstrained. A BoxSpec is never mutated after
// construction, so values can be shared freely.
type BoxSpec struct {
	address   *string
	value     *ValueRange
	registers []*RegisterSpec
	tokens    []*TokenSpec
}

func NewBoxSpec(address *string, value *ValueRange, registers []*RegisterSpec, tokens []*TokenSpec) BoxSpec {
	s := BoxSpec{
		registers: cloneRegisterSpecs(registers),
		tokens:    cloneTokenSpecs(tokens),
	}
	if address != nil {
		a := *address
		s.address = &a
	}
	if value != nil {
		v := *value
		s.value = &v
	}
	return s
}

func (s BoxSpec) Address() (string, bool) {
	if s.address == nil {
		return "", false
	}
	return *s.address, true
}

func (s BoxSpec) Value() (ValueRange, bool) {
	if s.value == nil {
		return ValueRange{}, false
	}
	return *s.value, true
}

func (s BoxSpec) Registers() []*RegisterSpec { return cloneRegisterSpecs(s.registers) }

func (s BoxSpec) Tokens() []*TokenSpec { return cloneTokenSpecs(s.tokens) }

func (s BoxSpec) ModifiedAddress(address *string) BoxSpec {
	return NewBoxSpec(address, s.value, s.registers, s.tokens)
}

func (s BoxSpec) ModifiedValue(value *ValueRange) BoxSpec {
	return NewBoxSpec(s.address, value, s.registers, s.tokens)
}

func (s BoxSpec) ModifiedRegisters(registers []*RegisterSpec) BoxSpec {
	return NewBoxSpec(s.address, s.value, registers, s.tokens)
}

func (s BoxSpec) ModifiedTokens(tokens []*TokenSpec) BoxSpec {
	return NewBoxSpec(s.address, s.value, s.registers, tokens)
}

func (s BoxSpec) Matches(box *models.Box) bool {
	return Matches(s, box)
}

// Matches reports whether box satisfies every constraint declared by spec.
func Matches(spec BoxSpec, box *models.Box) bool {
	if box == nil {
		return false
	}
	if spec.address != nil && *spec.address != box.Address {
		return false
	}
	if spec.value != nil && !spec.value.Contains(box.Value) {
		return false
	}
	for i, ts := range spec.tokens {
		if ts == nil {
			continue
		}
		t, ok := box.Token(i)
		if !ok || !ts.matches(t) {
			return false
		}
	}
	for i, rs := range spec.registers {
		if rs == nil {
			continue
		}
		c, ok := box.Registers.Get(i)
		if !ok || !rs.matches(c) {
			return false
		}
	}
	return true
}

func cloneRegisterSpecs(in []*RegisterSpec) []*RegisterSpec {
	if in == nil {
		return nil
	}
	out := make([]*RegisterSpec, len(in))
	for i, rs := range in {
		if rs == nil {
			continue
		}
		c := *rs
		if rs.Value != nil {
			v := models.NewBytes(rs.Value.Payload)
			v.Type = rs.Value.Type
			c.Value = &v
		}
		out[i] = &c
	}
	return out
}

func cloneTokenSpecs(in []*TokenSpec) []*TokenSpec {
	if in == nil {
		return nil
	}
	out := make([]*TokenSpec, len(in))
	for i, ts := range in {
		if ts == nil {
			continue
		}
		c := *ts
		out[i] = &c
	}
	return out
}

type boxSpecJSON struct {
	Address   *string         `json:"address,omitempty"`
	Value     *ValueRange     `json:"value,omitempty"`
	Registers []*RegisterSpec `json:"registers"`
	Tokens    []*TokenSpec    `json:"tokens"`
}

func (s BoxSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(boxSpecJSON{
		Address:   s.address,
		Value:     s.value,
		Registers: s.registers,
		Tokens:    s.tokens,
	})
}

func (s *BoxSpec) UnmarshalJSON(data []byte) error {
	var sj boxSpecJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	*s = NewBoxSpec(sj.Address, sj.Value, sj.Registers, sj.Tokens)
	return nil
}
