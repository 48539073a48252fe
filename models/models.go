package models

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RegisterCapacity is the number of non-mandatory registers a box can carry.
const RegisterCapacity = 6

// ByteString is a byte array that serializes to hex
type ByteString []byte

// MarshalJSON serializes ByteArray to hex
func (s ByteString) MarshalJSON() ([]byte, error) {
	bytes, err := json.Marshal(fmt.Sprintf("%x", string(s)))
	return bytes, err
}

// UnmarshalJSON deserializes ByteArray to hex
func (s *ByteString) UnmarshalJSON(data []byte) error {
	var x string
	err := json.Unmarshal(data, &x)
	if err == nil {
		str, e := hex.DecodeString(x)
		*s = ByteString([]byte(str))
		err = e
	}

	return err
}

// Outpoint is txid followed by the big-endian output index.
type Outpoint ByteString

func NewOutpoint(txid []byte, vout uint32) Outpoint {
	o := make([]byte, 0, len(txid)+4)
	o = append(o, txid...)
	return Outpoint(binary.BigEndian.AppendUint32(o, vout))
}

func NewOutpointFromString(s string) (o Outpoint, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	if len(b) != 36 {
		err = fmt.Errorf("invalid outpoint length %d", len(b))
		return
	}
	return Outpoint(b), nil
}

func (o Outpoint) Txid() []byte {
	if len(o) < 4 {
		return nil
	}
	return o[:len(o)-4]
}

func (o Outpoint) Vout() uint32 {
	if len(o) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(o[len(o)-4:])
}

func (o Outpoint) String() string {
	return hex.EncodeToString(o)
}

func (o Outpoint) MarshalJSON() ([]byte, error) {
	return ByteString(o).MarshalJSON()
}

func (o *Outpoint) UnmarshalJSON(data []byte) error {
	return (*ByteString)(o).UnmarshalJSON(data)
}

type Token struct {
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
}

// Registers holds the typed register slots of a box. A nil slot is absent.
type Registers [RegisterCapacity]*Constant

// NewRegisters packs constants densely from slot 0.
func NewRegisters(cs ...Constant) (r Registers, err error) {
	if len(cs) > RegisterCapacity {
		err = fmt.Errorf("%d registers exceed capacity %d", len(cs), RegisterCapacity)
		return
	}
	for i := range cs {
		c := cs[i]
		r[i] = &c
	}
	return
}

func (r Registers) Get(i int) (c Constant, ok bool) {
	if i < 0 || i >= RegisterCapacity || r[i] == nil {
		return
	}
	return *r[i], true
}

// Dense returns the leading run of present registers.
func (r Registers) Dense() []Constant {
	out := make([]Constant, 0, RegisterCapacity)
	for _, c := range r {
		if c == nil {
			break
		}
		out = append(out, *c)
	}
	return out
}

// Box is an unspent output observed on the ledger.
type Box struct {
	ID        Outpoint  `json:"id"`
	Address   string    `json:"address"`
	Value     uint64    `json:"value"`
	Tokens    []Token   `json:"tokens"`
	Registers Registers `json:"registers"`
	Height    uint32    `json:"height"`
}

func (b *Box) Token(i int) (t Token, ok bool) {
	if b == nil || i < 0 || i >= len(b.Tokens) {
		return
	}
	return b.Tokens[i], true
}
