package models

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/libsv/go-bk/base58"
)

type SType byte

const (
	SCollByte SType = 0x0e
	SLong     SType = 0x05
)

func (t SType) String() string {
	switch t {
	case SCollByte:
		return "Coll[Byte]"
	case SLong:
		return "Long"
	}
	return fmt.Sprintf("SType(%d)", byte(t))
}

var ErrConstantType = errors.New("constant type mismatch")

// Constant is a typed register value. Long payloads are 8 bytes big-endian.
type Constant struct {
	Type    SType
	Payload []byte
}

func NewString(s string) Constant {
	return NewBytes([]byte(s))
}

func NewBytes(b []byte) Constant {
	p := make([]byte, len(b))
	copy(p, b)
	return Constant{Type: SCollByte, Payload: p}
}

func NewLong(v uint64) Constant {
	return Constant{Type: SLong, Payload: binary.BigEndian.AppendUint64(nil, v)}
}

func (c Constant) String() (string, error) {
	if c.Type != SCollByte {
		return "", fmt.Errorf("%w: want %s, got %s", ErrConstantType, SCollByte, c.Type)
	}
	return string(c.Payload), nil
}

func (c Constant) Uint64() (uint64, error) {
	if c.Type != SLong || len(c.Payload) != 8 {
		return 0, fmt.Errorf("%w: want %s, got %s", ErrConstantType, SLong, c.Type)
	}
	return binary.BigEndian.Uint64(c.Payload), nil
}

func (c Constant) Base16() string {
	return hex.EncodeToString(c.Payload)
}

func (c Constant) Base58() string {
	return base58.Encode(c.Payload)
}

func (c Constant) Equal(o Constant) bool {
	return c.Type == o.Type && bytes.Equal(c.Payload, o.Payload)
}

// Bytes is the serialized form: one type byte followed by the payload.
func (c Constant) Bytes() []byte {
	out := make([]byte, 0, len(c.Payload)+1)
	out = append(out, byte(c.Type))
	return append(out, c.Payload...)
}

func ParseConstant(b []byte) (c Constant, err error) {
	if len(b) == 0 {
		err = errors.New("empty constant")
		return
	}
	c.Type = SType(b[0])
	switch c.Type {
	case SCollByte:
	case SLong:
		if len(b) != 9 {
			err = fmt.Errorf("long constant has %d payload bytes", len(b)-1)
			return
		}
	default:
		err = fmt.Errorf("unknown constant type %#x", b[0])
		return
	}
	c.Payload = make([]byte, len(b)-1)
	copy(c.Payload, b[1:])
	return
}

type constantJSON struct {
	Type  string     `json:"type"`
	Value ByteString `json:"value"`
}

func (c Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(constantJSON{Type: c.Type.String(), Value: c.Payload})
}

func (c *Constant) UnmarshalJSON(data []byte) error {
	var cj constantJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	switch cj.Type {
	case SCollByte.String():
		c.Type = SCollByte
	case SLong.String():
		if len(cj.Value) != 8 {
			return fmt.Errorf("long constant has %d payload bytes", len(cj.Value))
		}
		c.Type = SLong
	default:
		return fmt.Errorf("unknown constant type %q", cj.Type)
	}
	c.Payload = []byte(cj.Value)
	return nil
}
