// Package jsoncodec provides the JSON codecs a session can use to encode and
// decode notes API payloads.
//
// [Std] wraps encoding/json and is the default. [Sonic] wraps
// github.com/bytedance/sonic in its standard-compatible configuration. Sonic
// walks envelopes and encodes request and fake server payloads; the entity
// types of pkg/models implement json.Unmarshaler, and those hooks decode
// with encoding/json under either codec.
package jsoncodec

import (
	"encoding/json"
	"io"

	"github.com/bytedance/sonic"
	"github.com/catchnotes/catchapi.go/internal/codec"
)

// Std is backed by encoding/json.
type Std struct{}

func New() *Std {
	return &Std{}
}

func (Std) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Std) NewEncoder(w io.Writer) codec.Encoder {
	return json.NewEncoder(w)
}

func (Std) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func (Std) NewDecoder(r io.Reader) codec.Decoder {
	return json.NewDecoder(r)
}

// Sonic is backed by sonic.ConfigStd, so it honours json.Unmarshaler and
// produces output identical to encoding/json.
type Sonic struct {
	api sonic.API
}

func NewSonic() *Sonic {
	return &Sonic{api: sonic.ConfigStd}
}

func (s *Sonic) Marshal(v any) ([]byte, error) {
	return s.api.Marshal(v)
}

func (s *Sonic) NewEncoder(w io.Writer) codec.Encoder {
	return s.api.NewEncoder(w)
}

func (s *Sonic) Unmarshal(data []byte, dst any) error {
	return s.api.Unmarshal(data, dst)
}

func (s *Sonic) NewDecoder(r io.Reader) codec.Decoder {
	return s.api.NewDecoder(r)
}
