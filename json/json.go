// Package json wraps jsoniter and fills `default` struct tags before every
// encode and decode, so reports and config snapshots never carry empty settings.
package json

import (
	"io"
	"reflect"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

type Encoder struct {
	*jsoniter.Encoder
}

// NewEncoder returns an encoder writing two-space indented JSON to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := api.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &Encoder{Encoder: enc}
}

// Encode applies defaults to v, then encodes it.
func (e *Encoder) Encode(v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return e.Encoder.Encode(v)
}

type Decoder struct {
	*jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{Decoder: api.NewDecoder(r)}
}

// Decode applies defaults to v, then decodes into it.
func (d *Decoder) Decode(v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return d.Decoder.Decode(v)
}

func Marshal(v any) ([]byte, error) {
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	return api.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return api.Unmarshal(data, v)
}

// setDefaults only touches struct pointers; maps and slices pass through.
func setDefaults(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	return defaults.Set(v)
}
