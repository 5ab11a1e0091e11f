// Package stormcodec resolves the codec used to encode todo documents in a storm file.
//
// msgpack and json are storm's own codecs, cbor and binc are backed by ugorji/go.
package stormcodec

import (
	"bytes"
	"sort"
	"strings"

	"github.com/asdine/storm/v3/codec"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/pkg/errors"
	ugorji "github.com/ugorji/go/codec"
)

// Default is the codec name used when none is configured.
const Default = "msgpack"

var (
	// CBOR encodes to and decodes from CBOR (Concise Binary Object Representation).
	// http://cbor.io/
	CBOR codec.MarshalUnmarshaler = &ugorjiCodec{name: "cbor", handle: &ugorji.CborHandle{}}
	// Binc encodes to and decodes from Binc.
	// See https://github.com/ugorji/binc
	Binc codec.MarshalUnmarshaler = &ugorjiCodec{name: "binc", handle: &ugorji.BincHandle{}}

	codecs = map[string]codec.MarshalUnmarshaler{
		"msgpack": msgpack.Codec,
		"json":    json.Codec,
		"cbor":    CBOR,
		"binc":    Binc,
	}
)

// ByName returns the codec registered under the given name.
// An empty name returns the default codec.
func ByName(name string) (codec.MarshalUnmarshaler, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}

	c, ok := codecs[name]
	if !ok {
		return nil, errors.Errorf("unknown storm codec %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the sorted list of the available codecs.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type ugorjiCodec struct {
	name   string
	handle ugorji.Handle
}

func (c *ugorjiCodec) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := ugorji.NewEncoder(&b, c.handle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (c *ugorjiCodec) Unmarshal(b []byte, v any) error {
	dec := ugorji.NewDecoder(bytes.NewReader(b), c.handle)
	return dec.Decode(v)
}

func (c *ugorjiCodec) Name() string {
	return c.name
}
