package stormcodec_test

import (
	"testing"

	"github.com/codestube/bot/pkg/stormcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, err := stormcodec.ByName("")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())

	for _, name := range []string{"msgpack", "json", "cbor", "binc", " CBOR "} {
		c, err := stormcodec.ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	_, err = stormcodec.ByName("gob")
	assert.EqualError(t, err, `unknown storm codec "gob" (available: binc, cbor, json, msgpack)`)
}

func TestUgorjiCodecs(t *testing.T) {
	type doc struct {
		Name string
		Due  string
	}

	for _, c := range []interface {
		Marshal(any) ([]byte, error)
		Unmarshal([]byte, any) error
		Name() string
	}{stormcodec.CBOR, stormcodec.Binc} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(&doc{Name: "laundry", Due: "friday"})
			require.NoError(t, err)

			var v doc
			require.NoError(t, c.Unmarshal(b, &v))
			assert.Equal(t, doc{Name: "laundry", Due: "friday"}, v)
		})
	}
}
