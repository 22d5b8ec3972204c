package converters

import (
	"encoding/base64"
	"testing"

	"github.com/artie-labs/transfer/lib/typing"
	"github.com/stretchr/testify/assert"
)

func TestGetScale(t *testing.T) {
	assert.Equal(t, 0, GetScale("5"))
	assert.Equal(t, 2, GetScale("5.12"))
	assert.Equal(t, 5, GetScale("5.12345"))
}

func TestEncodeDecimalToBytes(t *testing.T) {
	{
		// 1.5 at scale 1 scales to 15
		assert.Equal(t, []byte{15}, EncodeDecimalToBytes("1.5", 1))
	}
	{
		// -1 at scale 0 is two's complement 0xff
		assert.Equal(t, []byte{0xff}, EncodeDecimalToBytes("-1", 0))
	}
	{
		// 128 needs a leading zero byte to stay positive
		assert.Equal(t, []byte{0x00, 0x80}, EncodeDecimalToBytes("128", 0))
	}
}

func TestDecimalConverter(t *testing.T) {
	converter := NewDecimalConverter(2, typing.ToPtr(10))

	{
		field := converter.ToField("balance")
		assert.Equal(t, "balance", field.FieldName)
		assert.Equal(t, "2", field.Parameters["scale"])
	}
	{
		value, err := converter.Convert("123.45")
		assert.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x30, 0x39}), value)
	}
	{
		// The binlog client may hand decimals over as floats
		value, err := converter.Convert(float64(1.5))
		assert.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x00, 0x96}), value)
	}
	{
		_, err := converter.Convert(42)
		assert.ErrorContains(t, err, "expected string")
	}
}
