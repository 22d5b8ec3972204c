package converters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateConverter_Convert(t *testing.T) {
	{
		// Epoch day zero
		value, err := DateConverter{}.Convert("1970-01-01")
		assert.NoError(t, err)
		assert.Equal(t, int32(0), value)
	}
	{
		value, err := DateConverter{}.Convert("1970-02-01")
		assert.NoError(t, err)
		assert.Equal(t, int32(31), value)
	}
	{
		value, err := DateConverter{}.Convert(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, int32(18690), value)
	}
}

func TestMicroTimeConverter_Convert(t *testing.T) {
	{
		value, err := MicroTimeConverter{}.Convert("00:00:01")
		assert.NoError(t, err)
		assert.Equal(t, int64(1_000_000), value)
	}
	{
		value, err := MicroTimeConverter{}.Convert("10:02:03.000004")
		assert.NoError(t, err)
		assert.Equal(t, int64(36_123_000_004), value)
	}
	{
		_, err := MicroTimeConverter{}.Convert(42)
		assert.ErrorContains(t, err, "expected string")
	}
}

func TestMicroTimestampConverter_Convert(t *testing.T) {
	{
		value, err := MicroTimestampConverter{}.Convert("1970-01-01 00:00:01")
		assert.NoError(t, err)
		assert.Equal(t, int64(1_000_000), value)
	}
	{
		value, err := MicroTimestampConverter{}.Convert(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC).UnixMicro(), value)
	}
	{
		value, err := MicroTimestampConverter{}.Convert("2021-03-04 05:06:07.500000")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2021, 3, 4, 5, 6, 7, 500_000_000, time.UTC).UnixMicro(), value)
	}
}
