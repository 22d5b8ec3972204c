package converters

import (
	"encoding/base64"
	"math/big"
	"strings"
)

// GetScale returns the number of digits after the decimal point.
func GetScale(value string) int {
	i := strings.IndexRune(value, '.')
	if i == -1 {
		return 0
	}

	return len(value[i+1:])
}

// EncodeDecimalToBytes scales the decimal string by 10^scale and returns the
// two's-complement big-endian bytes of the resulting integer, the layout the
// Kafka Connect decimal logical type expects.
func EncodeDecimalToBytes(value string, scale int) []byte {
	scaledValue := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	bigFloatValue := new(big.Float)
	bigFloatValue.SetString(value)
	bigFloatValue.Mul(bigFloatValue, new(big.Float).SetInt(scaledValue))

	// Extract the scaled integer value.
	bigIntValue, _ := bigFloatValue.Int(nil)
	data := bigIntValue.Bytes()
	if bigIntValue.Sign() < 0 {
		// Convert to two's complement if the number is negative
		bigIntValue = bigIntValue.Neg(bigIntValue)
		data = bigIntValue.Bytes()

		// Inverting bits for two's complement.
		for i := range data {
			data[i] = ^data[i]
		}

		// Adding one to complete two's complement.
		twoComplement := new(big.Int).SetBytes(data)
		twoComplement.Add(twoComplement, big.NewInt(1))

		data = twoComplement.Bytes()
		if data[0]&0x80 == 0 {
			data = append([]byte{0xff}, data...)
		}
	} else {
		// For positive values, prepend a zero if the highest bit is set to ensure it's interpreted as positive.
		if len(data) > 0 && data[0]&0x80 != 0 {
			data = append([]byte{0x00}, data...)
		}
	}
	return data
}

func EncodeDecimalToBase64(value string, scale int) (string, error) {
	return base64.StdEncoding.EncodeToString(EncodeDecimalToBytes(value, scale)), nil
}
