package converters

import (
	"fmt"
	"math"
)

func asInt8(value any) (int8, error) {
	switch castValue := value.(type) {
	case int8:
		return castValue, nil
	case int16:
		if castValue > math.MaxInt8 || castValue < math.MinInt8 {
			return 0, fmt.Errorf("value is out of range for int8")
		}
		return int8(castValue), nil
	case int32:
		if castValue > math.MaxInt8 || castValue < math.MinInt8 {
			return 0, fmt.Errorf("value is out of range for int8")
		}
		return int8(castValue), nil
	case int:
		if castValue > math.MaxInt8 || castValue < math.MinInt8 {
			return 0, fmt.Errorf("value is out of range for int8")
		}
		return int8(castValue), nil
	case int64:
		if castValue > math.MaxInt8 || castValue < math.MinInt8 {
			return 0, fmt.Errorf("value is out of range for int8")
		}
		return int8(castValue), nil
	}
	return 0, fmt.Errorf("expected int/int8/int16/int32/int64 got %T with value: %v", value, value)
}

func asInt16(value any) (int16, error) {
	switch castValue := value.(type) {
	case int8:
		return int16(castValue), nil
	case int16:
		return castValue, nil
	case int32:
		if castValue > math.MaxInt16 || castValue < math.MinInt16 {
			return 0, fmt.Errorf("value is out of range for int16")
		}
		return int16(castValue), nil
	case int:
		if castValue > math.MaxInt16 || castValue < math.MinInt16 {
			return 0, fmt.Errorf("value is out of range for int16")
		}
		return int16(castValue), nil
	case int64:
		if castValue > math.MaxInt16 || castValue < math.MinInt16 {
			return 0, fmt.Errorf("value is out of range for int16")
		}
		return int16(castValue), nil
	}
	return 0, fmt.Errorf("expected int/int8/int16/int32/int64 got %T with value: %v", value, value)
}

func asInt32(value any) (int32, error) {
	switch castValue := value.(type) {
	case int8:
		return int32(castValue), nil
	case int16:
		return int32(castValue), nil
	case int32:
		return castValue, nil
	case uint16:
		return int32(castValue), nil
	case int:
		if castValue > math.MaxInt32 || castValue < math.MinInt32 {
			return 0, fmt.Errorf("value is out of range for int32")
		}
		return int32(castValue), nil
	case int64:
		if castValue > math.MaxInt32 || castValue < math.MinInt32 {
			return 0, fmt.Errorf("value is out of range for int32")
		}
		return int32(castValue), nil
	}
	return 0, fmt.Errorf("expected int/int8/int16/int32/int64 got %T with value: %v", value, value)
}

func asInt64(value any) (int64, error) {
	switch castValue := value.(type) {
	case int8:
		return int64(castValue), nil
	case int16:
		return int64(castValue), nil
	case int32:
		return int64(castValue), nil
	case int:
		return int64(castValue), nil
	case int64:
		return castValue, nil
	case uint32:
		return int64(castValue), nil
	case uint64:
		if castValue > math.MaxInt64 {
			return 0, fmt.Errorf("value is out of range for int64")
		}
		return int64(castValue), nil
	}
	return 0, fmt.Errorf("expected int/int8/int16/int32/int64 got %T with value: %v", value, value)
}
