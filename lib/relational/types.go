package relational

import (
	"strings"
)

type DataType int

const (
	// Integer Types (Exact Value)
	TinyInt DataType = iota + 1
	SmallInt
	MediumInt
	Int
	BigInt
	// Fixed-Point Types (Exact Value)
	Decimal
	// Floating-Point Types (Approximate Value)
	Float
	Double
	// Bit-Value Type
	Bit
	Boolean
	// Date and Time Data Types
	Date
	DateTime
	Timestamp
	Time
	Year
	// String Types
	Char
	Varchar
	Binary
	Varbinary
	Blob
	Text
	TinyText
	MediumText
	LongText
	Enum
	Set
	// JSON
	JSON
)

// ParseDataType maps a MySQL type keyword (as written in DDL, any case) to its
// DataType. The bool result is false for types the engine does not model.
func ParseDataType(typeName string) (DataType, bool) {
	switch strings.ToLower(typeName) {
	case "tinyint":
		return TinyInt, true
	case "smallint":
		return SmallInt, true
	case "mediumint":
		return MediumInt, true
	case "int", "integer":
		return Int, true
	case "bigint":
		return BigInt, true
	case "decimal", "numeric":
		return Decimal, true
	case "float":
		return Float, true
	case "double", "real":
		return Double, true
	case "bit":
		return Bit, true
	case "bool", "boolean":
		return Boolean, true
	case "date":
		return Date, true
	case "datetime":
		return DateTime, true
	case "timestamp":
		return Timestamp, true
	case "time":
		return Time, true
	case "year":
		return Year, true
	case "char", "nchar":
		return Char, true
	case "varchar", "nvarchar":
		return Varchar, true
	case "binary":
		return Binary, true
	case "varbinary":
		return Varbinary, true
	case "tinyblob", "blob", "mediumblob", "longblob":
		return Blob, true
	case "tinytext":
		return TinyText, true
	case "text":
		return Text, true
	case "mediumtext":
		return MediumText, true
	case "longtext":
		return LongText, true
	case "enum":
		return Enum, true
	case "set":
		return Set, true
	case "json":
		return JSON, true
	}

	return 0, false
}
