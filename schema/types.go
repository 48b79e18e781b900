package schema

import "github.com/gluesql-go/gluesql/value"

// TypeName renders a value.DataType as the SQL type keyword names.
func TypeName(t value.DataType) string {
	switch t {
	case value.TBoolean:
		return "BOOLEAN"
	case value.TInt8:
		return "INT8"
	case value.TInt16:
		return "INT16"
	case value.TInt32:
		return "INT32"
	case value.TInt64:
		return "INT"
	case value.TInt128:
		return "INT128"
	case value.TUint8:
		return "UINT8"
	case value.TUint16:
		return "UINT16"
	case value.TUint32:
		return "UINT32"
	case value.TUint64:
		return "UINT64"
	case value.TUint128:
		return "UINT128"
	case value.TFloat32:
		return "FLOAT32"
	case value.TFloat64:
		return "FLOAT"
	case value.TDecimal:
		return "DECIMAL"
	case value.TText:
		return "TEXT"
	case value.TBytea:
		return "BYTEA"
	case value.TDate:
		return "DATE"
	case value.TTime:
		return "TIME"
	case value.TTimestamp:
		return "TIMESTAMP"
	case value.TInterval:
		return "INTERVAL"
	case value.TUuid:
		return "UUID"
	case value.TInet:
		return "INET"
	case value.TMap:
		return "MAP"
	case value.TList:
		return "LIST"
	case value.TPoint:
		return "POINT"
	default:
		return "TEXT"
	}
}

// ParseTypeName is the inverse of TypeName, used by translate to lower a
// parsed column type keyword.
func ParseTypeName(name string) (value.DataType, bool) {
	switch name {
	case "BOOLEAN", "BOOL":
		return value.TBoolean, true
	case "INT8":
		return value.TInt8, true
	case "INT16":
		return value.TInt16, true
	case "INT32":
		return value.TInt32, true
	case "INT", "INT64", "INTEGER":
		return value.TInt64, true
	case "INT128":
		return value.TInt128, true
	case "UINT8":
		return value.TUint8, true
	case "UINT16":
		return value.TUint16, true
	case "UINT32":
		return value.TUint32, true
	case "UINT64":
		return value.TUint64, true
	case "UINT128":
		return value.TUint128, true
	case "FLOAT32":
		return value.TFloat32, true
	case "FLOAT", "FLOAT64", "DOUBLE":
		return value.TFloat64, true
	case "DECIMAL", "NUMERIC":
		return value.TDecimal, true
	case "TEXT", "VARCHAR", "CHAR", "STRING":
		return value.TText, true
	case "BYTEA":
		return value.TBytea, true
	case "DATE":
		return value.TDate, true
	case "TIME":
		return value.TTime, true
	case "TIMESTAMP", "DATETIME":
		return value.TTimestamp, true
	case "INTERVAL":
		return value.TInterval, true
	case "UUID":
		return value.TUuid, true
	case "INET":
		return value.TInet, true
	case "MAP":
		return value.TMap, true
	case "LIST":
		return value.TList, true
	case "POINT":
		return value.TPoint, true
	default:
		return 0, false
	}
}
