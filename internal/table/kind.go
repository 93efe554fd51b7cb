package table

import (
	"fmt"
	"strings"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindDatetime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDatetime:
		return "datetime"
	case KindBool:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether the kind holds integer or float cells.
func (k Kind) Numeric() bool { return k == KindInteger || k == KindFloat }

// Tag maps the storage kind onto its logical column type.
func (k Kind) Tag() Tag {
	switch k {
	case KindInteger, KindFloat:
		return TagNumeric
	case KindDatetime:
		return TagDatetime
	case KindBool:
		return TagFlag
	default:
		return TagCategorical
	}
}

// ParseKind accepts the usual dtype spellings (int, int64, str, object, bool...).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "int64", "integer":
		return KindInteger, nil
	case "float", "float64", "double", "number":
		return KindFloat, nil
	case "str", "string", "text", "object", "category":
		return KindText, nil
	case "datetime", "date", "timestamp", "datetime64":
		return KindDatetime, nil
	case "bool", "boolean", "flag":
		return KindBool, nil
	default:
		return 0, Invalid("parse kind", s, "use integer|float|text|datetime|boolean")
	}
}

// Tag is the logical column type: numeric, categorical, datetime or flag.
type Tag string

const (
	TagNumeric     Tag = "numeric"
	TagCategorical Tag = "categorical"
	TagDatetime    Tag = "datetime"
	TagFlag        Tag = "flag"
)
