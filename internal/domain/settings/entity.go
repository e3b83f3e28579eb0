package settings

import (
	"fmt"
	"strconv"
	"time"
)

type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
)

// Entry is a small typed key/value configuration row. The value is stored as
// text and coerced on read according to Type.
type Entry struct {
	Key         string
	Value       string
	Type        ValueType
	Description string

	UpdatedAt time.Time
}

func (e *Entry) TypedValue() (any, error) {
	switch e.Type {
	case TypeNumber:
		n, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %q is not a number: %w", e.Key, err)
		}
		return n, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(e.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %q is not a boolean: %w", e.Key, err)
		}
		return b, nil
	default:
		return e.Value, nil
	}
}
