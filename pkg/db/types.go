package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// SizeStock maps a size label to the units available in that size.
type SizeStock map[string]int

func (s SizeStock) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SizeStock) Scan(src any) error {
	return scanJSON(src, s)
}

func (SizeStock) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// Clone returns an independent copy; nil stays nil.
func (s SizeStock) Clone() SizeStock {
	if s == nil {
		return nil
	}
	out := make(SizeStock, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Total sums the per-size counts.
func (s SizeStock) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// JSONValue marshals v for a JSON column. Models with their own snapshot
// types use it from their Value methods.
func JSONValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ScanJSON is the Scan counterpart of JSONValue.
func ScanJSON(src any, dst any) error {
	return scanJSON(src, dst)
}

func JSONColumnType(db *gorm.DB) string {
	return jsonColumnType(db)
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func jsonColumnType(db *gorm.DB) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
