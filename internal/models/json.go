package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList is a slice persisted as a JSON array in a TEXT column.
type JSONList[T any] []T

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *JSONList[T]) Scan(value any) error {
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = JSONList[T]{}
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []T{}
	}
	*l = out
	return nil
}

// JSONMap is a free-form JSON object stored in a nullable TEXT column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value any) error {
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		*m = nil
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

func rawJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
