package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON maps a jsonb column to a free-form object. The chat session's
// vehicle-info blob uses it: the client sends an arbitrary description (type,
// make, model, issue) that is stored as-is and echoed back untouched.
type JSON map[string]interface{}

// Value implements driver.Valuer. A nil map persists as an empty object so
// the column never holds SQL NULL.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner, accepting both the []byte postgres returns
// and the string form the sqlite test driver produces.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", value)
	}

	if len(raw) == 0 {
		*j = make(JSON)
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*j = JSON(result)
	return nil
}
