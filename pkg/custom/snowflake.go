package custom

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Snowflake is a Discord ID. Discord hands IDs around as strings, the
// database stores them as integers. The empty snowflake is stored as NULL.
type Snowflake string

// IsZero reports whether the snowflake is unset.
func (s Snowflake) IsZero() bool {
	return s == ""
}

// String implements the fmt.Stringer interface.
func (s Snowflake) String() string {
	return string(s)
}

// Value implements the driver.Valuer interface.
func (s Snowflake) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid snowflake %q: %w", string(s), err)
	}
	return id, nil
}

// Scan implements the sql.Scanner interface.
func (s *Snowflake) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case int64:
		*s = Snowflake(strconv.FormatInt(v, 10))
	case []byte:
		*s = Snowflake(v)
	case string:
		*s = Snowflake(v)
	default:
		return fmt.Errorf("invalid scan, type %T not supported for %T", src, s)
	}
	return nil
}
