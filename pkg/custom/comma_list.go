package custom

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// CommaList is an ordered list of strings stored comma-joined in a single
// text column. Elements must not contain commas.
type CommaList []string

// ParseCommaList splits s into a CommaList, dropping empty elements.
func ParseCommaList(s string) CommaList {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	list := make(CommaList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		list = append(list, p)
	}
	return list
}

// String joins the list the way it is stored.
func (c CommaList) String() string {
	return strings.Join(c, ",")
}

// Value implements the driver.Valuer interface.
func (c CommaList) Value() (driver.Value, error) {
	for _, e := range c {
		if strings.Contains(e, ",") {
			return nil, fmt.Errorf("list element %q contains a comma", e)
		}
	}
	return c.String(), nil
}

// Scan implements the sql.Scanner interface.
func (c *CommaList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = nil
	case string:
		*c = ParseCommaList(v)
	case []byte:
		*c = ParseCommaList(string(v))
	default:
		return fmt.Errorf("invalid scan, type %T not supported for %T", src, c)
	}
	return nil
}
