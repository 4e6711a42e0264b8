package custom

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// sqliteLayouts are the layouts sqlite drivers hand back for TIMESTAMP columns.
var sqliteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateTime,
}

// Datetime represents a datetime. It is always stored in UTC.
type Datetime time.Time

// NewDatetime converts t to a UTC Datetime.
func NewDatetime(t time.Time) Datetime {
	return Datetime(t.UTC())
}

// Time returns the underlying time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if time.Time(d).IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`%q`, time.Time(d).UTC().Format(time.RFC3339))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	s := strings.Trim(string(text), `"`)
	if s == "" || s == "null" {
		*d = Datetime{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	*d = Datetime(t.UTC())
	return nil
}

// MarshalBSONValue stores the datetime as a native BSON datetime.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if time.Time(d).IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC())
}

// UnmarshalBSONValue reads a native BSON datetime.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || len(data) == 0 {
		*d = Datetime{}
		return nil
	}

	raw := bson.RawValue{Type: t, Value: data}
	tm, ok := raw.TimeOK()
	if !ok {
		return fmt.Errorf("invalid bson type %s for datetime", t)
	}
	*d = Datetime(tm.UTC())
	return nil
}

// Scan implements the sql.Scanner interface.
func (d *Datetime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Datetime{}
		return nil
	case time.Time:
		*d = Datetime(v.UTC())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("invalid scan, type %T not supported for %T", src, d)
	}
}

func (d *Datetime) parse(s string) error {
	for _, layout := range sqliteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Datetime(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid datetime: %s", s)
}

// Value implements the driver.Valuer interface.
func (d Datetime) Value() (driver.Value, error) {
	if time.Time(d).IsZero() {
		return nil, nil
	}
	return time.Time(d).UTC(), nil
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).Format(time.RFC3339)
}
