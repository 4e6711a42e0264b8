package custom

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSnowflake(t *testing.T) {
	v, err := Snowflake("").Value()
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = Snowflake("1094003490093867108").Value()
	require.NoError(t, err)
	require.Equal(t, int64(1094003490093867108), v)

	_, err = Snowflake("general").Value()
	require.Error(t, err)

	tests := []struct {
		name string
		src  any
		want Snowflake
	}{
		{"nil", nil, ""},
		{"int64", int64(42), "42"},
		{"bytes", []byte("43"), "43"},
		{"string", "44", "44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snowflake
			require.NoError(t, s.Scan(tt.src))
			require.Equal(t, tt.want, s)
		})
	}

	var s Snowflake
	require.Error(t, s.Scan(3.14))
}

func TestCommaList(t *testing.T) {
	require.Nil(t, ParseCommaList(""))
	require.Equal(t, CommaList{"1", "2"}, ParseCommaList("1, 2,"))

	v, err := CommaList{"What plan?", "Since when?"}.Value()
	require.NoError(t, err)
	require.Equal(t, "What plan?,Since when?", v)

	_, err = CommaList{"a,b"}.Value()
	require.Error(t, err)

	var c CommaList
	require.NoError(t, c.Scan([]byte("10,20")))
	require.Equal(t, CommaList{"10", "20"}, c)

	require.NoError(t, c.Scan(nil))
	require.Nil(t, c)
}

func TestDatetime_SQL(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	v, err := NewDatetime(ts).Value()
	require.NoError(t, err)
	require.Equal(t, ts, v)

	v, err = Datetime{}.Value()
	require.NoError(t, err)
	require.Nil(t, v)

	tests := []struct {
		name string
		src  any
	}{
		{"time", ts},
		{"sqlite string", "2024-03-01 12:30:00"},
		{"rfc3339 bytes", []byte("2024-03-01T12:30:00Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Datetime
			require.NoError(t, d.Scan(tt.src))
			require.True(t, ts.Equal(d.Time()))
		})
	}

	var d Datetime
	require.Error(t, d.Scan("yesterday"))
}

func TestDatetime_JSON(t *testing.T) {
	d := NewDatetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2024-03-01T12:30:00Z"`, string(b))

	var got Datetime
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, d, got)

	b, err = json.Marshal(Datetime{})
	require.NoError(t, err)
	require.Equal(t, "null", string(b))
}

func TestDatetime_BSON(t *testing.T) {
	type doc struct {
		At Datetime `bson:"at"`
	}

	in := doc{At: NewDatetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))}
	b, err := bson.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(b, &out))
	require.True(t, in.At.Time().Equal(out.At.Time()))
}
