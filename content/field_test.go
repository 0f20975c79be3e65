package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField_Name(t *testing.T) {
	f := NewField("  Title  ", "Hello")
	assert.Equal(t, "title", f.Name())
	assert.Equal(t, "Hello", f.Value())
}

func TestField_SetValue(t *testing.T) {
	f := NewField("title", "a")
	f.SetValue("b")
	assert.Equal(t, "b", f.Value())
	assert.Equal(t, "b", f.String())
}

func TestField_Int(t *testing.T) {
	v, err := NewField("n", " 42 ").Int()
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = NewField("n", "forty-two").Int()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), `"n"`)
}

func TestField_Int_Decimal(t *testing.T) {
	tests := []struct {
		value string
		want  int
		err   bool
	}{
		{value: "010", want: 10},
		{value: "08", want: 8},
		{value: "-007", want: -7},
		{value: "+3", want: 3},
		{value: "000", want: 0},
		{value: "0x10", err: true},
		{value: "0b1", err: true},
		{value: "0o7", err: true},
		{value: "-", err: true},
		{value: "1_000", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v, err := NewField("n", tt.value).Int()
			if tt.err {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	ts, err := NewField("date", "0100").TimeE()
	require.NoError(t, err)
	assert.Equal(t, int64(100), ts.Unix())
}

func TestField_Float(t *testing.T) {
	v, err := NewField("price", "12.5").Float()
	require.NoError(t, err)
	assert.InDelta(t, 12.5, v, 0.0001)

	_, err = NewField("price", "cheap").Float()
	assert.ErrorIs(t, err, ErrParse)
}

func TestField_Bool(t *testing.T) {
	v, err := NewField("visible", "true").Bool()
	require.NoError(t, err)
	assert.True(t, v)

	v, err = NewField("visible", "0").Bool()
	require.NoError(t, err)
	assert.False(t, v)

	_, err = NewField("visible", "maybe").Bool()
	assert.ErrorIs(t, err, ErrParse)
}

func TestField_List(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, NewField("tags", " a, b ,, c ,").List())
	assert.Empty(t, NewField("tags", "").List())
}

func TestField_Time(t *testing.T) {
	ts := NewField("date", "1700000000").Time()
	assert.Equal(t, int64(1700000000), ts.Unix())

	before := time.Now().Add(-time.Second)
	fallback := NewField("date", "yesterday").Time()
	assert.True(t, fallback.After(before))

	_, err := NewField("date", "yesterday").TimeE()
	assert.ErrorIs(t, err, ErrParse)
}

func TestField_YAML(t *testing.T) {
	var out struct {
		Name string `yaml:"name"`
		Age  int    `yaml:"age"`
	}
	require.NoError(t, NewField("person", "name: Ada\nage: 36").YAML(&out))
	assert.Equal(t, "Ada", out.Name)
	assert.Equal(t, 36, out.Age)

	assert.ErrorIs(t, NewField("person", "name: [").YAML(&out), ErrParse)
}

func TestField_Structure(t *testing.T) {
	items, err := NewField("links", "- title: One\n  url: /one\n- title: Two\n  url: /two").Structure()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Two", items[1]["title"])

	items, err = NewField("links", "  ").Structure()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestField_ID(t *testing.T) {
	assert.Equal(t, "abc", NewField("uuid", "page://abc").ID())
	assert.Equal(t, "abc", NewField("uuid", " file://abc ").ID())
	assert.Equal(t, "abc", NewField("uuid", "abc").ID())
}

func TestField_IsEmpty(t *testing.T) {
	assert.True(t, NewField("x", " \t").IsEmpty())
	assert.False(t, NewField("x", "y").IsEmpty())
}
