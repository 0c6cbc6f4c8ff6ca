package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		got, ok := ByName(c.Name())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	type settings struct {
		Field     string  `json:"field"`
		MaxLevels int     `json:"max_levels"`
		Pct       float64 `json:"dist_err_pct"`
	}
	in := settings{Field: "geo", MaxLevels: 12, Pct: 0.025}

	data := MustMarshal(JSON{}, in)
	var out settings
	require.NoError(t, GoJSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	appended, err := GoJSON{}.Append([]byte("x"), in)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("x"), data...), appended)

	html, err := GoJSON{}.Append(nil, "<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(html))
}

type upperJSON struct{ JSON }

func (upperJSON) Name() string { return "upper-json" }

func TestRegister(t *testing.T) {
	require.NoError(t, Register(upperJSON{}))
	got, ok := ByName("upper-json")
	require.True(t, ok)
	assert.Equal(t, upperJSON{}, got)

	assert.ErrorIs(t, Register(upperJSON{}), ErrDuplicateName)
	assert.ErrorIs(t, Register(JSON{}), ErrDuplicateName)
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(nil, make(chan int)) })
}
