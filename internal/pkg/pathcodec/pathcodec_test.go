package pathcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"042917", "042917"},
		{"a-b.c_d", "a-b.c_d"},
		{"/", "~2F"},
		{"~", "~7E"},
		{"a b", "a~20b"},
		{"$2a$10$abc/def.", "~242a~2410~24abc~2Fdef."},
		{"?#%&", "~3F~23~25~26"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Encode(tt.in), tt.in)
	}
}

func TestRoundTrip_AllBytes(t *testing.T) {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	in := string(b)
	enc := Encode(in)
	for i := 0; i < len(enc); i++ {
		c := enc[i]
		assert.True(t, passthrough(c) || c == escape, "unexpected byte %q in encoding", c)
	}
	out, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_Malformed(t *testing.T) {
	for _, s := range []string{"~", "~2", "abc~G1", "~2f", "a/b", "a%2Fb", "x~"} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrMalformed, s)
	}
}

func TestDecode_Plain(t *testing.T) {
	out, err := Decode("123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", out)
}
