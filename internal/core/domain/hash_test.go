package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
)

const (
	emptySHA256Hex    = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	emptySHA256Base32 = "0mdqa9w1p6cmli6976v4wi0sw9r4p5prkj7lzfd1877wk11c9c73"
	emptySHA256Base64 = "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
)

func TestParseHash_Encodings(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"sha256:" + emptySHA256Hex,
		"sha256:" + emptySHA256Base32,
		"sha256:" + emptySHA256Base64,
		"sha256-" + emptySHA256Base64,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			h, err := domain.ParseHash(in)
			require.NoError(t, err)
			assert.Equal(t, domain.SHA256, h.Type())
			assert.Equal(t, emptySHA256Hex, domain.FormatDigest(h, domain.Base16))
			assert.Equal(t, emptySHA256Base32, domain.FormatDigest(h, domain.Base32))
			assert.Equal(t, "sha256-"+emptySHA256Base64, domain.FormatHash(h, domain.SRI))
		})
	}
}

func TestParseHash_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "unknown algorithm", in: "sha3:" + emptySHA256Hex, want: domain.ErrUnsupportedHashAlgorithm},
		{name: "short digest", in: "sha256:abcd", want: domain.ErrInvalidHash},
		{name: "sha1 length for sha256", in: "sha256:2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", want: domain.ErrInvalidHash},
		{name: "bad hex", in: "sha256:" + "zz" + emptySHA256Hex[2:], want: domain.ErrInvalidHash},
		{name: "no separator", in: "garbage", want: domain.ErrInvalidHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.ParseHash(tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHashString_IsSHA256(t *testing.T) {
	t.Parallel()

	h := domain.HashString("")
	assert.Equal(t, "sha256:"+emptySHA256Base32, domain.FormatHash(h, domain.Base32))

	h2, err := domain.HashBytes(domain.SHA256, nil)
	require.NoError(t, err)
	assert.True(t, domain.HashEqual(h, h2))

	h3, err := domain.HashBytes(domain.SHA1, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", domain.FormatDigest(h3, domain.Base16))
	assert.False(t, domain.HashEqual(h, h3))
}

func TestHashFromDigest_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := domain.HashFromDigest(domain.SHA256, []byte{1, 2, 3})
	require.ErrorIs(t, err, domain.ErrInvalidHash)
}

func TestIsBase32Char(t *testing.T) {
	t.Parallel()

	for _, c := range []byte("eotu") {
		assert.False(t, domain.IsBase32Char(c), string(c))
	}
	for _, c := range []byte("0189abdz") {
		assert.True(t, domain.IsBase32Char(c), string(c))
	}
}
