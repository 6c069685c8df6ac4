package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	helloWorldSHA256Base32 = "1sfdxziarxw8j3p80lvswgpq9i7smdyxmmsj5sjhhgjdjfwjfkdr"
	helloWorldSHA1Hex      = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	helloWorldSHA1Base32   = "xm3fh7p9kj5l0pz9vcav9ksgr4snrbia"
	helloWorldMD5Base32    = "63rmd8zfr2rf9x1vhyw2xkpdjy"
	helloWorldCID          = "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"
)

func helloWorldHash(t *testing.T) domain.Hash {
	t.Helper()
	return domain.HashString("hello world")
}

func TestContentAddress_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"text:sha256:" + helloWorldSHA256Base32,
		"fixed:sha256:" + helloWorldSHA256Base32,
		"fixed:r:sha256:" + helloWorldSHA256Base32,
		"fixed:git:sha1:" + helloWorldSHA1Base32,
		"fixed:r:md5:" + helloWorldMD5Base32,
		"ipfs:" + helloWorldCID,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			ca, err := domain.ParseContentAddress(in)
			require.NoError(t, err)
			assert.Equal(t, in, ca.String())

			again, err := domain.ParseContentAddress(ca.String())
			require.NoError(t, err)
			assert.True(t, ca.Equal(again))
		})
	}
}

func TestContentAddress_AcceptsAnyDigestEncoding(t *testing.T) {
	t.Parallel()

	hexForm := "fixed:r:sha256:" + domain.FormatDigest(helloWorldHash(t), domain.Base16)
	ca, err := domain.ParseContentAddress(hexForm)
	require.NoError(t, err)
	assert.Equal(t, "fixed:r:sha256:"+helloWorldSHA256Base32, ca.String())

	m, ok := ca.Method().Ingestion()
	require.True(t, ok)
	assert.Equal(t, domain.FileIngestionRecursive, m)
	assert.Equal(t, "r:sha256", ca.PrintMethodAlgo())
}

func TestContentAddress_IPFS(t *testing.T) {
	t.Parallel()

	ca, err := domain.NewIPFSContentAddress(helloWorldHash(t))
	require.NoError(t, err)
	assert.Equal(t, "ipfs:"+helloWorldCID, ca.String())
	assert.True(t, ca.Method().IsIPFS())
	assert.Equal(t, "ipfs:sha256", ca.PrintMethodAlgo())
}

func TestParseContentAddress_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "no prefix", in: "sha256", want: domain.ErrInvalidContentAddress},
		{name: "unknown prefix", in: "blob:sha256:" + helloWorldSHA256Base32, want: domain.ErrInvalidContentAddress},
		{name: "missing algorithm", in: "fixed:" + helloWorldSHA256Base32, want: domain.ErrInvalidContentAddress},
		{name: "wrong digest length", in: "fixed:r:sha256:" + helloWorldSHA256Base32[1:], want: domain.ErrInvalidHash},
		{name: "text requires sha256", in: "text:sha1:" + helloWorldSHA1Hex, want: domain.ErrUnsupportedHashAlgorithm},
		{name: "git rejects md5", in: "fixed:git:md5:" + helloWorldMD5Base32, want: domain.ErrUnsupportedHashAlgorithm},
		{name: "bad cid", in: "ipfs:notacid", want: domain.ErrInvalidCID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.ParseContentAddress(tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseContentAddress_ErrorMetadata(t *testing.T) {
	t.Parallel()

	_, err := domain.ParseContentAddress("blob:x")
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "blob:x", zErr.Metadata()["content_address"])
}

func TestContentAddress_JSON(t *testing.T) {
	t.Parallel()

	ca, err := domain.NewFixedContentAddress(domain.FileIngestionFlat, helloWorldHash(t))
	require.NoError(t, err)

	data, err := json.Marshal(ca)
	require.NoError(t, err)
	assert.JSONEq(t, `"fixed:sha256:`+helloWorldSHA256Base32+`"`, string(data))

	var back domain.ContentAddress
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ca.Equal(back))
}

func TestMethodAlgo_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"sha256", "r:sha256", "git:sha1", "text:sha256", "ipfs:sha256", "r:sha512"} {
		m, algo, err := domain.ParseMethodAlgo(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, domain.PrintMethodAlgo(m, algo))
	}

	_, _, err := domain.ParseMethodAlgo("r:sha3")
	require.ErrorIs(t, err, domain.ErrUnsupportedHashAlgorithm)
}
