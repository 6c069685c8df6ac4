package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
)

func TestParseSingleDerivedPath(t *testing.T) {
	t.Parallel()

	dep := mustParsePath(t, depDrv)

	tests := []struct {
		in   string
		want domain.SingleDerivedPath
	}{
		{
			in:   "/nix/store/" + depDrv,
			want: domain.SingleDerivedPathOpaque{Path: dep},
		},
		{
			in: "/nix/store/" + depDrv + "!out",
			want: domain.SingleDerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathOpaque{Path: dep},
				Output:  "out",
			},
		},
		{
			in: "/nix/store/" + depDrv + "!out!bin",
			want: domain.SingleDerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathBuilt{
					DrvPath: domain.SingleDerivedPathOpaque{Path: dep},
					Output:  "out",
				},
				Output: "bin",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseSingleDerivedPath(storeDir, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.Render(storeDir))
			assert.Equal(t, dep, domain.BaseStorePath(got))
		})
	}
}

func TestParseDerivedPath(t *testing.T) {
	t.Parallel()

	dep := mustParsePath(t, depDrv)

	tests := []struct {
		in   string
		want domain.DerivedPath
	}{
		{
			in:   "/nix/store/" + helloOut,
			want: domain.DerivedPathOpaque{Path: mustParsePath(t, helloOut)},
		},
		{
			in: "/nix/store/" + depDrv + "!*",
			want: domain.DerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathOpaque{Path: dep},
				Outputs: domain.AllOutputs(),
			},
		},
		{
			in: "/nix/store/" + depDrv + "!dev,out",
			want: domain.DerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathOpaque{Path: dep},
				Outputs: domain.OutputNames("out", "dev"),
			},
		},
		{
			in: "/nix/store/" + depDrv + "!out!lib",
			want: domain.DerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathBuilt{
					DrvPath: domain.SingleDerivedPathOpaque{Path: dep},
					Output:  "out",
				},
				Outputs: domain.OutputNames("lib"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseDerivedPath(storeDir, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.Render(storeDir))
		})
	}
}

func TestParseDerivedPath_Errors(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"relative/path",
		"/nix/store/" + depDrv + "!",
		"/nix/store/" + depDrv + "!out,",
		"/nix/store/" + depDrv + "!!out",
		"/nix/store/" + helloOut + "!out",
		"/nix/store/" + helloOut + "!*",
		"/tmp/" + depDrv + "!out",
	}
	for _, in := range bad {
		_, err := domain.ParseDerivedPath(storeDir, in)
		require.ErrorIs(t, err, domain.ErrInvalidDerivedPath, in)
	}
}

func TestOutputsSpec(t *testing.T) {
	t.Parallel()

	a := domain.OutputNames("out")
	b := domain.OutputNames("dev")
	u := a.Union(b)
	assert.Equal(t, "dev,out", u.String())
	assert.True(t, u.Contains("dev"))
	assert.False(t, u.Contains("lib"))
	assert.True(t, u.Equal(domain.OutputNames("out", "dev")))
	assert.False(t, u.Equal(domain.AllOutputs()))

	all := a.Union(domain.AllOutputs())
	assert.True(t, all.All)
	assert.True(t, all.Contains("anything"))
	assert.Equal(t, "*", all.String())
}

func TestBuiltPath_Paths(t *testing.T) {
	t.Parallel()

	out := mustParsePath(t, helloOut)
	dev := mustParsePath(t, helloDev)
	b := domain.BuiltPathBuilt{
		DrvPath: mustParsePath(t, depDrv),
		Outputs: map[string]domain.StorePath{"out": out, "dev": dev},
	}
	assert.Equal(t, []domain.StorePath{dev, out}, b.Paths())
	assert.Equal(t, []domain.StorePath{out}, domain.BuiltPathOpaque{Path: out}.Paths())
}
