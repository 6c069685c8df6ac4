package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cask/internal/core/domain"
)

func TestHashPlaceholder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/1rz4g4znpzjwh1xymhjpm42vipw92pr73vdgl6xs1hycac8kf2n9", domain.HashPlaceholder("out"))
	assert.NotEqual(t, domain.HashPlaceholder("out"), domain.HashPlaceholder("dev"))
}

func TestDownstreamPlaceholder(t *testing.T) {
	t.Parallel()

	drv := mustParsePath(t, depDrv)
	out := domain.DownstreamPlaceholder(drv, "out")
	lib := domain.DownstreamPlaceholder(drv, "lib")

	assert.Equal(t, "/1xnvw5bn7r7gh1qbsfyhga3an1g2j16i5l6zikj1100msddjbizg", out)
	assert.NotEqual(t, out, lib)
	assert.Len(t, out, 53)
}
