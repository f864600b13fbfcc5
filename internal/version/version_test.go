package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Get()
	assert.True(t, strings.HasPrefix(info.String(), "Fibertrack "+Version))
	assert.Contains(t, info.Platform, "/")
	assert.Equal(t, Version, GetVersion())
}
