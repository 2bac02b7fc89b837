package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.NotEmpty(t, GetVersion())
}
