package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/gamestory/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	out := version.String("gamestory")

	assert.Contains(t, out, "gamestory ")
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, "commit: "+version.Commit)
}
