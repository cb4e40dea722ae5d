package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	u, err := Parse("neurona://my-cortex/req.auth.oauth2")
	require.NoError(t, err)
	assert.Equal(t, "my-cortex", u.CortexID)
	assert.Equal(t, "req.auth.oauth2", u.NeuronaID)
}

func TestParse_RoundTrip(t *testing.T) {
	u, err := Parse("neurona://my-cortex/req.a")
	require.NoError(t, err)
	assert.Equal(t, "neurona://my-cortex/req.a", u.String())
}

func TestParse_MissingScheme(t *testing.T) {
	_, err := Parse("my-cortex/req.a")
	assert.Error(t, err)
}

func TestParse_MissingSlash(t *testing.T) {
	_, err := Parse("neurona://my-cortex-req.a")
	assert.Error(t, err)
}

func TestParse_EmptyCortexID(t *testing.T) {
	_, err := Parse("neurona:///req.a")
	assert.Error(t, err)
}

func TestParse_EmptyNeuronaID(t *testing.T) {
	_, err := Parse("neurona://my-cortex/")
	assert.Error(t, err)
}

func TestParse_ExtraSlash(t *testing.T) {
	_, err := Parse("neurona://my-cortex/sub/req.a")
	assert.Error(t, err)
}
