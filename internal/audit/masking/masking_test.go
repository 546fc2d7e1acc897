package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a****@acme.com", MaskEmail(" alice@acme.com "))
	assert.Equal(t, "", MaskEmail(""))
	assert.Equal(t, "****", MaskEmail("@x"))
	assert.Equal(t, "****code", MaskEmail("not-an-email-code"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("123456789"))
}
