package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("subscriber not found"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "subscriber not found", attr.Value.String())
}
