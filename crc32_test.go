package tspsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCRC32Deterministic(t *testing.T) {
	bs := []byte{0x00, 0x01, 0xc1, 0x00, 0x00, 0x00, 0x01, 0xe0, 0x20}
	assert.Equal(t, computeCRC32(bs), computeCRC32(bs))
}

func TestComputeCRC32DiffersOnChange(t *testing.T) {
	a := []byte{0x00, 0x01, 0xc1, 0x00, 0x00, 0x00, 0x01, 0xe0, 0x20}
	b := []byte{0x00, 0x01, 0xc1, 0x00, 0x00, 0x00, 0x01, 0xe0, 0x21}
	assert.NotEqual(t, computeCRC32(a), computeCRC32(b))
}

func TestComputeCRC32Empty(t *testing.T) {
	assert.Equal(t, crc32InitialValue, computeCRC32(nil))
}
