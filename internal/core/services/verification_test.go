package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

func TestCodeGenerator_Generate(t *testing.T) {
	gen := NewCodeGenerator(codeSet{})

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected symbol %q", r)
	}
}

func TestCodeGenerator_Exhausted(t *testing.T) {
	// A constant random source always yields the same code.
	zeros := bytes.Repeat([]byte{0}, 4096)
	seed := NewCodeGenerator(codeSet{})
	seed.random = bytes.NewReader(zeros)
	taken, err := seed.Generate(context.Background())
	require.NoError(t, err)

	gen := NewCodeGenerator(codeSet{taken: true})
	gen.random = bytes.NewReader(zeros)

	_, err = gen.Generate(context.Background())
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
}

func TestCodeGenerator_RetriesOnCollision(t *testing.T) {
	zeros := bytes.Repeat([]byte{0}, 64)
	seed := NewCodeGenerator(codeSet{})
	seed.random = bytes.NewReader(zeros)
	taken, err := seed.Generate(context.Background())
	require.NoError(t, err)

	gen := NewCodeGenerator(codeSet{taken: true})
	gen.random = &prefixReader{prefix: zeros}

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, taken, code)
}

// prefixReader serves prefix and then a fixed non-zero byte.
type prefixReader struct {
	prefix []byte
}

func (r *prefixReader) Read(p []byte) (int, error) {
	if len(r.prefix) > 0 {
		n := copy(p, r.prefix)
		r.prefix = r.prefix[n:]
		return n, nil
	}
	for i := range p {
		p[i] = 11
	}
	return len(p), nil
}
