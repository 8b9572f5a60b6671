package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const (
	codeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultCodeLength   = 12
	DefaultCodeAttempts = 10
)

// CodeGenerator produces voter receipts. Codes are re-rolled while they
// collide with an existing vote, up to a fixed number of attempts.
type CodeGenerator struct {
	checker  ports.VerificationCodeChecker
	length   int
	attempts int
	random   io.Reader
}

func NewCodeGenerator(checker ports.VerificationCodeChecker) *CodeGenerator {
	return &CodeGenerator{
		checker:  checker,
		length:   DefaultCodeLength,
		attempts: DefaultCodeAttempts,
		random:   rand.Reader,
	}
}

func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for range g.attempts {
		code, err := g.sample()
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}

		exists, err := g.checker.VerificationCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check verification code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%d attempts collided: %w", g.attempts, domain.ErrCodeSpaceExhausted)
}

func (g *CodeGenerator) sample() (string, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(g.random, alphabetLen)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
