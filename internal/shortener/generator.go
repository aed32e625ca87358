package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the set of characters generated codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength is used when a non-positive length is requested.
const DefaultCodeLength = 4

// CodeGenerator returns a new random code on every call.
// Codes are not guaranteed to be unique; callers check against the store.
type CodeGenerator func() string

// NewCodeGenerator creates a generator producing codes of the given length,
// each character picked uniformly from Alphabet.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return gen, nil
}
