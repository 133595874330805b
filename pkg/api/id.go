package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	pipeIDPrefix       = "pipe_"
	generationIDPrefix = "gen_"
)

var (
	pipeIDPattern       = regexp.MustCompile(`^pipe_[a-zA-Z0-9]{24}$`)
	generationIDPattern = regexp.MustCompile(`^gen_[a-zA-Z0-9]{24}$`)
)

// NewPipeID generates a new pipe invocation ID with the "pipe_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewPipeID() string {
	return pipeIDPrefix + randomAlphanumeric(idLength)
}

// NewGenerationID generates a new backend generation ID with the "gen_"
// prefix followed by 24 cryptographically random alphanumeric characters.
func NewGenerationID() string {
	return generationIDPrefix + randomAlphanumeric(idLength)
}

// ValidatePipeID checks whether the given string is a valid pipe ID
// (matches "pipe_" + 24 alphanumeric characters).
func ValidatePipeID(id string) bool {
	return pipeIDPattern.MatchString(id)
}

// ValidateGenerationID checks whether the given string is a valid generation
// ID (matches "gen_" + 24 alphanumeric characters).
func ValidateGenerationID(id string) bool {
	return generationIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
