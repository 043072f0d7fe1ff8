package booking

import (
	"crypto/rand"
	"io"
)

// IDPrefix starts every booking id.
const IDPrefix = "CVX"

// idAlphabet leaves out characters that are easy to misread (I, O, 0, 1).
const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const idRandomLen = 7

// GenerateID returns a new booking id such as "CVX7K2MQ9A".
func GenerateID() (string, error) {
	return generateID(rand.Reader)
}

func generateID(r io.Reader) (string, error) {
	buf := make([]byte, idRandomLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	out := make([]byte, 0, len(IDPrefix)+idRandomLen)
	out = append(out, IDPrefix...)
	for _, b := range buf {
		// 256 is a multiple of the alphabet size, so the modulo is unbiased.
		out = append(out, idAlphabet[int(b)%len(idAlphabet)])
	}
	return string(out), nil
}
