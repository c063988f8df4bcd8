package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"

	"github.com/google/uuid"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	// crypto/rand.Read never returns an error as of Go 1.24
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateUUID returns a random v4 UUID string
func GenerateUUID() string {
	return uuid.NewString()
}

// WrapRotation keeps a rotation inside [-2PI, 2PI] without flipping its sign.
func WrapRotation(r float64) float64 {
	if math.Abs(r) <= 2*math.Pi {
		return r
	}
	return math.Mod(r, 2*math.Pi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
