// Package id provides unique ID generation utilities for DocQA.
//
// Document identifiers use standard UUID v4 (random). Generators are
// safe for concurrent use.
package id

import (
	"github.com/google/uuid"
)

// Generator defines the interface for ID generators.
type Generator interface {
	// Generate creates a new unique ID.
	Generate() string

	// GenerateN creates n unique IDs.
	GenerateN(n int) []string
}

// UUIDGenerator generates UUID v4 identifiers.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUID generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate creates a new UUID v4 string.
func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// GenerateN creates n UUID v4 strings.
func (g *UUIDGenerator) GenerateN(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = g.Generate()
	}
	return ids
}

var _ Generator = (*UUIDGenerator)(nil)

// NewUUID generates a new UUID v4 string.
func NewUUID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether s is a valid UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
