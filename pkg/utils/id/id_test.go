package id_test

import (
	"testing"

	"github.com/kart-io/docqa/pkg/utils/id"
	"github.com/stretchr/testify/assert"
)

func TestNewUUID(t *testing.T) {
	a := id.NewUUID()
	b := id.NewUUID()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.True(t, id.IsValidUUID(a))
}

func TestGenerateN(t *testing.T) {
	gen := id.NewUUIDGenerator()
	ids := gen.GenerateN(10)

	assert.Len(t, ids, 10)
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		assert.True(t, id.IsValidUUID(v))
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"有效 UUID", "550e8400-e29b-41d4-a716-446655440000", true},
		{"空字符串", "", false},
		{"随机文本", "not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, id.IsValidUUID(tt.input))
		})
	}
}
