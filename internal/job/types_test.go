package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWorkers(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "zero value returns default", input: 0, expected: DefaultWorkers},
		{name: "negative value returns default", input: -1, expected: DefaultWorkers},
		{name: "valid value within range", input: 10, expected: 10},
		{name: "value at max limit", input: MaxAllowedWorkers, expected: MaxAllowedWorkers},
		{name: "excessive value is capped", input: 1000, expected: MaxAllowedWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateWorkers(tt.input))
		})
	}
}
