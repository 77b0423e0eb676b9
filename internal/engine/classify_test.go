package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUncertain(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"I don't know", true},
		{"i dont know", true},
		{"I'M NOT SURE about this", true},
		{"honestly, no idea", true},
		{"no clue", true},
		{"not really sure here", true},
		{"  i am not sure  ", true},
		{"A list is an ordered mutable sequence.", false},
		{"The answer is certainly X.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUncertain(tt.answer))
		})
	}
}

func TestShouldProceed(t *testing.T) {
	tests := []struct {
		feedback string
		want     bool
	}{
		{"Well done. Let's move to the next question.", true},
		{"That's correct!", true},
		{"EXCELLENT work", true},
		{"Great job, exactly right.", true},
		{"You're missing the mutability part. Can you expand?", false},
		{"Not quite - think about thread safety.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.feedback, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldProceed(tt.feedback))
		})
	}
}
