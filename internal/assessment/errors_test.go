package assessment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/stylequiz/internal/vark"
)

func TestIsValidation(t *testing.T) {
	_, _, emptyErr := vark.Aggregate(nil)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", &ValidationError{Field: "option", Message: "out of range"}, true},
		{"wrapped validation error", fmt.Errorf("submit: %w", &ValidationError{Message: "bad"}), true},
		{"empty vark input", emptyErr, true},
		{"wrapped empty vark input", fmt.Errorf("questionnaire: %w", vark.ErrEmptyInput), true},
		{"gateway error", &GatewayError{Op: "start test", Err: errors.New("timeout")}, false},
		{"state error", &StateError{Op: "submit answer", State: StateIdle}, false},
		{"busy", ErrBusy, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidation(tt.err))
		})
	}
}

func TestUserMessage_EmptyVarkInput(t *testing.T) {
	assert.Equal(t, vark.ErrEmptyInput.Error(), UserMessage(vark.ErrEmptyInput))
}
