package checkout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

func TestStartFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unreachable", &domain.NetworkError{Op: "create-order"}, msgConnectivity},
		{"wrapped unreachable", fmt.Errorf("buy: %w", &domain.NetworkError{Op: "create-order"}), msgConnectivity},
		{"status", &domain.NetworkError{Op: "create-order", Status: 502}, "Something went wrong. HTTP error! status: 502"},
		{"rejected", &domain.RejectedError{Message: "Pack sold out"}, "Something went wrong. Pack sold out"},
		{"widget", domain.ErrWidgetUnavailable, msgWidgetUnavailable},
		{"other error keeps its detail", errors.New("unexpected end of JSON input"), "Something went wrong. unexpected end of JSON input"},
		{"empty message", errors.New(""), "Something went wrong. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, startFailureMessage(tt.err))
		})
	}
}
