package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/stretchr/testify/assert"
)

func TestCredential_Bearer(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want string
	}{
		{"token", Credential{Phone: "01012345678", Token: "tok"}, "tok"},
		{"phone fallback", Credential{Phone: "01012345678"}, "01012345678"},
		{"anonymous", Credential{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Bearer())
		})
	}
}

func TestSessionCredential(t *testing.T) {
	s := identity.NewSession("sess-1", false, time.Now())
	s.Authenticate("01012345678", "tok", time.Now())

	assert.Equal(t, Credential{Phone: "01012345678", Token: "tok"}, SessionCredential(s))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(fmt.Errorf("%w: status 401", ErrBackendUnauthorized)))
	assert.False(t, IsUnauthorized(ErrBackendUnavailable))
}
