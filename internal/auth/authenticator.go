package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator verifies who is making a request.
// Implementations can be swapped (password, passkeys, OAuth) without touching services.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
