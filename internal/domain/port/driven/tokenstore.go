package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by TokenStore reads when the stored token
// was sealed with a key but MEDILENS_SECRET_KEY is not configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set MEDILENS_SECRET_KEY")

// TokenStore defines the driven port for the persisted bearer credential.
// There is a single slot; the last writer wins.
type TokenStore interface {
	// Set stores cred, replacing any existing credential. A nil or incomplete
	// cred removes the stored token and user identity together.
	Set(ctx context.Context, cred *model.Credential) error

	// Get returns the stored credential, or (nil, nil) if none is stored.
	// Expiry is never checked locally.
	Get(ctx context.Context) (*model.Credential, error)
}
