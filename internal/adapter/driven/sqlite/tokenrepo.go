package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// Fixed storage keys for the two halves of a credential.
const (
	tokenKey = "token"
	userKey  = "user"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port.
// When a key is configured the token is sealed with AES-256-GCM before write.
type TokenRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores values unencrypted.
}

// NewTokenRepo creates a TokenRepo. key must be 32 bytes, or nil.
func NewTokenRepo(db *DB, key []byte) *TokenRepo {
	return &TokenRepo{db: db, key: key}
}

// Set replaces the stored credential. A nil or incomplete cred removes both keys.
func (r *TokenRepo) Set(ctx context.Context, cred *model.Credential) error {
	if !cred.Valid() {
		return r.clear(ctx)
	}

	token, encrypted := cred.Token, false
	if r.key != nil {
		sealed, err := r.encrypt(cred.Token)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		token, encrypted = sealed, true
	}

	user, err := json.Marshal(model.UserIdentity{Email: cred.Subject})
	if err != nil {
		return fmt.Errorf("marshal user identity: %w", err)
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set credential: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT OR REPLACE INTO local_storage (key, value, encrypted, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := tx.ExecContext(ctx, query, tokenKey, token, encrypted); err != nil {
		return fmt.Errorf("set %q: %w", tokenKey, err)
	}
	if _, err := tx.ExecContext(ctx, query, userKey, string(user), false); err != nil {
		return fmt.Errorf("set %q: %w", userKey, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or (nil, nil) when either key is missing.
func (r *TokenRepo) Get(ctx context.Context) (*model.Credential, error) {
	const query = `SELECT key, value, encrypted FROM local_storage WHERE key IN (?, ?)`
	rows, err := r.db.Reader.QueryContext(ctx, query, tokenKey, userKey)
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	defer rows.Close()

	var (
		token, user        string
		haveToken, haveUsr bool
		tokenEncrypted     bool
	)
	for rows.Next() {
		var key, value string
		var encrypted bool
		if err := rows.Scan(&key, &value, &encrypted); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		switch key {
		case tokenKey:
			token, tokenEncrypted, haveToken = value, encrypted, true
		case userKey:
			user, haveUsr = value, true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential: %w", err)
	}

	if !haveToken || !haveUsr {
		return nil, nil
	}

	if tokenEncrypted {
		if r.key == nil {
			return nil, driven.ErrEncryptionKeyNotSet
		}
		token, err = r.decrypt(token)
		if err != nil {
			return nil, fmt.Errorf("decrypt token: %w", err)
		}
	}

	var identity model.UserIdentity
	if err := json.Unmarshal([]byte(user), &identity); err != nil {
		return nil, fmt.Errorf("decode user identity: %w", err)
	}

	cred := &model.Credential{Token: token, Subject: identity.Email}
	if !cred.Valid() {
		return nil, nil
	}
	return cred, nil
}

func (r *TokenRepo) clear(ctx context.Context) error {
	const query = `DELETE FROM local_storage WHERE key IN (?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, tokenKey, userKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce prepended to the ciphertext.
func (r *TokenRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *TokenRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *TokenRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
