package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agrisense/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agrisense/internal/common"
	"github.com/dmitrijs2005/agrisense/internal/cryptox"
)

// PassphraseSealer returns a sealer keyed by passphrase and the salt stored
// in repo, generating and storing a new salt on first use.
func PassphraseSealer(ctx context.Context, repo metadata.Repository, passphrase string) (cryptox.Sealer, error) {
	salt, err := repo.Get(ctx, common.VaultSaltStorageKey)
	if err != nil {
		return nil, fmt.Errorf("load vault salt: %w", err)
	}
	if len(salt) == 0 {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := repo.Set(ctx, common.VaultSaltStorageKey, salt); err != nil {
			return nil, fmt.Errorf("store vault salt: %w", err)
		}
	}

	pass := []byte(passphrase)
	defer common.WipeByteArray(pass)

	s, err := cryptox.NewPassphraseSealer(pass, salt)
	if err != nil {
		return nil, fmt.Errorf("vault sealer: %w", err)
	}
	return s, nil
}
