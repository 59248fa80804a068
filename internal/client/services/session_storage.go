package services

import (
	"context"
	"fmt"

	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/client/repositories/metadata"
	"github.com/saveeat/saveeat-client/internal/common"
	"github.com/saveeat/saveeat-client/internal/cryptox"
	"github.com/saveeat/saveeat-client/internal/dbx"
)

// load reads user, role and token. A token that cannot be unsealed is
// treated as absent.
func (s *sessionStore) load(ctx context.Context) (models.Session, error) {
	var stored models.Session
	repo := s.getMetadataRepo()

	var user models.User
	found, err := metadata.GetJSON(ctx, repo, common.MetadataKeyUser, &user)
	if err != nil {
		return stored, err
	}
	if found {
		stored.User = &user
	}

	role, err := repo.Get(ctx, common.MetadataKeyRole)
	if err != nil {
		return stored, err
	}
	if r := models.Role(role); r.Valid() {
		stored.Role = r
	}

	sealed, err := repo.Get(ctx, common.MetadataKeyToken)
	if err != nil {
		return stored, err
	}
	if len(sealed) == 0 {
		return stored, nil
	}

	sealer, err := s.getSealer(ctx, repo)
	if err != nil {
		return stored, err
	}
	token, err := sealer.Open(sealed)
	if err != nil {
		s.log.Warn(ctx, "persisted token unreadable, ignoring", "error", err)
		return stored, nil
	}
	stored.Token = string(token)
	return stored, nil
}

// persist writes the session in one transaction.
func (s *sessionStore) persist(ctx context.Context, sess models.Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		if sess.User != nil {
			if err := metadata.SetJSON(ctx, repo, common.MetadataKeyUser, sess.User); err != nil {
				return err
			}
		}
		if err := repo.Set(ctx, common.MetadataKeyRole, []byte(sess.Role)); err != nil {
			return err
		}

		sealer, err := s.getSealer(ctx, repo)
		if err != nil {
			return err
		}
		sealed, err := sealer.Seal([]byte(sess.Token))
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		return repo.Set(ctx, common.MetadataKeyToken, sealed)
	})
}

// clear wipes the metadata table, salt included.
func (s *sessionStore) clear(ctx context.Context) error {
	s.mu.Lock()
	s.sealer = nil
	s.mu.Unlock()
	return s.getMetadataRepo().Clear(ctx)
}

// getSealer returns the token sealer, creating the per-install salt on first
// use when a storage secret is configured.
func (s *sessionStore) getSealer(ctx context.Context, repo metadata.Repository) (cryptox.Sealer, error) {
	if len(s.secret) == 0 {
		return cryptox.Plain{}, nil
	}

	s.mu.RLock()
	sealer := s.sealer
	s.mu.RUnlock()
	if sealer != nil {
		return sealer, nil
	}

	salt, err := repo.Get(ctx, common.MetadataKeyTokenSalt)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		if salt, err = cryptox.NewSalt(); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := repo.Set(ctx, common.MetadataKeyTokenSalt, salt); err != nil {
			return nil, err
		}
	}

	sealer, err = cryptox.NewSealer(s.secret, salt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sealer = sealer
	s.mu.Unlock()
	return sealer, nil
}
