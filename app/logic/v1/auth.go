package v1

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
)

type AuthLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAuthLogic(ctx context.Context, core *core.Core) *AuthLogic {
	return &AuthLogic{
		ctx:  ctx,
		core: core,
	}
}

const accessTokenTTL = time.Hour * 24 * 365

func (l *AuthLogic) CreateAccessToken(userID, info string) (*types.AccessToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.New("AuthLogic.CreateAccessToken.rand", "failed to generate token", err)
	}

	token := types.AccessToken{
		UserID:    userID,
		Token:     hex.EncodeToString(buf),
		Info:      info,
		ExpiresAt: time.Now().Add(accessTokenTTL).Unix(),
		CreatedAt: time.Now().Unix(),
	}

	if err := l.core.Store().AccessTokenStore().Create(l.ctx, token); err != nil {
		return nil, errors.Trace("AuthLogic.CreateAccessToken.AccessTokenStore.Create", err)
	}
	return &token, nil
}

func (l *AuthLogic) DeleteAccessToken(userID string, id int64) error {
	if err := l.core.Store().AccessTokenStore().Delete(l.ctx, userID, id); err != nil {
		return errors.Trace("AuthLogic.DeleteAccessToken.AccessTokenStore.Delete", err)
	}
	return nil
}
