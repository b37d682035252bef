package v1

import (
	"context"

	"github.com/promptdeck/promptdeck/pkg/types"
)

const (
	TOKEN_CONTEXT_KEY = "pd.access_token"
)

// InjectTokenClaim gets the authenticated access token from the request
// context. The auth middleware stores it under TOKEN_CONTEXT_KEY.
func InjectTokenClaim(ctx context.Context) (types.AccessToken, bool) {
	claim, ok := ctx.Value(TOKEN_CONTEXT_KEY).(types.AccessToken)
	return claim, ok
}
