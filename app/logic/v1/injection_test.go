package v1

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/types"
)

func TestInjectTokenClaim(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := InjectTokenClaim(c)
	assert.False(t, ok)

	c.Set(TOKEN_CONTEXT_KEY, types.AccessToken{ID: 7, UserID: "user-1"})
	claim, ok := InjectTokenClaim(c)
	require.True(t, ok)
	assert.Equal(t, int64(7), claim.ID)
	assert.Equal(t, "user-1", claim.UserID)
}
