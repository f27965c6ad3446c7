package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/service"
	"GymTree/pkg/response"
	"GymTree/pkg/token"
	"GymTree/utils"
)

// RegisterProfile 创建档案并签发 token
// POST /v1/auth/register
func RegisterProfile(ctx context.Context, c *app.RequestContext) {
	var req struct {
		Nickname string `json:"nickname"`
		Timezone string `json:"timezone"`
	}
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	profile, err := service.Profile().CreateProfile(ctx, req.Nickname, req.Timezone)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	accessToken, expiresIn, err := token.GenerateToken(utils.FormatID(profile.PublicID))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"profile":      toProfileResponse(profile),
		"access_token": accessToken,
		"expires_in":   expiresIn,
	})
}
