package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/middleware"
	"GymTree/internal/model"
	"GymTree/internal/service"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/response"
)

// GetProfile 获取当前用户档案
// GET /v1/profiles/me
func GetProfile(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	profile, err := service.Profile().GetProfileCached(ctx, profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toProfileResponse(profile))
}

// UpdateGymLocation 设置健身房位置
// PUT /v1/profiles/me/gym-location
func UpdateGymLocation(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	var req model.UpdateGymLocationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		response.Error(ctx, c, pkgerrors.GymLocationInvalid)
		return
	}

	profile, err := service.Profile().UpdateGymLocation(ctx, profileID, *req.Latitude, *req.Longitude)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toProfileResponse(profile))
}

func toProfileResponse(p *model.Profile) model.ProfileResponse {
	return model.ProfileResponse{
		ID:            p.PublicID,
		Nickname:      p.Nickname,
		GymLatitude:   p.GymLatitude,
		GymLongitude:  p.GymLongitude,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		Timezone:      p.Timezone,
	}
}
