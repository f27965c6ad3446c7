package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/geo"
	"GymTree/internal/middleware"
	"GymTree/internal/model"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/response"
)

// PushLocationSample 设备上报一次定位样本
// POST /v1/locations/samples
func PushLocationSample(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	if ingestor == nil {
		response.Error(ctx, c, pkgerrors.LocationUnavailable)
		return
	}

	var req model.PushSampleRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	coord := geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if !coord.Valid() || req.Accuracy < 0 {
		response.Error(ctx, c, pkgerrors.SampleInvalid)
		return
	}

	sample := geoprovider.Sample{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
	}
	if req.Timestamp > 0 {
		sample.Timestamp = time.Unix(req.Timestamp, 0)
	}

	ingestor.Ingest(profileID, sample)
	response.Success(ctx, c, map[string]interface{}{"accepted": true})
}

// ReportPermission 设备回传定位权限状态
// POST /v1/locations/permission
func ReportPermission(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	if ingestor == nil {
		response.Error(ctx, c, pkgerrors.LocationUnavailable)
		return
	}

	var req struct {
		Granted bool `json:"granted"`
	}
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	p := geoprovider.PermissionDenied
	if req.Granted {
		p = geoprovider.PermissionGranted
	}
	ingestor.ReportPermission(profileID, p)

	response.Success(ctx, c, map[string]interface{}{"granted": req.Granted})
}
