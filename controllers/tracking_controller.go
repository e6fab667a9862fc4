package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/services"
)

// TrackingController serves the public tracking lookup.
type TrackingController struct {
	lookup services.LookupService
	loc    *time.Location
}

// NewTrackingController creates a new TrackingController. Dates are rendered
// in loc.
func NewTrackingController(lookup services.LookupService, loc *time.Location) *TrackingController {
	return &TrackingController{lookup: lookup, loc: loc}
}

type trackingCheckRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

// CheckTracking handles POST /tracking/check, the tracking form submit.
func (tc *TrackingController) CheckTracking(ctx *gin.Context) {
	var req trackingCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	id := models.NormalizeTrackingID(req.TrackingNumber)
	exists, err := tc.lookup.Exists(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"trackingId": id,
		"exists":     exists,
		"location":   "/tracking/" + id,
	})
}

// GetTracking handles GET /tracking/:tracking_id
func (tc *TrackingController) GetTracking(ctx *gin.Context) {
	res := tc.lookup.Lookup(ctx.Request.Context(), ctx.Param("tracking_id"))
	switch res.State {
	case services.LookupIdle:
		respondError(ctx, services.ErrEmptyTrackingID)
	case services.LookupFound:
		ctx.JSON(http.StatusOK, gin.H{"shipment": services.NewShipmentView(*res.Shipment, tc.loc)})
	default:
		// Remote failures read as "not found" to the public; state tells them apart.
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":      "Tracking number not found",
			"trackingId": res.TrackingID,
			"state":      res.State,
		})
	}
}

// TrackingExists handles GET /tracking/:tracking_id/exists
func (tc *TrackingController) TrackingExists(ctx *gin.Context) {
	exists, err := tc.lookup.Exists(ctx.Request.Context(), ctx.Param("tracking_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"exists": exists})
}
