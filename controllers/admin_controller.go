package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/middleware"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/services"
)

// AdminController handles the shipment management endpoints. Every route
// sits behind middleware.RequireSession.
type AdminController struct {
	admin  services.AdminService
	lookup services.LookupService
	loc    *time.Location
}

func NewAdminController(admin services.AdminService, lookup services.LookupService, loc *time.Location) *AdminController {
	return &AdminController{admin: admin, lookup: lookup, loc: loc}
}

// ListShipments handles GET /admin/shipments?q=
func (ac *AdminController) ListShipments(ctx *gin.Context) {
	list := ac.lookup.Filter(ctx.Query("q"))
	ctx.JSON(http.StatusOK, gin.H{"shipments": list, "count": len(list)})
}

// RefreshShipments handles POST /admin/shipments/refresh
func (ac *AdminController) RefreshShipments(ctx *gin.Context) {
	list, err := ac.admin.Refresh(ctx.Request.Context(), middleware.CurrentSession(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"shipments": list, "count": len(list)})
}

// GetShipment handles GET /admin/shipments/:tracking_id
func (ac *AdminController) GetShipment(ctx *gin.Context) {
	sh, err := ac.lookup.Resolve(ctx.Request.Context(), ctx.Param("tracking_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if sh == nil {
		respondError(ctx, services.ErrNotFound)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"shipment": services.NewShipmentView(*sh, ac.loc)})
}

// CreateShipment handles POST /admin/shipments
func (ac *AdminController) CreateShipment(ctx *gin.Context) {
	var draft models.ShipmentDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	sh, err := ac.admin.Create(ctx.Request.Context(), middleware.CurrentSession(ctx), draft)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"shipment": sh})
}

// EditShipment handles PUT /admin/shipments/:tracking_id
func (ac *AdminController) EditShipment(ctx *gin.Context) {
	var draft models.ShipmentDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	sh, err := ac.admin.Edit(ctx.Request.Context(), middleware.CurrentSession(ctx), ctx.Param("tracking_id"), draft)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"shipment": sh})
}

// AppendUpdate handles POST /admin/shipments/:tracking_id/updates
func (ac *AdminController) AppendUpdate(ctx *gin.Context) {
	var draft models.UpdateDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	sh, err := ac.admin.AppendUpdate(ctx.Request.Context(), middleware.CurrentSession(ctx), ctx.Param("tracking_id"), draft)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"shipment": sh})
}

// DeleteShipment handles DELETE /admin/shipments/:tracking_id?confirm=true
func (ac *AdminController) DeleteShipment(ctx *gin.Context) {
	confirmed, _ := strconv.ParseBool(ctx.Query("confirm"))
	if err := ac.admin.Remove(ctx.Request.Context(), middleware.CurrentSession(ctx), ctx.Param("tracking_id"), confirmed); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Shipment deleted"})
}
