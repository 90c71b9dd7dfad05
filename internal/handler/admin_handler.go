package handler

import (
	"net/http"
	"strconv"

	"tably/internal/models"
	"tably/internal/repository"
	"tably/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	payoutSvc *service.PayoutService
	recon     *repository.ReconciliationRepository
	venues    *repository.VenueRepository
}

func NewAdminHandler(
	payoutSvc *service.PayoutService,
	recon *repository.ReconciliationRepository,
	venues *repository.VenueRepository,
) *AdminHandler {
	return &AdminHandler{payoutSvc: payoutSvc, recon: recon, venues: venues}
}

// RunPayouts triggers one payout batch on demand (same path as the ticker).
func (h *AdminHandler) RunPayouts(c *gin.Context) {
	report, err := h.payoutSvc.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) ListReconciliation(c *gin.Context) {
	flags, err := h.recon.ListOpen()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "flags unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": flags})
}

func (h *AdminHandler) ResolveReconciliation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag id"})
		return
	}
	rows, err := h.recon.Resolve(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "flag not found or already resolved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

type createVenueRequest struct {
	Name            string `json:"name" binding:"required"`
	ExternalEventID string `json:"external_event_id" binding:"required"`
}

// CreateVenue is a minimal seeding endpoint; the real catalog sync lives
// outside this service.
func (h *AdminHandler) CreateVenue(c *gin.Context) {
	var req createVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := &models.Venue{Name: req.Name, ExternalEventID: req.ExternalEventID}
	if err := h.venues.Create(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create venue"})
		return
	}
	c.JSON(http.StatusCreated, v)
}
