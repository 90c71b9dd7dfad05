package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tably/internal/domain"
	"tably/internal/middleware"
	"tably/internal/models"
	"tably/internal/repository"
	"tably/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettlementHandler struct {
	settlementSvc *service.SettlementService
	memberships   *repository.MembershipRepository
	venues        *repository.VenueRepository
}

func NewSettlementHandler(
	settlementSvc *service.SettlementService,
	memberships *repository.MembershipRepository,
	venues *repository.VenueRepository,
) *SettlementHandler {
	return &SettlementHandler{
		settlementSvc: settlementSvc,
		memberships:   memberships,
		venues:        venues,
	}
}

func venueIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return 0, false
	}
	return uint(id), true
}

// ListVenues returns the venue catalog members can join.
func (h *SettlementHandler) ListVenues(c *gin.Context) {
	venues, err := h.venues.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "venues unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

type joinRequest struct {
	ExternalCustomerID string `json:"external_customer_id" binding:"required"`
}

// Join creates the member's ACTIVE membership at a venue. One membership per
// profile/venue pairing; the unique index rejects a second join.
func (h *SettlementHandler) Join(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.venues.GetByID(venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "venue lookup failed"})
		return
	}
	m := &models.Membership{
		ProfileID:          profileID,
		VenueID:            venueID,
		Status:             domain.MembershipActive,
		ExternalCustomerID: req.ExternalCustomerID,
	}
	if err := h.memberships.Create(m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "membership already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create membership"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *SettlementHandler) CheckIn(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	result, err := h.settlementSvc.CheckIn(c.Request.Context(), profileID, venueID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SettlementHandler) CheckOut(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	result, err := h.settlementSvc.CheckOut(c.Request.Context(), profileID, venueID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
