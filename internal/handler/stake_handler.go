package handler

import (
	"net/http"
	"strconv"

	"tably/internal/ledger"
	"tably/internal/middleware"
	"tably/internal/service"

	"github.com/gin-gonic/gin"
)

type StakeHandler struct {
	ledger   *ledger.Ledger
	stakeSvc *service.StakeService
}

func NewStakeHandler(ldg *ledger.Ledger, stakeSvc *service.StakeService) *StakeHandler {
	return &StakeHandler{ledger: ldg, stakeSvc: stakeSvc}
}

// GetBalance returns the profile's available credit, clamped at zero for
// display. Integrity faults are logged inside the ledger, not shown here.
func (h *StakeHandler) GetBalance(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	balance, err := h.ledger.PresentedBalance(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_cents": balance})
}

func (h *StakeHandler) ListStakes(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	stakes, err := h.stakeSvc.ListStakes(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stakes unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stakes": stakes})
}

// ListWithdrawals returns the profile's settled spend history.
func (h *StakeHandler) ListWithdrawals(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	withdrawals, err := h.stakeSvc.ListWithdrawals(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawals unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

func (h *StakeHandler) RequestUnstake(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	stakeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake id"})
		return
	}
	if err := h.stakeSvc.RequestUnstake(profileID, uint(stakeID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unstake requested"})
}
