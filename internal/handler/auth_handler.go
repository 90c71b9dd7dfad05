package handler

import (
	"errors"
	"net/http"

	"tably/internal/middleware"
	"tably/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc *service.AuthService
}

func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	WalletAddress *string `json:"wallet_address"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, access, refresh, err := h.authSvc.Register(req.Email, req.Password, req.WalletAddress)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"profile":       p,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type setWalletRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// SetWallet updates the authenticated profile's payout wallet address.
func (h *AuthHandler) SetWallet(c *gin.Context) {
	var req setWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profileID := middleware.GetProfileID(c)
	if err := h.authSvc.SetWallet(profileID, req.WalletAddress); err != nil {
		if errors.Is(err, service.ErrWalletTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet_address": req.WalletAddress})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, access, refresh, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":       p,
		"access_token":  access,
		"refresh_token": refresh,
	})
}
