package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"tably/internal/domain"
	"tably/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DepositWebhookHandler receives at-least-once deposit notifications from the
// payment network. It always acknowledges deliveries it cannot act on
// (unknown source address, duplicates) so the sender stops redelivering; only
// malformed payloads and transient store errors are non-2xx.
type DepositWebhookHandler struct {
	depositSvc    *service.DepositService
	webhookSecret string
}

func NewDepositWebhookHandler(depositSvc *service.DepositService, webhookSecret string) *DepositWebhookHandler {
	return &DepositWebhookHandler{depositSvc: depositSvc, webhookSecret: webhookSecret}
}

func (h *DepositWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if h.webhookSecret != "" {
		sig := c.GetHeader("X-Tably-Signature")
		if !verifySignature(h.webhookSecret, body, sig) {
			logrus.WithField("signature", sig).Warn("deposit webhook: bad signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	var n service.DepositNotification
	if err := json.Unmarshal(body, &n); err != nil {
		logrus.WithError(err).Warn("deposit webhook: malformed payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	rec, err := h.depositSvc.Ingest(n)
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Transient store fault: a non-2xx makes the sender redeliver, which
		// the signature dedup absorbs.
		logrus.WithError(err).Error("deposit webhook: ingest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingest failed"})
		return
	}
	resp := gin.H{"received": true}
	if rec != nil {
		resp["stake_id"] = rec.ID
	}
	c.JSON(http.StatusOK, resp)
}

func verifySignature(secret string, body []byte, header string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal(bytes.ToLower([]byte(header)), []byte(expected))
}
