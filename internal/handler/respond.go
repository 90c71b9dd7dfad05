package handler

import (
	"net/http"

	"tably/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the error taxonomy to HTTP. ReconciliationRequired is
// deliberately not an anonymous 500: the body carries the kind so that
// on-call triage can tell "money moved, ledger didn't" from an ordinary
// server fault. The flag itself is persisted by the service before the error
// reaches this point.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind.String()})
	case domain.KindAuthz:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": kind.String()})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kind.String()})
	case domain.KindExternal:
		// Safe for the caller to retry; nothing irreversible happened.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": kind.String(), "retryable": true})
	case domain.KindConfig:
		logrus.WithError(err).Error("configuration fault")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": kind.String()})
	case domain.KindReconciliation:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     err.Error(),
			"kind":      kind.String(),
			"retryable": false,
		})
	default:
		logrus.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
