package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-api/internal/domain"
	"ledger-api/internal/service"
)

// writeError maps domain failures onto status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		verr *domain.ValidationError
		dup  *domain.DuplicateError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrValidationFailed.Error(), "fields": verr.Fields})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": dup.Error(), "field": dup.Field})
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrUserHasAccounts):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransactionKind),
		errors.Is(err, domain.ErrInvalidAccountKind),
		errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStatementsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).Error("internal error")
		msg := "internal server error"
		if errors.Is(err, domain.ErrPersistenceFailed) {
			msg = domain.ErrPersistenceFailed.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
