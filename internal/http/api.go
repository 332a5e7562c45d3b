package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/auth"
	"ledger-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	accounts   service.AccountService
	accounting service.AccountingService
	statements service.StatementService
	tokens     *auth.Tokens
	log        logrus.FieldLogger
}

// NewHandler builds the route handler. tokens may be nil, in which case
// login answers 503 and /api/me is not registered.
func NewHandler(
	users service.UserService,
	accounts service.AccountService,
	accounting service.AccountingService,
	statements service.StatementService,
	tokens *auth.Tokens,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		users:      users,
		accounts:   accounts,
		accounting: accounting,
		statements: statements,
		tokens:     tokens,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), requestLogger(h.log), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/users", h.createUser)
		api.GET("/users", h.listUsers)
		api.GET("/users/:id", h.getUser)
		api.PUT("/users/:id", h.updateUser)
		api.PATCH("/users/:id", h.patchUser)
		api.PATCH("/users/:id/profile", h.patchProfile)
		api.DELETE("/users/:id", h.deleteUser)

		api.POST("/accounts", h.createAccount)
		api.GET("/accounts", h.listAccounts)
		api.GET("/accounts/:id", h.getAccount)
		api.GET("/accounts/user/:id", h.listAccountsByUser)
		api.DELETE("/accounts/:id", h.deleteAccount)
		api.POST("/accounts/:id/transactions", h.applyTransaction)
		api.GET("/accounts/:id/transactions", h.listTransactions)
		api.POST("/accounts/:id/statements", h.exportStatement)
		api.GET("/accounts/:id/statements", h.listStatements)

		api.POST("/auth/login", h.login)
		if h.tokens != nil {
			api.GET("/me", bearerAuth(h.tokens), h.me)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// parseID reads a positive path id or answers 400.
func parseID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return 0, false
	}
	return id, true
}
