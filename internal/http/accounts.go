package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledger-api/internal/domain"
)

type createAccountRequest struct {
	UserID  int64           `json:"user_id" binding:"required"`
	Kind    string          `json:"kind" binding:"required"`
	Balance decimal.Decimal `json:"balance"`
}

type transactionRequest struct {
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := domain.ParseAccountKind(req.Kind)
	if err != nil {
		h.writeError(c, err)
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), req.UserID, kind, req.Balance)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountToResponse(*account))
}

func (h *Handler) listAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeAccounts(c, accounts)
}

func (h *Handler) listAccountsByUser(c *gin.Context) {
	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccountsByUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeAccounts(c, accounts)
}

func (h *Handler) writeAccounts(c *gin.Context, accounts []domain.Account) {
	if len(accounts) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]AccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = accountToResponse(accounts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getAccount(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountToResponse(*account))
}

func (h *Handler) deleteAccount(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	deleteRemote, err := strconv.ParseBool(c.DefaultQuery("delete_remote", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag delete_remote"})
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	var warnings []string
	if deleteRemote {
		remoteCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		if err := h.statements.Purge(remoteCtx, id); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete remote statements: %v", err))
		}
	}

	resp := gin.H{"deleted": id}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) applyTransaction(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.accounting.ApplyTransaction(c.Request.Context(), id, domain.ParseTransactionKind(req.Kind), req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(*txn))
}

func (h *Handler) listTransactions(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	txs, err := h.accounting.ListTransactions(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(txs) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]TransactionResponse, len(txs))
	for i := range txs {
		resp[i] = transactionToResponse(txs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportStatement(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	statement, err := h.statements.Export(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, statementToResponse(*statement))
}

func (h *Handler) listStatements(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	objects, err := h.statements.List(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if len(objects) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

