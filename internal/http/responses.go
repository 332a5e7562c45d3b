package http

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger-api/internal/domain"
	"ledger-api/internal/service"
	"ledger-api/internal/storage"
)

const dateLayout = "2006-01-02"

type ProfileResponse struct {
	UserID   int64   `json:"user_id"`
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address"`
}

type UserResponse struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	RegistrationDate string          `json:"registration_date"`
	Profile          ProfileResponse `json:"profile"`
	AccountIDs       []int64         `json:"account_ids"`
}

type TransactionResponse struct {
	ID        int64                  `json:"id"`
	AccountID int64                  `json:"account_id"`
	Kind      domain.TransactionKind `json:"kind"`
	Amount    decimal.Decimal        `json:"amount"`
	CreatedAt string                 `json:"created_at"`
}

type AccountResponse struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"user_id"`
	Kind         domain.AccountKind    `json:"kind"`
	Balance      decimal.Decimal       `json:"balance"`
	CreatedAt    string                `json:"created_at"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

type StatementResponse struct {
	Key       string `json:"key"`
	Location  string `json:"location"`
	URL       string `json:"url,omitempty"`
	Entries   int    `json:"entries"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(user domain.User) UserResponse {
	ids := user.AccountIDs
	if ids == nil {
		ids = []int64{}
	}
	return UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		RegistrationDate: user.RegisteredAt.Format(dateLayout),
		Profile: ProfileResponse{
			UserID:   user.Profile.UserID,
			FullName: user.Profile.FullName,
			Phone:    user.Profile.Phone,
			Address:  user.Profile.Address,
		},
		AccountIDs: ids,
	}
}

func transactionToResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		Kind:      t.Kind,
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func accountToResponse(a domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Kind:      a.Kind,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	for i := range a.Transactions {
		resp.Transactions = append(resp.Transactions, transactionToResponse(a.Transactions[i]))
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func statementToResponse(st service.Statement) StatementResponse {
	return StatementResponse{
		Key:       st.Key,
		Location:  st.Location,
		URL:       st.URL,
		Entries:   st.Entries,
		CreatedAt: st.CreatedAt.Format(time.RFC3339),
	}
}
