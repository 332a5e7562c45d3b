package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/domain"
	"ledger-api/internal/repository"
	"ledger-api/internal/storage"
)

const statementLinkTTL = 15 * time.Minute

// ErrStatementsDisabled is returned when no bucket is configured.
var ErrStatementsDisabled = errors.New("statement storage is not configured")

// Statement describes one exported CSV document.
type Statement struct {
	Key       string
	Location  string
	URL       string
	Entries   int
	CreatedAt time.Time
}

// StatementService exports account transactions to object storage.
type StatementService interface {
	Export(ctx context.Context, accountID int64) (*Statement, error)
	List(ctx context.Context, accountID int64) ([]storage.ObjectInfo, error)
	Purge(ctx context.Context, accountID int64) error
}

type statementService struct {
	uow       repository.UnitOfWork
	storage   storage.Service
	bucket    string
	keyPrefix string
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewStatementService returns a service that answers ErrStatementsDisabled
// when store is nil or bucket is empty.
func NewStatementService(uow repository.UnitOfWork, store storage.Service, bucket, keyPrefix string, log logrus.FieldLogger) StatementService {
	return &statementService{
		uow:       uow,
		storage:   store,
		bucket:    strings.TrimSpace(bucket),
		keyPrefix: strings.Trim(keyPrefix, "/"),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

func (s *statementService) enabled() bool {
	return s.storage != nil && s.bucket != ""
}

func (s *statementService) prefix(accountID int64) string {
	return path.Join(s.keyPrefix, fmt.Sprintf("account-%d", accountID)) + "/"
}

func (s *statementService) Export(ctx context.Context, accountID int64) (*Statement, error) {
	if !s.enabled() {
		return nil, ErrStatementsDisabled
	}

	stores := s.uow.Stores()
	account, err := stores.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, persistence("load account", err)
	}
	txs, err := stores.Transactions.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, persistence("list transactions", err)
	}

	body, err := renderStatement(*account, txs)
	if err != nil {
		return nil, err
	}

	key := s.prefix(accountID) + uuid.NewString() + ".csv"
	location, err := s.storage.PutObject(ctx, s.bucket, key, bytes.NewReader(body), "text/csv")
	if err != nil {
		return nil, fmt.Errorf("upload statement: %w", err)
	}

	url, err := s.storage.GetObjectURL(ctx, s.bucket, key, statementLinkTTL)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("statement link unavailable")
	}

	s.log.WithFields(logrus.Fields{
		"account_id": accountID,
		"key":        key,
		"entries":    len(txs),
	}).Info("statement exported")

	return &Statement{
		Key:       key,
		Location:  location,
		URL:       url,
		Entries:   len(txs),
		CreatedAt: s.now(),
	}, nil
}

func (s *statementService) List(ctx context.Context, accountID int64) ([]storage.ObjectInfo, error) {
	if !s.enabled() {
		return nil, ErrStatementsDisabled
	}
	if _, err := s.uow.Stores().Accounts.FindByID(ctx, accountID); err != nil {
		return nil, persistence("load account", err)
	}

	objects, err := s.storage.ListObjects(ctx, s.bucket, s.prefix(accountID))
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	return objects, nil
}

// Purge removes every statement exported for the account. The account
// itself may already be gone.
func (s *statementService) Purge(ctx context.Context, accountID int64) error {
	if !s.enabled() {
		return ErrStatementsDisabled
	}
	if err := s.storage.DeletePrefix(ctx, s.bucket, s.prefix(accountID)); err != nil {
		return fmt.Errorf("purge statements: %w", err)
	}
	return nil
}

func renderStatement(account domain.Account, txs []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"account_id", "kind", "balance"},
		{strconv.FormatInt(account.ID, 10), string(account.Kind), account.Balance.StringFixed(2)},
		{},
		{"transaction_id", "created_at", "kind", "amount"},
	}
	for _, t := range txs {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.CreatedAt.UTC().Format(time.RFC3339),
			string(t.Kind),
			t.Amount.StringFixed(2),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}
