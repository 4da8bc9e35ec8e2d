package handler

import (
	"context"
	"encoding/json"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockBalanceService struct {
	mock.Mock
}

func (m *mockBalanceService) GetBalance(ctx context.Context, caller *identity.Caller, clubID string, force bool) (*financeapp.BalanceResponse, error) {
	args := m.Called(ctx, caller, clubID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.BalanceResponse), args.Error(1)
}

func (m *mockBalanceService) UpdateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string, deltaReceitas, deltaDespesas decimal.Decimal) (*financeapp.CacheUpdateResponse, error) {
	args := m.Called(ctx, caller, clubID, deltaReceitas, deltaDespesas)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CacheUpdateResponse), args.Error(1)
}

func (m *mockBalanceService) InvalidateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string) error {
	return m.Called(ctx, caller, clubID).Error(0)
}

type mockTransactionService struct {
	mock.Mock
}

func (m *mockTransactionService) AddFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.AddTransactionRequest) (*financeapp.AddTransactionResponse, error) {
	args := m.Called(ctx, caller, clubID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.AddTransactionResponse), args.Error(1)
}

func (m *mockTransactionService) UpdateFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string, updates map[string]json.RawMessage) error {
	return m.Called(ctx, caller, clubID, transactionID, updates).Error(0)
}

func (m *mockTransactionService) DeleteFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string) error {
	return m.Called(ctx, caller, clubID, transactionID).Error(0)
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.ListTransactionsRequest) (shared.Paginated[financeapp.TransactionResponse], error) {
	args := m.Called(ctx, caller, clubID, req)
	return args.Get(0).(shared.Paginated[financeapp.TransactionResponse]), args.Error(1)
}

type mockCategoryService struct {
	mock.Mock
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.CreateCategoryRequest) (*financeapp.CategoryResponse, error) {
	args := m.Called(ctx, caller, clubID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CategoryResponse), args.Error(1)
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, caller *identity.Caller, clubID, nome string) error {
	return m.Called(ctx, caller, clubID, nome).Error(0)
}

func (m *mockCategoryService) ListCategories(ctx context.Context, caller *identity.Caller, clubID string) (*financeapp.CategoryListResponse, error) {
	args := m.Called(ctx, caller, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CategoryListResponse), args.Error(1)
}

type mockMensalidadeService struct {
	mock.Mock
}

func (m *mockMensalidadeService) RecordPayment(ctx context.Context, caller *identity.Caller, clubID, playerID, month string, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error) {
	args := m.Called(ctx, caller, clubID, playerID, month, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.PaymentResponse), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}
