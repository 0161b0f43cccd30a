package service

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
)

// WalletService maneja saldo, recargas y retiros.
type WalletService struct {
	logger *zap.Logger
	client *api.Client
}

func NewWalletService(logger *zap.Logger, client *api.Client) *WalletService {
	return &WalletService{logger: logger, client: client}
}

// Balance devuelve solo el saldo.
func (s *WalletService) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := s.client.Get(ctx, "/wallet/balance", &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Details devuelve saldo e historial de movimientos.
func (s *WalletService) Details(ctx context.Context) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.client.Get(ctx, "/wallet/details", &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// TopUp inicia una recarga; el pago se completa en la URL del proveedor externo.
func (s *WalletService) TopUp(ctx context.Context, amount float64) (*domain.TopUp, error) {
	body := map[string]float64{"amount": amount}
	var topup domain.TopUp
	if err := s.client.Post(ctx, "/wallet/topup", body, &topup); err != nil {
		return nil, err
	}
	s.logger.Info("topup initiated", zap.Float64("amount", amount), zap.String("reference", topup.Reference))
	return &topup, nil
}

// VerifyPayment confirma una recarga contra la referencia del proveedor.
func (s *WalletService) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	var v domain.PaymentVerification
	path := "/wallet/verify-payment?reference=" + url.QueryEscape(reference)
	if err := s.client.Get(ctx, path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// WithdrawInput lleva el monto y los datos bancarios del retiro.
type WithdrawInput struct {
	Amount        float64 `json:"amount"`
	AccountName   string  `json:"account_name"`
	BankName      string  `json:"bank_name"`
	AccountNumber string  `json:"account_number"`
}

// Withdraw solicita un retiro hacia la cuenta bancaria indicada.
func (s *WalletService) Withdraw(ctx context.Context, in WithdrawInput) error {
	if err := s.client.Post(ctx, "/wallet/withdraw", in, nil); err != nil {
		return err
	}
	s.logger.Info("withdrawal requested", zap.Float64("amount", in.Amount), zap.String("bank", in.BankName))
	return nil
}
