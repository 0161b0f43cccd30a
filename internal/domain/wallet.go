package domain

import "time"

// Transaction es un movimiento de la billetera ("credit" o "debit").
type Transaction struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

// Wallet es el saldo interno del usuario con su historial.
type Wallet struct {
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// TopUp es la respuesta de una recarga: redirección al proveedor de pagos externo.
type TopUp struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// PaymentVerification confirma una recarga contra su referencia.
type PaymentVerification struct {
	Message    string  `json:"message"`
	Amount     float64 `json:"amount"`
	NewBalance float64 `json:"new_balance"`
}
