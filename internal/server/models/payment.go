package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one checkout attempt. PaymentID is the externally visible key;
// ID is the internal row id.
type Payment struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"userId"`
	Email     string          `json:"email"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Service   string          `json:"service"`
	PaymentID string          `json:"paymentId"`
	Status    string          `json:"status"`
	QRCodeURL *string         `json:"qrCodeUrl"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
