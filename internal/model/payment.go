package model

import "time"

// Currency is a supported payment currency.
type Currency struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	PriceUSD    string `json:"priceUSD,omitempty"` // decimal; empty when the quote source failed
	IsSupported bool   `json:"isSupported"`
	Network     string `json:"network,omitempty"`
}

// CalculatePriceRequest is the DTO for POST /api/payment/calculate
type CalculatePriceRequest struct {
	TokenID  uint64 `json:"tokenId" validate:"required,gte=1"`
	Currency string `json:"currency" validate:"required,notblank,max=10"`
}

// PriceQuote is a token price expressed in another currency.
// Amounts are decimal strings to avoid float rounding in transit.
type PriceQuote struct {
	ID         string    `json:"id"`
	TokenID    uint64    `json:"tokenId"`
	Currency   string    `json:"currency"`
	Amount     string    `json:"amount"`
	AmountUSD  string    `json:"amountUSD"`
	PriceInETH string    `json:"priceInETH"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// PaymentStatus is the lifecycle state of a payment intent.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// PaymentIntent is a buyer's pending purchase of one catalog item.
// Only a pending intent can change status.
type PaymentIntent struct {
	ID              string        `json:"paymentId"`
	TokenID         uint64        `json:"tokenId"`
	Buyer           string        `json:"buyer"`
	Currency        string        `json:"currency"`
	Amount          string        `json:"amount"`
	AmountUSD       string        `json:"amountUSD"`
	PaymentMethod   string        `json:"paymentMethod"`
	Status          PaymentStatus `json:"status"`
	TransactionHash string        `json:"transactionHash,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	ExpiresAt       time.Time     `json:"expiresAt"`
	ConfirmedAt     *time.Time    `json:"confirmedAt,omitempty"`
}

// CreatePaymentRequest is the DTO for POST /api/payment/create
type CreatePaymentRequest struct {
	TokenID  uint64 `json:"tokenId" validate:"required,gte=1"`
	Buyer    string `json:"buyer" validate:"required,ethaddr"`
	Currency string `json:"currency" validate:"required,notblank,max=10"`
}

// PaymentWebhookRequest is the DTO for POST /api/payment/webhook.
// TransactionHash is required when Status is confirmed.
type PaymentWebhookRequest struct {
	PaymentID       string        `json:"paymentId" validate:"required,uuid"`
	Status          PaymentStatus `json:"status" validate:"required,oneof=confirmed failed expired"`
	TransactionHash string        `json:"transactionHash" validate:"omitempty,txhash"`
}
