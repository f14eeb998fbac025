package models

import "time"

// PaymentIntentRequest is the JSON body for POST /create-payment-intent.
// Price is in major currency units; the amount charged is price*100.
type PaymentIntentRequest struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// PaymentIntentResponse carries the secret the client confirms the payment with.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentRecord is a row in the Postgres payment_intents table.
type PaymentRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
