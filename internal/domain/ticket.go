package domain

import "time"

// Ticket es una entrada pagada a un sorteo concreto.
type Ticket struct {
	ID           string    `json:"_id"`
	DrawID       string    `json:"draw_id"`
	DrawType     string    `json:"draw_type"`
	TicketPrice  float64   `json:"ticket_price"`
	PurchaseDate time.Time `json:"purchase_date"`
	Status       string    `json:"status"`
	IsWinner     bool      `json:"is_winner"`
}
