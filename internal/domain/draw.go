package domain

import "time"

// Draw es un sorteo activo con su pozo acumulado.
type Draw struct {
	ID       string    `json:"_id"`
	DrawType string    `json:"draw_type"`
	EndTime  time.Time `json:"end_time"`
	TotalPot float64   `json:"total_pot"`
	Status   string    `json:"status"`
}

// Winner es un ganador (primer lugar o consolación) de un sorteo completado.
type Winner struct {
	Name        string  `json:"name"`
	PrizeAmount float64 `json:"prize_amount"`
}

// DrawResult es un sorteo completado con sus ganadores.
type DrawResult struct {
	ID                 string    `json:"_id"`
	DrawType           string    `json:"draw_type"`
	EndTime            time.Time `json:"end_time"`
	TotalPot           float64   `json:"total_pot"`
	FirstPlaceWinner   *Winner   `json:"first_place_winner,omitempty"`
	ConsolationWinners []Winner  `json:"consolation_winners"`
	Status             string    `json:"status"`
}
