package service

import (
	"context"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
)

// TicketService compra tickets y lista los del usuario.
type TicketService struct {
	logger *zap.Logger
	client *api.Client
}

func NewTicketService(logger *zap.Logger, client *api.Client) *TicketService {
	return &TicketService{logger: logger, client: client}
}

// Buy compra una entrada al sorteo con una de las denominaciones fijas.
func (s *TicketService) Buy(ctx context.Context, drawID string, price float64) (*domain.Ticket, error) {
	body := map[string]any{
		"draw_id":      drawID,
		"ticket_price": price,
	}
	var ticket domain.Ticket
	if err := s.client.Post(ctx, "/tickets/buy", body, &ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket purchased", zap.String("draw_id", drawID), zap.Float64("price", price))
	return &ticket, nil
}

// Mine lista los tickets del usuario autenticado.
func (s *TicketService) Mine(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := s.client.Get(ctx, "/tickets/my-tickets", &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
