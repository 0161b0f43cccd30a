package service

import (
	"context"
	"fmt"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
)

// DrawService consulta sorteos activos y completados. Son solo lecturas:
// el cliente HTTP ya loguea cada request, así que acá no hay logger.
type DrawService struct {
	client *api.Client
}

func NewDrawService(client *api.Client) *DrawService {
	return &DrawService{client: client}
}

// Active lista los sorteos en curso.
func (s *DrawService) Active(ctx context.Context) ([]domain.Draw, error) {
	var draws []domain.Draw
	if err := s.client.Get(ctx, "/draws/active", &draws); err != nil {
		return nil, err
	}
	return draws, nil
}

// Completed lista resultados con ganadores de primer lugar y consolación.
func (s *DrawService) Completed(ctx context.Context) ([]domain.DrawResult, error) {
	var results []domain.DrawResult
	if err := s.client.Get(ctx, "/draws/completed", &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ByID trae el detalle de un sorteo.
func (s *DrawService) ByID(ctx context.Context, drawID string) (*domain.Draw, error) {
	var draw domain.Draw
	if err := s.client.Get(ctx, fmt.Sprintf("/draws/%s", drawID), &draw); err != nil {
		return nil, err
	}
	return &draw, nil
}
