package service

import (
	"context"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
)

// ProfileService consulta y actualiza el perfil del usuario.
type ProfileService struct {
	logger *zap.Logger
	client *api.Client
}

func NewProfileService(logger *zap.Logger, client *api.Client) *ProfileService {
	return &ProfileService{logger: logger, client: client}
}

// Me trae la identidad del usuario autenticado.
func (s *ProfileService) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.client.Get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateName cambia el nombre visible y devuelve el usuario actualizado.
func (s *ProfileService) UpdateName(ctx context.Context, name string) (*domain.User, error) {
	body := map[string]string{"name": name}
	var user domain.User
	if err := s.client.Put(ctx, "/users/profile", body, &user); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", zap.String("name", name))
	return &user, nil
}
