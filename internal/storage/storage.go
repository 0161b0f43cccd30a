package storage

import (
	"errors"
	"sync"
)

// Claves fijas del almacenamiento local, heredadas del contrato de la app.
const (
	KeyAuthToken      = "authToken"
	KeyHasOnboarded   = "hasOnboarded"
	KeyInstallationID = "installationId"
)

// ErrNotFound indica que la clave no tiene valor guardado.
var ErrNotFound = errors.New("storage: key not found")

// KeyValue abstrae el almacenamiento local del dispositivo:
// pares clave/valor de texto plano, leídos al arranque y
// escritos/borrados en las transiciones de sesión.
type KeyValue interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStore devuelve un KeyValue en memoria, pensado para tests.
func NewMemoryStore() KeyValue {
	return &memoryStore{items: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
