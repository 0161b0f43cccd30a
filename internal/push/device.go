package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"whogowin-client/internal/storage"
)

// localDevice es la implementación por defecto de Device para esta versión
// de terminal: el permiso se asume concedido y el token de push es un
// identificador de instalación estable, generado una vez y persistido.
type localDevice struct {
	store    storage.KeyValue
	physical bool
	token    string
}

// NewLocalDevice arma el dispositivo local. Con token fijo (config) lo usa
// tal cual; si no, genera y persiste un installation id.
func NewLocalDevice(store storage.KeyValue, physical bool, token string) Device {
	return &localDevice{store: store, physical: physical, token: token}
}

func (d *localDevice) IsPhysical() bool { return d.physical }

func (d *localDevice) Permission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (d *localDevice) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (d *localDevice) PushToken(_ context.Context, projectID string) (string, error) {
	if d.token != "" {
		return d.token, nil
	}
	id, err := d.store.Get(storage.KeyInstallationID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
		if err := d.store.Set(storage.KeyInstallationID, id); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s[%s]", projectID, id), nil
}
