package push

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/retry"
)

// Permission es el estado del permiso de notificaciones en el dispositivo.
type Permission int

const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionDenied
)

// Device abstrae la plataforma: hardware real, permisos y token de push.
type Device interface {
	IsPhysical() bool
	Permission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	PushToken(ctx context.Context, projectID string) (string, error)
}

// Result describe el desenlace de un intento de registro. Nunca es una
// excepción: las precondiciones incumplidas vuelven como Reason descriptivo
// para que el flujo de sesión pueda ignorarlas.
type Result struct {
	Registered bool
	Token      string
	Reason     string
}

// Registrar registra el token de push del dispositivo contra el backend,
// a mejor esfuerzo y sin afectar jamás la validez de la sesión.
type Registrar struct {
	client      *api.Client
	device      Device
	credentials api.CredentialProvider
	projectID   string
	policy      retry.Policy
	logger      *zap.Logger
}

// NewRegistrar arma el helper. credentials decide si hay sesión que asociar.
func NewRegistrar(client *api.Client, device Device, credentials api.CredentialProvider, projectID string, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if credentials == nil {
		credentials = func() string { return "" }
	}
	return &Registrar{
		client:      client,
		device:      device,
		credentials: credentials,
		projectID:   projectID,
		policy:      retry.Default(),
		logger:      logger,
	}
}

// WithPolicy reemplaza la política de reintentos (tests).
func (r *Registrar) WithPolicy(p retry.Policy) *Registrar {
	r.policy = p
	return r
}

// Register intenta una sola vez. Verifica precondiciones en orden y corta
// con un Result no fatal ante la primera incumplida.
func (r *Registrar) Register(ctx context.Context) Result {
	if !r.device.IsPhysical() {
		return Result{Reason: "Must use a physical device for push notifications"}
	}

	perm, err := r.device.Permission(ctx)
	if err != nil {
		return Result{Reason: fmt.Sprintf("Failed to register push token: %v", err)}
	}
	if perm != PermissionGranted {
		perm, err = r.device.RequestPermission(ctx)
		if err != nil {
			return Result{Reason: fmt.Sprintf("Failed to register push token: %v", err)}
		}
	}
	if perm != PermissionGranted {
		return Result{Reason: "Permission for push notifications not granted"}
	}

	if r.projectID == "" {
		return Result{Reason: "Project ID not found"}
	}

	token, err := r.device.PushToken(ctx, r.projectID)
	if err != nil {
		return Result{Reason: fmt.Sprintf("Failed to register push token: %v", err)}
	}

	// Un usuario sin sesión no tiene registro de push que asociar.
	if r.credentials() == "" {
		return Result{Reason: "User not authenticated"}
	}

	body := map[string]string{"token": token}
	if err := r.client.Post(ctx, "/notifications/register-token", body, nil); err != nil {
		return Result{Reason: fmt.Sprintf("Failed to register push token: %v", err)}
	}

	r.logger.Info("push token registered", zap.String("token", token))
	return Result{Registered: true, Token: token}
}

// RegisterWithRetry repite Register según la política (3 intentos, 2s fijos
// por defecto), cortando en el primer éxito. Agotar los reintentos solo deja
// un warning: nunca propaga error al flujo que lo invoca.
func (r *Registrar) RegisterWithRetry(ctx context.Context) Result {
	var last Result
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		last = r.Register(ctx)
		if !last.Registered {
			r.logger.Warn("push registration failed", zap.String("reason", last.Reason))
			return errors.New(last.Reason)
		}
		return nil
	})
	if err != nil && last.Reason == "" {
		last.Reason = err.Error()
	}
	return last
}
