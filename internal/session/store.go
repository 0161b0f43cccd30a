package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
	"whogowin-client/internal/push"
	"whogowin-client/internal/storage"
)

// State es el estado de autenticación del cliente.
type State int

const (
	// StateUnknown rige hasta que Restore termina en el arranque.
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

const (
	loginFallback         = "Login failed"
	registerFallback      = "Registration failed"
	forgotPasswordOutcome = "Check your email for password reset instructions"
)

// PushRegistrar registra el token de push a mejor esfuerzo tras establecer sesión.
type PushRegistrar interface {
	RegisterWithRetry(ctx context.Context) push.Result
}

// Config agrupa las dependencias del Store.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Storage storage.KeyValue
	Logger  *zap.Logger
}

// Store es la única fuente de verdad de "quién está logueado": guarda la
// identidad y el bearer token vigentes, persiste el token y es el único
// escritor de la credencial que el cliente HTTP consulta por request.
type Store struct {
	mu     sync.Mutex
	state  State
	user   *domain.User
	token  string
	subs   []func(State)
	pusher PushRegistrar

	client  *api.Client
	storage storage.KeyValue
	logger  *zap.Logger
}

// NewStore construye el Store y su cliente HTTP. La credencial del cliente es
// el proveedor Token del propio Store, consultado en cada request: cualquier
// mutación de sesión aplica de inmediato, sin headers compartidos mutables.
func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		state:   StateUnknown,
		storage: cfg.Storage,
		logger:  logger,
	}
	s.client = api.NewClient(api.Config{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		Credentials: s.Token,
		Logger:      logger,
	})
	return s
}

// Client expone el cliente HTTP con credencial inyectada, para los servicios.
func (s *Store) Client() *api.Client { return s.client }

// SetPushRegistrar engancha el registro de push disparado tras Restore/Login/Register.
func (s *Store) SetPushRegistrar(p PushRegistrar) { s.pusher = p }

// Token devuelve el bearer token vigente, o "" sin sesión. Es el
// CredentialProvider del cliente HTTP.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// State devuelve el estado actual.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current devuelve una copia del usuario autenticado, o nil.
func (s *Store) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// OnChange suscribe un callback de refresco de UI ante cambios de estado.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

// Restore intenta la restauración silenciosa al arranque: lee el token
// persistido y valida contra /users/me. Cualquier fallo cae abierto a
// "deslogueado" borrando el token; nunca queda un estado a medias.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.storage.Get(storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("read persisted token", zap.Error(err))
		}
		s.transition(StateUnauthenticated, nil, "")
		return
	}

	// Para tokens JWT se puede anticipar la expiración sin red; los tokens
	// opacos saltan este chequeo.
	if exp, ok := tokenExpiry(token); ok && exp.Before(time.Now()) {
		s.logger.Warn("persisted token expired", zap.Time("expired_at", exp))
		s.discardPersistedToken()
		s.transition(StateUnauthenticated, nil, "")
		return
	}

	// Credencial pendiente: /users/me debe salir ya con el token persistido.
	s.setPendingToken(token)

	var user domain.User
	if err := s.client.Get(ctx, "/users/me", &user); err != nil {
		s.logger.Warn("auth check failed", zap.Error(err))
		s.discardPersistedToken()
		s.transition(StateUnauthenticated, nil, "")
		return
	}

	s.transition(StateAuthenticated, &user, token)
	s.registerPush()
}

// Login autentica contra el backend. En fallo el estado y el token persistido
// quedan intactos y el error lleva el detalle del backend o el fallback.
func (s *Store) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := s.client.Post(ctx, "/auth/login", body, &resp); err != nil {
		s.logger.Error("login failed", zap.String("email", email), zap.Error(err))
		return errors.New(api.Reason(err, loginFallback))
	}

	s.establish(resp)
	s.logger.Info("login ok", zap.String("user_id", resp.User.ID))
	return nil
}

// Register crea la cuenta y establece sesión con el mismo contrato que Login.
// Siempre contra /auth/register bajo el prefijo versionado.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}

	var resp authResponse
	if err := s.client.Post(ctx, "/auth/register", body, &resp); err != nil {
		s.logger.Error("registration failed", zap.String("email", email), zap.Error(err))
		return errors.New(api.Reason(err, registerFallback))
	}

	s.establish(resp)
	s.logger.Info("registration ok", zap.String("user_id", resp.User.ID))
	return nil
}

// Logout limpia credencial, sesión y token persistido. No tiene modo de fallo
// visible: un error de almacenamiento solo se loguea. La credencial se limpia
// en el mismo paso que el estado, así ningún request posterior sale con el
// token viejo.
func (s *Store) Logout() {
	s.transition(StateUnauthenticated, nil, "")
	s.discardPersistedToken()
	s.logger.Info("logged out")
}

// ForgotPassword pide el reseteo y devuelve siempre el mismo desenlace
// genérico, exista o no la cuenta. Los fallos van solo a logs.
func (s *Store) ForgotPassword(ctx context.Context, email string) string {
	body := map[string]string{"email": email}
	if err := s.client.Post(ctx, "/auth/forgot-password", body, nil); err != nil {
		s.logger.Warn("forgot password request failed", zap.Error(err))
	}
	return forgotPasswordOutcome
}

func (s *Store) establish(resp authResponse) {
	if err := s.storage.Set(storage.KeyAuthToken, resp.AccessToken); err != nil {
		s.logger.Error("persist token", zap.Error(err))
	}
	user := resp.User
	s.transition(StateAuthenticated, &user, resp.AccessToken)
	s.registerPush()
}

// transition aplica el cambio de estado y credencial bajo el mismo lock y
// notifica a los suscriptores ya liberado.
func (s *Store) transition(state State, user *domain.User, token string) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.token = token
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (s *Store) setPendingToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Store) discardPersistedToken() {
	if err := s.storage.Delete(storage.KeyAuthToken); err != nil {
		s.logger.Error("delete persisted token", zap.Error(err))
	}
}

// registerPush dispara el registro de push sin bloquear ni fallar la sesión.
func (s *Store) registerPush() {
	if s.pusher == nil {
		return
	}
	go func() {
		res := s.pusher.RegisterWithRetry(context.Background())
		if !res.Registered {
			s.logger.Warn("push notification registration failed", zap.String("reason", res.Reason))
		}
	}()
}
