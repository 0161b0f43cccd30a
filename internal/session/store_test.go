package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"whogowin-client/internal/push"
	"whogowin-client/internal/storage"
)

const adaJSON = `{"id":"1","name":"Ada","email":"a@b.com","referral_code":"LOTTERY123"}`

func newTestStore(t *testing.T, handler http.Handler) (*Store, storage.KeyValue, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	kv := storage.NewMemoryStore()
	store := NewStore(Config{BaseURL: server.URL, Storage: kv})
	return store, kv, server
}

func loginBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.com" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok123","user":` + adaJSON + `}`))
	})
	mux.HandleFunc("/wallet/balance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":100}`))
	})
	return mux
}

func TestLogin_EstablishesSession(t *testing.T) {
	store, kv, _ := newTestStore(t, loginBackend(t))

	if err := store.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if store.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", store.State())
	}
	user := store.Current()
	if user == nil || user.ID != "1" || user.Name != "Ada" || user.ReferralCode != "LOTTERY123" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if store.Token() != "tok123" {
		t.Fatalf("token = %q, want tok123", store.Token())
	}
	persisted, err := kv.Get(storage.KeyAuthToken)
	if err != nil || persisted != "tok123" {
		t.Fatalf("persisted = %q, %v", persisted, err)
	}
}

func TestLogin_SubsequentRequestsCarryBearer(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok123","user":` + adaJSON + `}`))
	})
	mux.HandleFunc("/wallet/balance", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"balance":100}`))
	})
	store, _, _ := newTestStore(t, mux)

	if err := store.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Client().Get(context.Background(), "/wallet/balance", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q, want Bearer tok123", gotAuth)
	}
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	store, kv, _ := newTestStore(t, loginBackend(t))
	store.transition(StateUnauthenticated, nil, "")

	err := store.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("error = %q, want Invalid credentials", err.Error())
	}
	if store.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", store.State())
	}
	if store.Token() != "" {
		t.Fatalf("token = %q, want empty", store.Token())
	}
	if _, err := kv.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatal("no token must be persisted on failed login")
	}
}

func TestLogin_TransportFailureUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	kv := storage.NewMemoryStore()
	store := NewStore(Config{BaseURL: server.URL, Storage: kv})

	err := store.Login(context.Background(), "a@b.com", "secret")
	if err == nil || err.Error() != "Login failed" {
		t.Fatalf("error = %v, want Login failed", err)
	}
}

func TestRegister_UsesVersionedEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"access_token":"tok456","user":` + adaJSON + `}`))
	})
	store, kv, _ := newTestStore(t, mux)

	if err := store.Register(context.Background(), "Ada", "a@b.com", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if gotPath != "/auth/register" {
		t.Fatalf("path = %q, want /auth/register", gotPath)
	}
	if gotBody["name"] != "Ada" || gotBody["email"] != "a@b.com" || gotBody["password"] != "secret" {
		t.Fatalf("body = %+v", gotBody)
	}
	if store.State() != StateAuthenticated || store.Token() != "tok456" {
		t.Fatalf("state=%v token=%q", store.State(), store.Token())
	}
	if persisted, _ := kv.Get(storage.KeyAuthToken); persisted != "tok456" {
		t.Fatalf("persisted = %q", persisted)
	}
}

func TestRegister_FailureFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{}`))
	})
	store, _, _ := newTestStore(t, mux)

	err := store.Register(context.Background(), "Ada", "a@b.com", "secret")
	if err == nil || err.Error() != "Registration failed" {
		t.Fatalf("error = %v, want Registration failed", err)
	}
}

func TestRestore_NoPersistedToken(t *testing.T) {
	hits := 0
	store, _, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	if store.State() != StateUnknown {
		t.Fatalf("initial state = %v, want unknown", store.State())
	}
	store.Restore(context.Background())
	if store.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", store.State())
	}
	if hits != 0 {
		t.Fatalf("no network call expected, got %d", hits)
	}
}

func TestRestore_ValidToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(adaJSON))
	})
	store, kv, _ := newTestStore(t, mux)
	kv.Set(storage.KeyAuthToken, "tok123")

	store.Restore(context.Background())

	if store.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", store.State())
	}
	if u := store.Current(); u == nil || u.Name != "Ada" {
		t.Fatalf("user = %+v", u)
	}
	if persisted, _ := kv.Get(storage.KeyAuthToken); persisted != "tok123" {
		t.Fatalf("persisted = %q", persisted)
	}
}

func TestRestore_RejectedTokenFailsOpen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token expired"}`))
	})
	store, kv, _ := newTestStore(t, mux)
	kv.Set(storage.KeyAuthToken, "stale-token")

	store.Restore(context.Background())

	if store.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", store.State())
	}
	if store.Token() != "" {
		t.Fatalf("token = %q, want empty", store.Token())
	}
	if _, err := kv.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatal("stale persisted token must be deleted")
	}
}

func TestRestore_ExpiredJWTSkipsNetwork(t *testing.T) {
	hits := 0
	store, kv, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	kv.Set(storage.KeyAuthToken, expired)

	store.Restore(context.Background())

	if store.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", store.State())
	}
	if hits != 0 {
		t.Fatalf("expired token must not hit the network, got %d hits", hits)
	}
	if _, err := kv.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatal("expired persisted token must be deleted")
	}
}

func TestLogout_ClearsCredentialAndPersistedToken(t *testing.T) {
	var lastAuth *string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok123","user":` + adaJSON + `}`))
	})
	mux.HandleFunc("/wallet/balance", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		lastAuth = &auth
		w.Write([]byte(`{"balance":100}`))
	})
	store, kv, _ := newTestStore(t, mux)

	if err := store.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Logout()

	if store.State() != StateUnauthenticated || store.Current() != nil {
		t.Fatalf("state=%v user=%+v", store.State(), store.Current())
	}
	if store.Token() != "" {
		t.Fatalf("token = %q, want empty", store.Token())
	}
	if _, err := kv.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatal("persisted token must be deleted on logout")
	}

	// Un request posterior al logout no debe llevar el token viejo.
	if err := store.Client().Get(context.Background(), "/wallet/balance", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if lastAuth == nil || *lastAuth != "" {
		t.Fatalf("Authorization tras logout = %v, want vacío", lastAuth)
	}
}

func TestLogout_SurvivesStorageError(t *testing.T) {
	kv := storage.NewMemoryStore()
	store := NewStore(Config{BaseURL: "http://127.0.0.1:0", Storage: failingDeleteStore{kv}})
	store.Logout() // no debe entrar en pánico ni devolver nada
	if store.State() != StateUnauthenticated {
		t.Fatalf("state = %v", store.State())
	}
}

type failingDeleteStore struct{ storage.KeyValue }

func (failingDeleteStore) Delete(string) error { return errors.New("disk broken") }

func TestForgotPassword_AlwaysGenericOutcome(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"No such account"}`))
	})
	store, _, _ := newTestStore(t, mux)

	got := store.ForgotPassword(context.Background(), "nobody@b.com")
	if got != forgotPasswordOutcome {
		t.Fatalf("outcome = %q, want %q", got, forgotPasswordOutcome)
	}
}

type fakeRegistrar struct{ calls chan struct{} }

func (f *fakeRegistrar) RegisterWithRetry(context.Context) push.Result {
	f.calls <- struct{}{}
	return push.Result{Registered: true}
}

func TestLogin_TriggersPushRegistration(t *testing.T) {
	store, _, _ := newTestStore(t, loginBackend(t))
	reg := &fakeRegistrar{calls: make(chan struct{}, 1)}
	store.SetPushRegistrar(reg)

	if err := store.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	select {
	case <-reg.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("push registration was not triggered after login")
	}
}

func TestLogin_FailureDoesNotTriggerPush(t *testing.T) {
	store, _, _ := newTestStore(t, loginBackend(t))
	reg := &fakeRegistrar{calls: make(chan struct{}, 1)}
	store.SetPushRegistrar(reg)

	if err := store.Login(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	select {
	case <-reg.calls:
		t.Fatal("push registration must not fire on failed login")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOnChange_NotifiesTransitions(t *testing.T) {
	store, _, _ := newTestStore(t, loginBackend(t))

	var states []State
	store.OnChange(func(s State) { states = append(states, s) })

	if err := store.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Logout()

	if len(states) != 2 || states[0] != StateAuthenticated || states[1] != StateUnauthenticated {
		t.Fatalf("states = %v", states)
	}
}

func TestTokenExpiry_OpaqueTokenFailsOpen(t *testing.T) {
	if _, ok := tokenExpiry("tok123"); ok {
		t.Fatal("opaque token must not report expiry")
	}

	future, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	exp, ok := tokenExpiry(future)
	if !ok || !exp.After(time.Now()) {
		t.Fatalf("exp=%v ok=%v", exp, ok)
	}
}
