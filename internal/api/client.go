package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes limita cuánto cuerpo de respuesta se lee en memoria.
const maxBodyBytes = 8 << 20

// CredentialProvider devuelve el bearer token vigente, o "" si no hay sesión.
// Se consulta en cada request para que los cambios de sesión apliquen de inmediato.
type CredentialProvider func() string

// Config agrupa los parámetros de construcción del cliente.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialProvider
	Logger      *zap.Logger
}

// Client es el transporte HTTP uniforme hacia el backend de la lotería:
// base URL fija, timeout acotado, JSON, y el token inyectado por request.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialProvider
	logger      *zap.Logger
}

// NewClient construye el cliente apuntando a la API versionada.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	creds := cfg.Credentials
	if creds == nil {
		creds = func() string { return "" }
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: creds,
		logger:      logger,
	}
}

// Get ejecuta GET sobre un path relativo y decodifica la respuesta en out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post ejecuta POST con cuerpo JSON opcional.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put ejecuta PUT con cuerpo JSON opcional.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	// Sin token no se manda header Authorization, ni vacío ni inválido.
	if token := c.credentials(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Info("api request", zap.String("method", method), zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("network or timeout error",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Error("read response body", zap.String("url", url), zap.Error(err))
		return &Error{Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("api response error",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return &Error{Status: resp.StatusCode, Message: detailFromBody(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
