package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jhoicas/usuarios-api/internal/application/ports"
	"github.com/jhoicas/usuarios-api/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa IdentityProvider.
var _ ports.IdentityProvider = (*Client)(nil)

const (
	codeUserNotFound = "USER_NOT_FOUND"
	codeEmailExists  = "EMAIL_EXISTS"

	defaultTimeout = 10 * time.Second
	adminScope     = "https://www.googleapis.com/auth/identitytoolkit"
)

// Config conexión con la API de administración del proveedor de identidad.
// Se pasa explícitamente al construir el cliente; nada se lee del entorno.
type Config struct {
	BaseURL      string // p. ej. https://identitytoolkit.googleapis.com
	ProjectID    string
	APIKey       string // usado si ClientID está vacío
	ClientID     string // OAuth2 client-credentials
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
	HTTPClient   *http.Client // opcional; base para las llamadas y para obtener tokens
}

// Client adaptador REST del proveedor de identidad (API estilo Identity Toolkit v1).
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient construye el adaptador. Con ClientID configurado las peticiones llevan un
// Bearer token obtenido por client-credentials; si no, la API key va como parámetro ?key=.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}
	httpClient := base
	apiKey := cfg.APIKey
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{adminScope},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
		apiKey = ""
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/v1/projects/" + url.PathEscape(cfg.ProjectID),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// ── Estructuras del protocolo ─────────────────────────────────────────────────

type signUpRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	EmailVerified bool   `json:"emailVerified"`
	Disabled      bool   `json:"disabled"`
}

type signUpResponse struct {
	LocalID string `json:"localId"`
}

type updateRequest struct {
	LocalID          string `json:"localId"`
	CustomAttributes string `json:"customAttributes"`
}

type deleteRequest struct {
	LocalID string `json:"localId"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// apiError error devuelto por el proveedor; Code es el mensaje simbólico (USER_NOT_FOUND, ...).
type apiError struct {
	Status int
	Code   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("proveedor de identidad HTTP %d: %s", e.Status, e.Code)
}

func hasCode(err error, code string) bool {
	var apiErr *apiError
	// El proveedor puede añadir detalle: "USER_NOT_FOUND : ..."
	return errors.As(err, &apiErr) && strings.HasPrefix(apiErr.Code, code)
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// CreateIdentity crea la cuenta (email sin verificar, habilitada) y devuelve su UID.
func (c *Client) CreateIdentity(ctx context.Context, email, credential string) (string, error) {
	var out signUpResponse
	err := c.call(ctx, "/accounts", signUpRequest{Email: email, Password: credential}, &out)
	if err != nil {
		// EMAIL_EXISTS sin registro local: identidad huérfana que requiere revisión manual.
		if hasCode(err, codeEmailExists) {
			return "", fmt.Errorf("%w: el email ya tiene identidad en el proveedor: %w", domain.ErrIdentityProvider, err)
		}
		return "", fmt.Errorf("%w: crear identidad: %w", domain.ErrIdentityProvider, err)
	}
	if out.LocalID == "" {
		return "", fmt.Errorf("%w: respuesta sin localId", domain.ErrIdentityProvider)
	}
	return out.LocalID, nil
}

// SetRoleClaim reemplaza los custom claims por {"role": role}.
func (c *Client) SetRoleClaim(ctx context.Context, identityRef, role string) error {
	attrs, err := json.Marshal(map[string]string{"role": role})
	if err != nil {
		return fmt.Errorf("%w: serializar claims: %w", domain.ErrClaimAssignment, err)
	}
	err = c.call(ctx, "/accounts:update", updateRequest{LocalID: identityRef, CustomAttributes: string(attrs)}, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrClaimAssignment, identityRef, err)
	}
	return nil
}

// DeleteIdentity elimina la cuenta; USER_NOT_FOUND se trata como éxito.
func (c *Client) DeleteIdentity(ctx context.Context, identityRef string) error {
	err := c.call(ctx, "/accounts:delete", deleteRequest{LocalID: identityRef}, nil)
	if err != nil {
		if hasCode(err, codeUserNotFound) {
			return nil
		}
		return fmt.Errorf("%w: eliminar %s: %w", domain.ErrIdentityProvider, identityRef, err)
	}
	return nil
}

// call hace POST JSON a path con timeout propio y decodifica la respuesta en out (si no es nil).
func (c *Client) call(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("serializar request: %w", err)
	}
	endpoint := c.baseURL + path
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear HTTP request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Error != nil {
			return &apiError{Status: resp.StatusCode, Code: env.Error.Message}
		}
		return &apiError{Status: resp.StatusCode, Code: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("deserializar respuesta: %w", err)
	}
	return nil
}
