package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/usuarios-api/internal/application/ports"
	"github.com/jhoicas/usuarios-api/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa ImageStore.
var _ ports.ImageStore = (*Client)(nil)

const (
	objectPrefix   = "profiles/"
	defaultTimeout = 15 * time.Second
)

// Config conexión con el almacén de objetos (API JSON estilo GCS).
type Config struct {
	Endpoint   string // p. ej. https://storage.googleapis.com
	PublicURL  string // base de las URLs devueltas
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Processor  *ImageProcessor // opcional; sin él el payload se sube tal cual
}

// Client adaptador REST del almacén de imágenes de perfil.
type Client struct {
	endpoint   string
	publicURL  string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	processor  *ImageProcessor
}

// NewClient construye el adaptador con la configuración explícita.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		publicURL:  strings.TrimRight(publicURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: httpClient,
		processor:  cfg.Processor,
	}
}

// UploadImage normaliza el payload, lo sube como profiles/<uuid>.jpg y devuelve su URL pública.
func (c *Client) UploadImage(ctx context.Context, bucket string, payload []byte) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("%w: %w: bucket vacío", domain.ErrImageUpload, domain.ErrInvalidInput)
	}
	if c.processor != nil {
		normalized, err := c.processor.Normalize(payload)
		if err != nil {
			return "", err
		}
		payload = normalized
	}

	object := objectPrefix + uuid.NewString() + ".jpg"
	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", object)
	c.withKey(q)
	endpoint := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.endpoint, url.PathEscape(bucket), q.Encode())

	status, body, err := c.do(ctx, http.MethodPost, endpoint, "image/jpeg", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrImageUpload, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("%w: HTTP %d: %s", domain.ErrImageUpload, status, body)
	}
	return c.publicURL + "/" + bucket + "/" + object, nil
}

// DeleteImage borra el objeto referenciado por imageURL. Un objeto inexistente (404) no es error.
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	bucket, object, err := c.parseURL(imageURL)
	if err != nil {
		return err
	}
	q := url.Values{}
	c.withKey(q)
	endpoint := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(bucket), url.PathEscape(object))
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	status, body, err := c.do(ctx, http.MethodDelete, endpoint, "", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrImageDelete, err)
	}
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrImageDelete, status, body)
	}
}

// parseURL descompone {publicURL}/{bucket}/{object}; solo acepta URLs emitidas por este almacén.
func (c *Client) parseURL(imageURL string) (string, string, error) {
	rest, ok := strings.CutPrefix(imageURL, c.publicURL+"/")
	if !ok {
		return "", "", fmt.Errorf("%w: URL ajena al almacén: %s", domain.ErrImageDelete, imageURL)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || !strings.HasPrefix(object, objectPrefix) {
		return "", "", fmt.Errorf("%w: URL ajena al almacén: %s", domain.ErrImageDelete, imageURL)
	}
	return bucket, object, nil
}

func (c *Client) withKey(q url.Values) {
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
}

// do ejecuta la petición con timeout propio y devuelve status y cuerpo (truncado).
func (c *Client) do(ctx context.Context, method, endpoint, contentType string, payload []byte) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, "", fmt.Errorf("crear HTTP request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, "", fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return 0, "", fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	return resp.StatusCode, strings.TrimSpace(string(raw)), nil
}
