// Package api implements the AnalysisAPI port over the analysis service's HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AnalysisAPI = (*Client)(nil)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// Client implements the driven.AnalysisAPI port.
type Client struct {
	http    *http.Client
	cache   httpcache.Cache // nil when responses are not cached.
	baseURL string
	tokens  driven.TokenStore
	logger  *slog.Logger
}

// NewClient creates a Client with the following transport stack:
//  1. httpcache (ETag/Cache-Control conditional request caching, in memory)
//  2. net/http default transport
//
// timeout bounds each call end to end.
func NewClient(baseURL string, tokens driven.TokenStore, timeout time.Duration) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{Transport: cacheTransport, Timeout: timeout}

	c, err := NewClientWithHTTPClient(httpClient, baseURL, tokens)
	if err != nil {
		return nil, err
	}
	c.cache = cacheTransport.Cache
	return c, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, tokens driven.TokenStore) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(u.String(), "/"),
		tokens:  tokens,
		logger:  slog.Default(),
	}, nil
}

// Signup registers a new account. The response shape is defined by the server.
func (c *Client) Signup(ctx context.Context, name, email, password string) (any, error) {
	body, err := json.Marshal(signupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshaling signup request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/signup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, false)
}

// Login authenticates with a form-encoded body. When the response carries an
// access_token the credential is persisted before Login returns.
func (c *Client) Login(ctx context.Context, username, password string) (any, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := c.do(req, false)
	if err != nil {
		return nil, err
	}

	if token := model.AccessToken(data); token != "" {
		if err := c.tokens.Set(ctx, &model.Credential{Token: token, Subject: username}); err != nil {
			return nil, fmt.Errorf("persisting credential: %w", err)
		}
		c.purgeCache()
		c.logger.Info("logged in", "subject", username)
	}

	return data, nil
}

// Logout removes the persisted credential and drops cached responses.
func (c *Client) Logout(ctx context.Context) error {
	c.purgeCache()
	if err := c.tokens.Set(ctx, nil); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// AnalyzeText submits a symptom description. Latitude and longitude keys are
// omitted entirely when coords is nil.
func (c *Client) AnalyzeText(ctx context.Context, symptoms string, coords *model.Coordinates) (any, error) {
	payload := analyzeTextRequest{Symptoms: symptoms}
	if coords != nil {
		payload.Latitude = &coords.Latitude
		payload.Longitude = &coords.Longitude
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling analyze request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/analyze/text", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, true)
}

// AnalyzeImage submits an image as multipart form data. Coordinates are sent
// as their decimal string form.
func (c *Client) AnalyzeImage(ctx context.Context, image model.ImageFile, symptoms string, coords *model.Coordinates) (any, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := writeImagePart(mw, image); err != nil {
		return nil, fmt.Errorf("encoding image part: %w", err)
	}
	if symptoms != "" {
		if err := mw.WriteField("symptoms", symptoms); err != nil {
			return nil, fmt.Errorf("encoding symptoms field: %w", err)
		}
	}
	if coords != nil {
		if err := mw.WriteField("latitude", formatFloat(coords.Latitude)); err != nil {
			return nil, fmt.Errorf("encoding latitude field: %w", err)
		}
		if err := mw.WriteField("longitude", formatFloat(coords.Longitude)); err != nil {
			return nil, fmt.Errorf("encoding longitude field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/analyze/image", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, true)
}

// GetHistory fetches past analyses for the current credential.
func (c *Client) GetHistory(ctx context.Context) (any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/history", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, true)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &model.RequestError{Message: fmt.Sprintf("building %s %s request: %v", method, path, err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do attaches the credential when authorized is set, performs the call and
// shapes every non-success outcome into a *model.RequestError.
func (c *Client) do(req *http.Request, authorized bool) (any, error) {
	requestID := req.Header.Get("X-Request-ID")
	if authorized {
		c.attachCredential(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("analysis api unreachable",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", requestID,
			"error", err,
		)
		return nil, &model.RequestError{
			Message:   "network error: " + err.Error(),
			RequestID: requestID,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &model.RequestError{
			Message:   "network error: reading response: " + err.Error(),
			RequestID: requestID,
			Err:       err,
		}
	}

	c.logger.Debug("analysis api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Millisecond),
		"request_id", requestID,
	)

	return handleResponse(resp.StatusCode, resp.Header.Get("Content-Type"), raw, requestID)
}

// attachCredential adds the bearer token when one is stored. A store failure
// is logged and the call proceeds without it.
func (c *Client) attachCredential(req *http.Request) {
	cred, err := c.tokens.Get(req.Context())
	if err != nil {
		c.logger.Warn("reading stored credential", "error", err)
		return
	}
	if cred != nil && cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
}

func (c *Client) purgeCache() {
	if c.cache == nil {
		return
	}
	c.cache.Delete(c.baseURL + "/history")
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type analyzeTextRequest struct {
	Symptoms  string   `json:"symptoms"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeImagePart(mw *multipart.Writer, image model.ImageFile) error {
	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(image.Data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(image.Data)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
