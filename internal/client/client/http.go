package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// HTTPClient implements Client against the dblook HTTP API.
type HTTPClient struct {
	baseURL string
	public  *http.Client
	authed  *http.Client
	oauth   *oauth2.Config
}

var _ Client = (*HTTPClient)(nil)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) { o.timeout = d }
}

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(o *httpOptions) { o.transport = rt }
}

// NewHTTPClient builds a client for the server at baseURL. tokens supplies
// the bearer token for authenticated calls.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	base := strings.TrimRight(u.String(), "/")

	o := httpOptions{timeout: DefaultTimeout, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	rt := requestIDTransport{base: o.transport}
	return &HTTPClient{
		baseURL: base,
		public:  &http.Client{Timeout: o.timeout, Transport: rt},
		authed: &http.Client{
			Timeout:   o.timeout,
			Transport: &oauth2.Transport{Source: storeTokenSource{src: tokens}, Base: rt},
		},
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  base + "/auth/login",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.public.CloseIdleConnections()
	c.authed.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*models.User, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var u models.User
	if err := c.do(ctx, c.public, http.MethodPost, "/auth/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for an access token using the OAuth2 password grant.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.public)

	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			// the backend rejects bad credentials with 400
			if re.Response.StatusCode == http.StatusBadRequest {
				return "", fmt.Errorf("%w: %s", ErrUnauthorized, detail(re.Body))
			}
			return "", mapStatus(re.Response.StatusCode, re.Body)
		}
		return "", mapTransportError(err)
	}
	return tok.AccessToken, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, c.authed, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, c.authed, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) ListSessions(ctx context.Context) ([]models.SessionMeta, error) {
	var out []models.SessionMeta
	if err := c.do(ctx, c.authed, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.SessionMeta{}
	}
	return out, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context, name, dbURL string) (string, error) {
	req := struct {
		Name  string `json:"name"`
		DBURL string `json:"db_url"`
	}{name, dbURL}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, c.authed, http.MethodPost, "/sessions", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("create session: server returned no id")
	}
	return resp.ID, nil
}

func (c *HTTPClient) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ConnectSession(ctx context.Context, id string) (*models.DatabaseInfo, error) {
	var resp struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		DatabaseInfo *struct {
			Database string `json:"database"`
			Version  string `json:"version"`
			User     string `json:"user"`
		} `json:"database_info"`
	}
	if err := c.do(ctx, c.authed, http.MethodPost, "/sessions/"+url.PathEscape(id)+"/connect", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Detail: resp.Message}
	}

	info := &models.DatabaseInfo{Connected: true}
	if resp.DatabaseInfo != nil {
		info.Database = resp.DatabaseInfo.Database
		info.Version = resp.DatabaseInfo.Version
		info.User = resp.DatabaseInfo.User
	}
	return info, nil
}

func (c *HTTPClient) DisconnectSession(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodPost, "/sessions/"+url.PathEscape(id)+"/disconnect", nil, nil)
}

// ListTables returns the tables of the connected database that hold vector
// columns, with the collections detected in each.
func (c *HTTPClient) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	var resp struct {
		Tables []models.TableInfo `json:"tables"`
	}
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/tables", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tables == nil {
		resp.Tables = []models.TableInfo{}
	}
	return resp.Tables, nil
}

// ListCollections returns the distinct (idColumn, nameColumn) pairs of a
// table, ordered by id.
func (c *HTTPClient) ListCollections(ctx context.Context, table models.TableRef, idColumn, nameColumn string) ([]models.Collection, error) {
	q := url.Values{}
	q.Set("id_column", idColumn)
	q.Set("name_column", nameColumn)
	path := "/api/tables/" + url.PathEscape(table.Schema) + "/" + url.PathEscape(table.Name) +
		"/collection-names?" + q.Encode()

	var resp struct {
		Names map[string]string `json:"names"`
	}
	if err := c.do(ctx, c.authed, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Collection, 0, len(resp.Names))
	for id, name := range resp.Names {
		out = append(out, models.Collection{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, c.public, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return ErrUnavailable
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out (if not nil).
func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return mapTransportError(err)
	}
	if err := mapStatus(resp.StatusCode, data); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
