package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/iplaycheck/go-punch-clock/models"
)

// HTTPGatewayConfig configures the REST implementation of RemoteGateway.
type HTTPGatewayConfig struct {
	BaseURL      string
	MediaBaseURL string
	Token        string
	MediaAPIKey  string
	Timeout      time.Duration
}

type httpRemoteGateway struct {
	client      *resty.Client
	mediaClient *resty.Client
	mediaAPIKey string

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteGateway builds a RemoteGateway talking to the document
// collection API at cfg.BaseURL and the media host at cfg.MediaBaseURL.
func NewHTTPRemoteGateway(cfg HTTPGatewayConfig) RemoteGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	var mediaCli *resty.Client
	if cfg.MediaBaseURL != "" {
		mediaCli = resty.New().
			SetBaseURL(strings.TrimRight(cfg.MediaBaseURL, "/")).
			SetTimeout(cfg.Timeout)
	}

	g := &httpRemoteGateway{client: cli, mediaClient: mediaCli, mediaAPIKey: cfg.MediaAPIKey}
	g.SetToken(cfg.Token)
	return g
}

func (h *httpRemoteGateway) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteGateway) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteGateway) UserID() string {
	token := h.Token()
	if token == "" {
		return ""
	}
	sub, err := parseSubjectFromJWT(token)
	if err != nil {
		return ""
	}
	return sub
}

type createRecordResponse struct {
	ID string `json:"id"`
}

func (h *httpRemoteGateway) CreateRecord(ctx context.Context, record models.PunchRecord) (string, error) {
	body := models.RemoteRecord{
		ClientID:  record.ID,
		UserID:    record.UserID,
		Type:      record.Type,
		Timestamp: record.Timestamp,
		Photo:     record.Photo,
		Location:  record.Location,
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/api/records/")
	if err != nil {
		return "", wrapTransportError("create record request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var created createRecordResponse
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return "", fmt.Errorf("decode create record response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: server returned no record id", ErrRejected)
	}

	return created.ID, nil
}

func (h *httpRemoteGateway) QueryRecords(ctx context.Context, filter models.QueryFilter) ([]models.RemoteRecord, error) {
	req := h.authedRequest(ctx)
	if filter.UserID != "" {
		req.SetQueryParam("userId", filter.UserID)
	}
	if filter.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(filter.Limit))
	}

	resp, err := req.Get("/api/records/")
	if err != nil {
		return nil, wrapTransportError("query records request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var records []models.RemoteRecord
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode query records response: %w", err)
	}

	return records, nil
}

func (h *httpRemoteGateway) UpdateRecord(ctx context.Context, id string, patch map[string]any) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		Patch("/api/records/" + id)
	if err != nil {
		return wrapTransportError("update record request", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteGateway) DeleteRecord(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).Delete("/api/records/" + id)
	if err != nil {
		return wrapTransportError("delete record request", err)
	}

	return mapHTTPError(resp)
}

type mediaUploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

func (h *httpRemoteGateway) UploadMedia(ctx context.Context, dataURI string, nameHint string) (string, error) {
	if h.mediaClient == nil {
		return "", fmt.Errorf("%w: media host not configured", ErrMediaUpload)
	}

	payload, err := stripDataURIPrefix(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMediaUpload, err)
	}

	resp, err := h.mediaClient.R().
		SetContext(ctx).
		SetQueryParam("key", h.mediaAPIKey).
		SetFormData(map[string]string{
			"image": payload,
			"name":  nameHint,
		}).
		Post("/1/upload")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMediaUpload, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: http %d", ErrMediaUpload, resp.StatusCode())
	}

	var uploaded mediaUploadResponse
	if err = json.Unmarshal(resp.Body(), &uploaded); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrMediaUpload, err)
	}
	if uploaded.Data.URL == "" {
		return "", fmt.Errorf("%w: server returned no url", ErrMediaUpload)
	}

	return uploaded.Data.URL, nil
}

func (h *httpRemoteGateway) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
		body := strings.TrimSpace(string(resp.Body()))
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("%w: http %d: %s", ErrRejected, resp.StatusCode(), body)
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}

func wrapTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetworkUnavailable, err)
}

// stripDataURIPrefix returns the base64 payload of a data URI. The media host
// expects the raw base64 without the "data:image/...;base64," prefix.
func stripDataURIPrefix(dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return "", errors.New("not a data uri")
	}
	_, payload, found := strings.Cut(dataURI, ",")
	if !found || payload == "" {
		return "", errors.New("data uri has no payload")
	}
	return payload, nil
}

func parseSubjectFromJWT(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	return claims.GetSubject()
}
