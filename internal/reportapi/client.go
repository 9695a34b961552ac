package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lucaprinsss/Participium-sub003/common/id"
	"github.com/lucaprinsss/Participium-sub003/common/logger"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/submission"
)

const (
	reportsPath  = "/api/reports"
	maxErrorBody = 512
)

// Client files reports through the Participium backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	newKey  func() string
}

func New(baseURL, serviceToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   serviceToken,
		http:    httpClient,
		newKey:  id.NewString,
	}
}

type createReportResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateReport implements submission.ReportCreator. Non-2xx responses become
// *submission.Error classified by status code.
func (c *Client) CreateReport(ctx context.Context, req model.CreateReportRequest) (int64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshaling report: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reportsPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	key := req.IdempotencyKey
	if key == "" {
		key = c.newKey()
	}
	httpReq.Header.Set("Idempotency-Key", key)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("calling report api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("reading report api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, classify(resp.StatusCode, raw)
	}

	var out createReportResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("decoding report api response: %w", err)
	}
	return out.ID, nil
}

func classify(status int, raw []byte) *submission.Error {
	msg := errorMessage(raw)

	var kind submission.Kind
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = submission.KindValidation
	case http.StatusUnauthorized:
		kind = submission.KindUnauthorized
	case http.StatusForbidden:
		kind = submission.KindInsufficientRights
	case http.StatusNotFound:
		kind = submission.KindNotFound
	default:
		kind = submission.KindUnspecified
		msg = fmt.Sprintf("status %d: %s", status, msg)
	}
	return &submission.Error{Kind: kind, Message: msg}
}

func errorMessage(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil {
		if er.Message != "" {
			return er.Message
		}
		if er.Error != "" {
			return er.Error
		}
	}
	return logger.Truncate(strings.TrimSpace(string(raw)), maxErrorBody)
}
