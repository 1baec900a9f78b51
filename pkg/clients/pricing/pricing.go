package pricing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/dairyops/coop/internal/config"
)

// Client exposes the pricing/recalculation service operations used by the
// application. The service owns rate computation end to end: given a date
// range it rewrites rate, amount and incentive/deduction fields on the
// matching collection records in the store.
type Client interface {
	Recalculate(ctx context.Context, req RecalculateRequest) (*RecalculateResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a pricing service client using the provided configuration
// values.
func NewClient(cfg config.PricingConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// RecalculateRequest asks the service to reprice collections in a date
// range, optionally narrowed to one branch.
type RecalculateRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	BranchID string `json:"branchId,omitempty"`
}

// RecalculateResponse mirrors the successful response from the service.
type RecalculateResponse struct {
	Updated int `json:"updated"`
}

// apiError represents the pricing service error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Recalculate triggers repricing for the given range.
func (c *APIClient) Recalculate(ctx context.Context, req RecalculateRequest) (*RecalculateResponse, error) {
	result := new(RecalculateResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/recalculate")
	if err != nil {
		return nil, fmt.Errorf("trigger recalculation: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return nil, fmt.Errorf("pricing api error: code=%d, message=%s", code, message)
	}

	return result, nil
}
