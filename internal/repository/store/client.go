package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/billing/period"
	"github.com/dairyops/coop/internal/config"
	"github.com/dairyops/coop/internal/domain/models"
)

// Client exposes the collection-store operations used by the application.
// The backend is an opaque REST JSON store; this client carries no business
// rules of its own.
type Client interface {
	BasePeriods(ctx context.Context) ([]period.BasePeriod, error)
	LockedPeriodIDs(ctx context.Context) ([]string, error)
	Collections(ctx context.Context, q Query) ([]models.CollectionEntry, error)
	CreateCollection(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error)
	UpdateCollection(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error)
	Farmers(ctx context.Context) ([]models.Farmer, error)
	Branches(ctx context.Context) ([]models.Branch, error)
}

// Query narrows a collection listing. Zero fields are omitted from the
// request.
type Query struct {
	From     string
	To       string
	BranchID string
	Shift    string
	PeriodID string
	FarmerID string
}

// RESTClient is a resty-backed implementation of Client.
type RESTClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a collection-store client from configuration.
func NewClient(cfg config.StoreConfig, logger *zap.Logger) *RESTClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &RESTClient{httpClient: restyClient, logger: logger}
}

// apiError represents the store's error payload.
type apiError struct {
	Error string `json:"error"`
}

// lockedPeriod mirrors one row of the locked-periods collection.
type lockedPeriod struct {
	PeriodID string `json:"periodId"`
}

// BasePeriods fetches the operator-configured billing cycle definitions.
func (c *RESTClient) BasePeriods(ctx context.Context) ([]period.BasePeriod, error) {
	var result []period.BasePeriod
	if err := c.get(ctx, "/bill-periods", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch bill periods: %w", err)
	}
	return result, nil
}

// LockedPeriodIDs fetches the ids of periods referenced by locked bills.
// These must stay renderable even when outside the rolling window.
func (c *RESTClient) LockedPeriodIDs(ctx context.Context) ([]string, error) {
	var rows []lockedPeriod
	if err := c.get(ctx, "/locked-periods", nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch locked periods: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.PeriodID != "" {
			ids = append(ids, row.PeriodID)
		}
	}
	return ids, nil
}

// Collections lists collection entries matching the query.
func (c *RESTClient) Collections(ctx context.Context, q Query) ([]models.CollectionEntry, error) {
	params := map[string]string{}
	if q.From != "" {
		params["date_gte"] = q.From
	}
	if q.To != "" {
		params["date_lte"] = q.To
	}
	if q.BranchID != "" {
		params["branchId"] = q.BranchID
	}
	if q.Shift != "" {
		params["shift"] = q.Shift
	}
	if q.PeriodID != "" {
		params["billPeriodId"] = q.PeriodID
	}
	if q.FarmerID != "" {
		params["farmerId"] = q.FarmerID
	}

	var result []models.CollectionEntry
	if err := c.get(ctx, "/collections", params, &result); err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}
	c.logger.Debug("collections fetched", zap.Int("count", len(result)))
	return result, nil
}

// CreateCollection persists a new entry and returns the stored document.
func (c *RESTClient) CreateCollection(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error) {
	result := new(models.CollectionEntry)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(entry).
		SetResult(result).
		SetError(apiErr).
		Post("/collections")
	if err != nil {
		return models.CollectionEntry{}, fmt.Errorf("create collection: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return models.CollectionEntry{}, fmt.Errorf("create collection: %w", err)
	}
	return *result, nil
}

// UpdateCollection rewrites an existing entry and returns the stored
// document.
func (c *RESTClient) UpdateCollection(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error) {
	if entry.ID == "" {
		return models.CollectionEntry{}, fmt.Errorf("update collection: missing id")
	}

	result := new(models.CollectionEntry)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(entry).
		SetResult(result).
		SetError(apiErr).
		Put(fmt.Sprintf("/collections/%s", entry.ID))
	if err != nil {
		return models.CollectionEntry{}, fmt.Errorf("update collection: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return models.CollectionEntry{}, fmt.Errorf("update collection: %w", err)
	}
	return *result, nil
}

// Farmers lists the farmer master records.
func (c *RESTClient) Farmers(ctx context.Context) ([]models.Farmer, error) {
	var result []models.Farmer
	if err := c.get(ctx, "/farmers", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch farmers: %w", err)
	}
	return result, nil
}

// Branches lists the branch master records.
func (c *RESTClient) Branches(ctx context.Context) ([]models.Branch, error) {
	var result []models.Branch
	if err := c.get(ctx, "/branches", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch branches: %w", err)
	}
	return result, nil
}

func (c *RESTClient) get(ctx context.Context, path string, params map[string]string, result any) error {
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return err
	}
	return checkStatus(resp, apiErr)
}

func checkStatus(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	message := ""
	if apiErr != nil {
		message = apiErr.Error
	}
	return fmt.Errorf("store api error: status=%d, message=%s", resp.StatusCode(), message)
}
