// internal/dataservice/client.go

// Package dataservice is the REST client for the hosted tabular data service.
// Each logical table is one GET endpoint taking the filter query string the
// query builder produces.
package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"insight-agents/internal/common/config"
	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/models"
)

var (
	ErrNotConfigured = errors.New("DATA_SERVICE_NOT_CONFIGURED")
)

type Client struct {
	rc         *resty.Client
	configured bool
	logger     logger.Logger
}

func New(cfg config.SupabaseConfig, log logger.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Authorization", "Bearer "+cfg.AnonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetTimeout(time.Duration(cfg.Timeout) * time.Millisecond).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Only transient server errors are worth one more attempt.
			return err == nil && r.StatusCode() >= 500
		})

	return &Client{
		rc:         rc,
		configured: cfg.URL != "" && cfg.AnonKey != "",
		logger:     log.With(map[string]interface{}{"component": "dataservice"}),
	}
}

// Configured reports whether credentials were supplied. An unconfigured
// client degrades the health status instead of crashing the process.
func (c *Client) Configured() bool {
	return c.configured
}

// Fetch executes one table query and decodes the JSON row array. Non-2xx
// replies come back as a StandardError carrying the raw status and body text.
func (c *Client) Fetch(ctx context.Context, table models.Table, rawQuery string) ([]models.Row, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryString(rawQuery).
		Get("/" + string(table))
	if err != nil {
		return nil, fmt.Errorf("data service request: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		c.logger.Warn("data service returned non-success status", map[string]interface{}{
			"table":  table,
			"status": resp.StatusCode(),
		})
		return nil, commonerrors.NewDataServiceStatusError(resp.StatusCode(), string(resp.Body()))
	}

	var rows []models.Row
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("decode data service response: %w", err)
	}

	c.logger.Debug("table queried", map[string]interface{}{
		"table":    table,
		"query":    rawQuery,
		"rowCount": len(rows),
	})

	return rows, nil
}
