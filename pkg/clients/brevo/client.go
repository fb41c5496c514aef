package brevo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/itaybar/barops/internal/config"
)

// Client exposes the Brevo contact operations used by the application.
type Client interface {
	UpsertContact(ctx context.Context, email string, paying bool) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	listID     int64
}

// NewClient builds a Brevo API client using the provided configuration values.
func NewClient(cfg config.BrevoConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		listID:     cfg.ListID,
	}
}

// contactResponse mirrors the successful response from Brevo.
type contactResponse struct {
	ID int64 `json:"id"`
}

// apiError represents a Brevo API error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UpsertContact creates or updates the contact and sets its
// PAYING_CUSTOMER attribute. updateEnabled avoids "already exists"
// errors when the contact is known.
func (c *APIClient) UpsertContact(ctx context.Context, email string, paying bool) error {
	if email == "" {
		return fmt.Errorf("email is required to sync contact to brevo")
	}

	payload := map[string]any{
		"email": email,
		"attributes": map[string]any{
			"PAYING_CUSTOMER": paying,
		},
		"listIds":       []int64{c.listID},
		"updateEnabled": true,
	}

	result := new(contactResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/v3/contacts")
	if err != nil {
		return fmt.Errorf("upsert brevo contact: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("brevo api error: status=%d, code=%s, message=%s",
			resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	return nil
}
