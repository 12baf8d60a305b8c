package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
)

// HTTPSubmitter posts drafts to a remote listing backend.
//
// WIRE CONTRACT:
//
//	POST {BaseURL}/api/backend/listings
//	Authorization: Bearer <credential>     (omitted when empty)
//	Content-Type: application/json
//	body: model.EncodeDraft output
//
// Any 2xx is success. Anything else is decoded as the standard error body
// {"error":"...","message":"..."} and returned as an *apperror.AppError so
// the form shows the server's message.
type HTTPSubmitter struct {
	BaseURL string
	Client  *http.Client
}

// backendPath is the create endpoint relative to BaseURL.
const backendPath = "/api/backend/listings"

func (s *HTTPSubmitter) CreateListing(ctx context.Context, draft model.ListingDraft, credential string) error {
	body, err := model.EncodeDraft(draft)
	if err != nil {
		return fmt.Errorf("listing: encoding draft: %w", err)
	}

	url := strings.TrimRight(s.BaseURL, "/") + backendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("listing: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("listing: calling backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return decodeFailure(resp)
}

// decodeFailure maps a non-2xx response onto the apperror categories.
func decodeFailure(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	// Limit the read; an error page is never legitimately large.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	sentinel := fmt.Errorf("backend returned status %d", resp.StatusCode)
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = apperror.ErrValidation
	case http.StatusUnauthorized:
		sentinel = apperror.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = apperror.ErrForbidden
	case http.StatusConflict:
		sentinel = apperror.ErrConflict
	}

	return &apperror.AppError{Err: sentinel, Message: payload.Message}
}
