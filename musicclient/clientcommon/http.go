package clientcommon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/artist-analytics/apperrors"
)

const DefaultTimeout = 10 * time.Second

const maxErrorBody = 512

func NewHttpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

// CheckStatus maps a non 2xx answer to the error taxonomy, 401 and 403 are credential problems
func CheckStatus(source string, response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	cause := fmt.Errorf("%s %s", response.Status, string(body))

	switch response.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Auth(source, cause)
	default:
		return apperrors.Upstream(source, response.StatusCode, cause)
	}
}

// GetJson runs the request and decodes a 2xx json body into v
func GetJson(ctx context.Context, client *http.Client, source string, request *http.Request, v interface{}) error {
	response, err := client.Do(request.WithContext(ctx))

	if err != nil {
		return apperrors.Upstream(source, 0, err)
	}
	defer response.Body.Close()

	if err := CheckStatus(source, response); err != nil {
		return err
	}

	if err := json.NewDecoder(response.Body).Decode(v); err != nil {
		return apperrors.Upstream(source, response.StatusCode, fmt.Errorf("undecodable response: %w", err))
	}

	return nil
}
