package claude

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	writecraft "github.com/writecraft/writecraft-go"
)

// VerifyAPIKey checks a candidate key against the live API with a
// one-token request. It returns false with a nil error when the key is
// rejected, and a non-nil error for transport or other API failures
// where the key's validity is unknown.
func VerifyAPIKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	client := anthropic.NewClient(option.WithAPIKey(key))

	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(DefaultModel),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hi")),
		},
	})
	if err == nil {
		return true, nil
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return false, nil
		}
		return false, &writecraft.APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Retryable:  apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500,
		}
	}
	return false, &writecraft.NetworkError{Op: "verify key", Err: err}
}
