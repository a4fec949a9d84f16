// Package translate calls the external text-translation providers.
// Translation is best effort: when every provider fails the original
// text is returned unchanged.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	httpClient  *http.Client
	googleURL   string
	myMemoryURL string
}

func NewClient(googleURL, myMemoryURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		googleURL:   googleURL,
		myMemoryURL: myMemoryURL,
	}
}

// Translate converts text from source to target language. The primary
// provider is tried first, then the fallback; if both fail the original
// text comes back and ok is false.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, bool) {
	if translated, err := c.translateGoogle(ctx, text, source, target); err == nil {
		return translated, true
	} else {
		slog.Warn("primary translation provider failed", "error", err)
	}

	if translated, err := c.translateMyMemory(ctx, text, source, target); err == nil {
		return translated, true
	} else {
		slog.Warn("fallback translation provider failed", "error", err)
	}

	return text, false
}

// translateGoogle uses the free gtx endpoint. The response is a nested
// array; the translated string sits at data[0][0][0].
func (c *Client) translateGoogle(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.googleURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate returned status %d", resp.StatusCode)
	}

	var data []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding google translate response: %w", err)
	}

	segments, ok := firstElement(data)
	if !ok {
		return "", errors.New("google translate: empty response")
	}
	first, ok := firstElement(segments)
	if !ok {
		return "", errors.New("google translate: no segments")
	}
	parts, ok := first.([]interface{})
	if !ok || len(parts) == 0 {
		return "", errors.New("google translate: malformed segment")
	}
	translated, ok := parts[0].(string)
	if !ok || translated == "" {
		return "", errors.New("google translate: missing translation")
	}
	return translated, nil
}

func firstElement(v interface{}) (interface{}, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	return arr[0], true
}

type myMemoryResponse struct {
	ResponseStatus int `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (c *Client) translateMyMemory(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.myMemoryURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding mymemory response: %w", err)
	}

	if data.ResponseStatus != http.StatusOK || data.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("mymemory returned status %d", data.ResponseStatus)
	}
	return data.ResponseData.TranslatedText, nil
}
