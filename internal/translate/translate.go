// Package translate wraps the MyMemory translation API, used to turn Thai
// task titles into English before branch name slugging.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mymemory.translated.net"

// LangPairThaiEnglish is the pair the task tracker cares about.
const LangPairThaiEnglish = "th|en"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type response struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.Number `json:"responseStatus"`
}

// Translate returns the translation of text for the given langpair
// (e.g. "th|en"). Callers treat any error as "use the original text".
func (c *Client) Translate(ctx context.Context, text, langpair string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty text")
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", langpair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	// MyMemory reports errors inside a 200 body
	if status := body.ResponseStatus.String(); status != "200" {
		return "", fmt.Errorf("translation service status %s", status)
	}

	translated := strings.TrimSpace(body.ResponseData.TranslatedText)
	if translated == "" {
		return "", errors.New("empty translation")
	}
	return translated, nil
}
