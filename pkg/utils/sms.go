package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

// SMSSender delivers text messages through Africa's Talking.
type SMSSender struct {
	Username string
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewSMSSender(username, apiKey string) *SMSSender {
	return &SMSSender{
		Username: username,
		APIKey:   apiKey,
		Endpoint: africasTalkingURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) Configured() bool {
	return s.Username != "" && s.APIKey != ""
}

func (s *SMSSender) Send(ctx context.Context, message string, recipients []string) error {
	if s.Username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if s.APIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	data := url.Values{}
	data.Set("username", s.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}
