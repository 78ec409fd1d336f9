// Package manager talks to a remote push manager over HTTP.
package manager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/psanford/wappush/dispatch"
)

type Request struct {
	ApplicationID string            `json:"application_id"`
	ContentType   string            `json:"content_type"`
	Envelope      dispatch.Envelope `json:"envelope"`
}

type Response struct {
	Flags dispatch.ResultFlags `json:"flags"`
}

// Client implements dispatch.Manager by POSTing a Request as JSON to URL.
type Client struct {
	URL  string
	http *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		URL:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ProcessMessage(applicationID, contentType string, env dispatch.Envelope) (dispatch.ResultFlags, error) {
	body, err := json.Marshal(Request{
		ApplicationID: applicationID,
		ContentType:   contentType,
		Envelope:      env,
	})
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Post(c.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("push manager request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("push manager status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode push manager response: %w", err)
	}
	return r.Flags, nil
}
