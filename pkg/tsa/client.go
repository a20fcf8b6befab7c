// Copyright 2025 The C2PA Bridge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tsa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/digitorus/timestamp"

	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/tracing"
)

// DefaultTimeout bounds a single TSA exchange when the caller's HTTP client
// has no timeout of its own.
const DefaultTimeout = 30 * time.Second

// maxReplySize caps the TSA response body.
const maxReplySize = 1 << 20

// Header is one ordered request header.
type Header struct {
	Name  string
	Value string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// HTTPClient defaults to an http.Client with DefaultTimeout.
	HTTPClient *http.Client
	// UserAgent is sent when non-empty.
	UserAgent string
	Logger    logging.Logger
}

// Client posts timestamp requests to a TSA. It does not retry.
type Client struct {
	http      *http.Client
	userAgent string
	logger    logging.Logger
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		http:      hc,
		userAgent: opts.UserAgent,
		logger:    logging.EnsureLogger(opts.Logger),
	}
}

// Response is a parsed TSA reply.
type Response struct {
	// Raw is the DER TimeStampResp as received.
	Raw []byte
	// Token is the parsed timestamp token.
	Token *timestamp.Timestamp
}

// Fetch posts body to url with the given headers, in order, after the RFC 3161
// content type. A non-2xx status or an unparseable reply is an error.
func (c *Client) Fetch(ctx context.Context, url string, headers []Header, body []byte) (*Response, error) {
	if url == "" {
		return nil, errors.New("no time authority URL configured")
	}

	var resp *Response
	err := tracing.Run(ctx, "tsa.fetch", map[string]interface{}{"tsa.url": url, "tsa.request_size": len(body)},
		func(ctx context.Context) error {
			var err error
			resp, err = c.fetch(ctx, url, headers, body)
			return err
		})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, url string, headers []Header, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp request: %w", err)
	}
	req.Header.Set("Content-Type", ContentTypeQuery)
	req.Header.Set("Accept", ContentTypeReply)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for _, h := range headers {
		req.Header.Add(h.Name, h.Value)
	}

	c.logger.Debug("posting %d byte timestamp request to %s", len(body), url)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach time authority: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read time authority response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("time authority returned %s", httpResp.Status)
	}

	token, err := timestamp.ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp response: %w", err)
	}

	c.logger.Debug("received timestamp token from %s, generated at %s", url, token.Time.UTC().Format(time.RFC3339))
	return &Response{Raw: raw, Token: token}, nil
}
