// Package dnd5e is the HTTP gateway to the D&D 5e reference API. It
// exposes exactly the read operations the catalog assembler needs and
// converts every non-2xx response into a typed API error.
package dnd5e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/grimoire/pkg/errors"
	"github.com/agentstation/grimoire/pkg/spells"
)

// DefaultBaseURL is the public reference API root.
const DefaultBaseURL = "https://www.dnd5eapi.co/api/2014"

const requestTimeout = 30 * time.Second

// Client talks to the reference API. The zero value is not usable; use
// New.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, primarily for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a reference API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resultList is the API's envelope for index listings.
type resultList struct {
	Count   int          `json:"count"`
	Results []spells.Ref `json:"results"`
}

// ListClasses returns every character class the API knows about,
// spellcasting or not.
func (c *Client) ListClasses(ctx context.Context) ([]spells.Ref, error) {
	var list resultList
	if err := c.getJSON(ctx, "/classes", &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// ClassSpellCount probes how many spells a class can learn. Zero means
// the class is not a spellcaster.
func (c *Client) ClassSpellCount(ctx context.Context, classIndex string) (int, error) {
	var list resultList
	if err := c.getJSON(ctx, "/classes/"+classIndex+"/spells", &list); err != nil {
		return 0, err
	}
	return list.Count, nil
}

// ListClassSpells returns the spell index entries for one class.
func (c *Client) ListClassSpells(ctx context.Context, classIndex string) ([]spells.Ref, error) {
	var list resultList
	if err := c.getJSON(ctx, "/classes/"+classIndex+"/spells", &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// GetSpell fetches one full spell record.
func (c *Client) GetSpell(ctx context.Context, spellIndex string) (spells.Spell, error) {
	var s spells.Spell
	if err := c.getJSON(ctx, "/spells/"+spellIndex, &s); err != nil {
		return spells.Spell{}, err
	}
	return s, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapAPI(path, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapAPI(path, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		apiErr := errors.NewAPIError(path, resp.StatusCode,
			fmt.Sprintf("unexpected status %s", resp.Status))
		apiErr.Status = resp.Status
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}
