// Package client provides a Go HTTP client for the personapi service.
//
// [Client] has one method per route. Methods that look up a single person
// return a nil *models.Person when the server answers 200 with an empty
// body, which is how the service reports "not found". Any status of 400 or
// above is returned as an [*APIError]; for the service's own failures the
// body is always "An error occurred".
//
// Basic usage:
//
//	c := client.NewClient("http://localhost:3000")
//
//	created, err := c.CreatePerson(ctx)
//	if err != nil {
//		return err
//	}
//	p, err := c.PersonByID(ctx, created.ID.String())
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

// APIError is a response with status 400 or above.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d, body=%s", e.StatusCode, e.Body)
}

// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL, e.g.
// "http://localhost:3000", without a trailing slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// doRequest performs an HTTP request with proper headers
func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON body into target. It reports false when
// the body is empty.
func decodeResponse(resp *http.Response, target any) (bool, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return false, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}

func (c *Client) person(ctx context.Context, method, path string) (*models.Person, error) {
	resp, err := c.doRequest(ctx, method, path)
	if err != nil {
		return nil, err
	}
	var result models.Person
	ok, err := decodeResponse(resp, &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

func (c *Client) people(ctx context.Context, method, path string) ([]models.Person, error) {
	resp, err := c.doRequest(ctx, method, path)
	if err != nil {
		return nil, err
	}
	result := []models.Person{}
	if _, err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Health returns the liveness document served at /healthz.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/healthz")
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if _, err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreatePerson calls GET /create-person.
func (c *Client) CreatePerson(ctx context.Context) (*models.Person, error) {
	return c.person(ctx, http.MethodGet, "/create-person")
}

// CreatePeople calls POST /create-people.
func (c *Client) CreatePeople(ctx context.Context) ([]models.Person, error) {
	return c.people(ctx, http.MethodPost, "/create-people")
}

// PeopleByName calls GET /people-by-name/{name}.
func (c *Client) PeopleByName(ctx context.Context, name string) ([]models.Person, error) {
	return c.people(ctx, http.MethodGet, "/people-by-name/"+url.PathEscape(name))
}

// PersonByFood calls GET /person-by-food/{food}.
func (c *Client) PersonByFood(ctx context.Context, food string) (*models.Person, error) {
	return c.person(ctx, http.MethodGet, "/person-by-food/"+url.PathEscape(food))
}

// PersonByID calls GET /person-by-id/{personId}.
func (c *Client) PersonByID(ctx context.Context, id string) (*models.Person, error) {
	return c.person(ctx, http.MethodGet, "/person-by-id/"+url.PathEscape(id))
}

// EditThenSave calls PUT /edit-then-save/{personId}. The server fails the
// request when the person does not exist.
func (c *Client) EditThenSave(ctx context.Context, id string) (*models.Person, error) {
	return c.person(ctx, http.MethodPut, "/edit-then-save/"+url.PathEscape(id))
}

// UpdatePerson calls PATCH /update-person/{personName}.
func (c *Client) UpdatePerson(ctx context.Context, name string) (*models.Person, error) {
	return c.person(ctx, http.MethodPatch, "/update-person/"+url.PathEscape(name))
}

// RemovePerson calls DELETE /remove-person/{personId} and returns the
// removed person.
func (c *Client) RemovePerson(ctx context.Context, id string) (*models.Person, error) {
	return c.person(ctx, http.MethodDelete, "/remove-person/"+url.PathEscape(id))
}

// RemovePeople calls DELETE /remove-people.
func (c *Client) RemovePeople(ctx context.Context) (store.DeleteResult, error) {
	var result store.DeleteResult
	resp, err := c.doRequest(ctx, http.MethodDelete, "/remove-people")
	if err != nil {
		return result, err
	}
	_, err = decodeResponse(resp, &result)
	return result, err
}

// QueryChain calls GET /query-chain.
func (c *Client) QueryChain(ctx context.Context) ([]models.Person, error) {
	return c.people(ctx, http.MethodGet, "/query-chain")
}
