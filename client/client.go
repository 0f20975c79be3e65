package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/foomo/flatfileserver/content"
	"github.com/foomo/flatfileserver/pkg/handler"
	"github.com/foomo/flatfileserver/pkg/utils"
	"github.com/foomo/flatfileserver/responses"
	"github.com/pkg/errors"
)

// Client a flat file server client
type Client struct {
	t transport
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTPClient constructs a new client for the server's base url, e.g. http://127.0.0.1:8080/kirby
func NewHTTPClient(server string, opts ...HTTPTransportOption) (*Client, error) {
	if !utils.IsValidURL(server) {
		return nil, errors.Errorf("invalid server url %q", server)
	}
	return New(NewHTTPTransport(strings.TrimSuffix(server, "/"), opts...)), nil
}

func New(t transport) *Client {
	return &Client{t: t}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Page by path or uuid, an empty language matches every language
func (c *Client) Page(ctx context.Context, search, language string) (*content.ModelView, error) {
	route := apiRoute("pages", search)
	if language != "" {
		route += "?lang=" + url.QueryEscape(language)
	}
	response := &content.ModelView{}
	if err := c.t.call(ctx, http.MethodGet, route, response); err != nil {
		return nil, err
	}
	return response, nil
}

// File by path or uuid
func (c *Client) File(ctx context.Context, search string) (*content.ModelView, error) {
	response := &content.ModelView{}
	if err := c.t.call(ctx, http.MethodGet, apiRoute("files", search), response); err != nil {
		return nil, err
	}
	return response, nil
}

// Find a model of any kind by path or uuid
func (c *Client) Find(ctx context.Context, search string) (*content.ModelView, error) {
	response := &content.ModelView{}
	if err := c.t.call(ctx, http.MethodGet, apiRoute("find", search), response); err != nil {
		return nil, err
	}
	return response, nil
}

// Children every model below the one found for search
func (c *Client) Children(ctx context.Context, search string) ([]content.ModelView, error) {
	var response []content.ModelView
	if err := c.t.call(ctx, http.MethodGet, apiRoute("children", search), &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Update tell the server to reload everything
func (c *Client) Update(ctx context.Context) (*responses.Update, error) {
	response := &responses.Update{}
	if err := c.t.call(ctx, http.MethodPost, "/api/update", response); err != nil {
		return response, err
	}
	return response, nil
}

func (c *Client) ShutDown() {
	c.t.shutdown()
}

// IsNotFound is err a not found reply
func IsNotFound(err error) bool {
	var replyErr *responses.Error
	return errors.As(err, &replyErr) && replyErr.Code == handler.ErrorCodeNotFound
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func apiRoute(name, search string) string {
	segments := strings.Split(strings.Trim(search, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return "/api/" + name + "/" + strings.Join(segments, "/")
}
