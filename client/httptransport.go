package client

import (
	"context"
	"io"
	"net/http"

	"github.com/foomo/flatfileserver/responses"
	keelhttp "github.com/foomo/keel/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	httpTransport struct {
		client   *http.Client
		endpoint string
	}
	HTTPTransportOption func(*httpTransport)
	// envelope of every api reply
	envelope[T any] struct {
		Reply T `json:"reply"`
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func HTTPTransportWithClient(v *http.Client) HTTPTransportOption {
	return func(o *httpTransport) {
		o.client = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTPTransport will create a new http transport for the given server.
// Caution: the provided server url is not validated!
func NewHTTPTransport(server string, opts ...HTTPTransportOption) transport {
	inst := &httpTransport{
		endpoint: server,
	}
	for _, opt := range opts {
		opt(inst)
	}
	if inst.client == nil {
		inst.client = keelhttp.NewHTTPClient()
	}
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (ht *httpTransport) shutdown() {
	ht.client.CloseIdleConnections()
}

func (ht *httpTransport) call(ctx context.Context, method, route string, response any) error {
	req, err := http.NewRequestWithContext(ctx, method, ht.endpoint+route, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ht.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	reply := envelope[jsoniter.RawMessage]{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return errors.Wrapf(err, "failed to decode reply with status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		replyErr := &responses.Error{}
		if err := json.Unmarshal(reply.Reply, replyErr); err == nil && replyErr.Code != 0 {
			return replyErr
		}
		// the update route replies with its report on failure too
		if err := json.Unmarshal(reply.Reply, response); err != nil {
			return errors.Wrapf(err, "failed to decode reply with status %d", resp.StatusCode)
		}
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	return errors.Wrap(json.Unmarshal(reply.Reply, response), "failed to decode reply")
}
