package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"fitsyncd/internal/providers"
	"fitsyncd/internal/structures"

	json "github.com/goccy/go-json"
)

// Document is one row of a query result.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// RemoteStoreInterface is the boundary to the remote document service: a
// key-addressed get/set/query capability with no transactional guarantees
// across documents. Every operation fails while the device is offline.
type RemoteStoreInterface interface {
	GetDoc(ctx context.Context, collection, id string) ([]byte, error)
	SetDoc(ctx context.Context, collection, id string, payload []byte) error
	QueryDocs(ctx context.Context, collection, field, value string) ([]Document, error)
	Probe(ctx context.Context) error
}

type RemoteStore struct {
	baseURL   string
	probePath string
	client    *http.Client
	logger    providers.Logger
}

func NewRemoteStore(conf *structures.Config, logger providers.Logger) RemoteStoreInterface {
	probePath := conf.Remote.ProbePath
	if probePath == "" {
		probePath = "/healthz"
	}
	return &RemoteStore{
		baseURL:   conf.Remote.BaseURL,
		probePath: probePath,
		// No timeout policy beyond what the call itself returns; a hang is
		// a failure only once the transport gives up.
		client: &http.Client{},
		logger: logger,
	}
}

func (r *RemoteStore) docURL(collection, id string) string {
	return r.baseURL + "/v1/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

func (r *RemoteStore) GetDoc(ctx context.Context, collection, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.docURL(collection, id), nil)
	if err != nil {
		return nil, &ConnectivityError{Op: "get", Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Op: "get", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrDocNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &ConnectivityError{Op: "get", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{Op: "get", Err: err}
	}
	return payload, nil
}

func (r *RemoteStore) SetDoc(ctx context.Context, collection, id string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.docURL(collection, id), bytes.NewReader(payload))
	if err != nil {
		return &ConnectivityError{Op: "set", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &ConnectivityError{Op: "set", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ConnectivityError{Op: "set", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}

func (r *RemoteStore) QueryDocs(ctx context.Context, collection, field, value string) ([]Document, error) {
	q := url.Values{}
	q.Set("field", field)
	q.Set("value", value)
	endpoint := r.baseURL + "/v1/" + url.PathEscape(collection) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ConnectivityError{Op: "query", Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Op: "query", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ConnectivityError{Op: "query", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var docs []Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, &ConnectivityError{Op: "query", Err: err}
	}
	return docs, nil
}

func (r *RemoteStore) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+r.probePath, nil)
	if err != nil {
		return &ConnectivityError{Op: "probe", Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &ConnectivityError{Op: "probe", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ConnectivityError{Op: "probe", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}
