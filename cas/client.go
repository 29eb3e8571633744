package cas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
)

const (
	RequestsPath   = "/api/v0/requests"
	CARContentType = "application/vnd.ipld.car"
)

type AnchorRequest struct {
	Root cid.Cid
	CAR  []byte
}

type Response struct {
	StatusCode int
	Body       []byte
}

//go:generate mockgen -source client.go -destination client_mocks.go -package cas

type Submitter interface {
	Submit(ctx context.Context, req AnchorRequest) (Response, error)
}

// StatusError is returned for non 2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad response code: %d: %s", e.Code, e.Body)
}

// Client

type Client struct {
	client *http.Client
	signer *Signer
	url    string
}

var _ Submitter = (*Client)(nil)

func NewClient(c ClientConfig) (*Client, error) {
	signer, err := NewSigner(c)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: newHTTPClient(c.Timeout),
		signer: signer,
		url:    strings.TrimRight(c.URL, "/") + RequestsPath,
	}, nil
}

func (c *Client) RequestsURL() string {
	return c.url
}

func (c *Client) Signer() *Signer {
	return c.signer
}

func (c *Client) Submit(ctx context.Context, ar AnchorRequest) (Response, error) {
	auth, err := c.signer.AuthHeader(c.url, ar.Root)
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(ar.CAR))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", CARContentType)

	return c.do(req)
}

// Status fetches a previously submitted request
func (c *Client) Status(ctx context.Context, root cid.Cid) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/"+root.String(), nil)
	if err != nil {
		return Response{}, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	r := Response{StatusCode: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r, badCodeError(resp.StatusCode, body)
	}
	return r, nil
}

func badCodeError(c int, body []byte) error {
	return &StatusError{Code: c, Body: strings.TrimSpace(string(body))}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        1024,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
