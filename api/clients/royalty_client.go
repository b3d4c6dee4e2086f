package clients

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// DefaultDeadlineWindow is how long a signed write stays valid.
const DefaultDeadlineWindow = 5 * time.Minute

// ErrNoSigningKey is returned by Set on a read-only client.
var ErrNoSigningKey = errors.New("client has no signing key")

// APIError is a non-2xx response of the royalty API.
// It unwraps to the matching interfaces sentinel when the response carries a
// registry error code.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("royalty api returned %d (code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("royalty api returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return interfaces.ErrorFromCode(e.Code)
}

// RoyaltyClient implements api.RoyaltyProvider over HTTP.
type RoyaltyClient struct {
	baseURL        string
	privateKey     *ecdsa.PrivateKey
	httpClient     *http.Client
	deadlineWindow time.Duration
}

// NewRoyaltyClient creates a client for the royalty API at baseURL.
//
// Parameters:
//   - baseURL: The base URL of the server (e.g., "http://localhost:8080")
//   - privateKey: The key writes are signed with; nil for a read-only client
//   - timeout: Request timeout duration (optional, default 30 seconds)
func NewRoyaltyClient(baseURL string, privateKey *ecdsa.PrivateKey, timeout ...time.Duration) *RoyaltyClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RoyaltyClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		privateKey:     privateKey,
		deadlineWindow: DefaultDeadlineWindow,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// SetDeadlineWindow changes how long signed writes stay valid.
func (c *RoyaltyClient) SetDeadlineWindow(window time.Duration) {
	c.deadlineWindow = window
}

// Set signs and submits a royalty config for asset against its current
// revision. Registry rejections satisfy errors.Is against
// interfaces.ErrUnauthorized, ErrAlreadyLocked, ErrInvalidFeeRate and
// ErrStaleRevision, the latter when another write landed in between.
func (c *RoyaltyClient) Set(asset interfaces.Address, config interfaces.RoyaltyConfig) error {
	if c.privateKey == nil {
		return ErrNoSigningKey
	}

	current, err := c.Config(asset)
	if err != nil {
		return fmt.Errorf("failed to read config revision: %w", err)
	}
	return c.SetAtRevision(asset, config, current.Revision)
}

// SetAtRevision signs and submits a royalty config that only applies while
// the stored config is at revision.
func (c *RoyaltyClient) SetAtRevision(asset interfaces.Address, config interfaces.RoyaltyConfig, revision uint64) error {
	if c.privateKey == nil {
		return ErrNoSigningKey
	}

	feeRate := config.FeeRate
	reqJSON, err := json.Marshal(api.SetRoyaltyRequest{
		Receiver:  config.Receiver.Hex(),
		FeeRate:   &feeRate,
		Permanent: config.Permanent,
		Deadline:  time.Now().Add(c.deadlineWindow).Unix(),
		Revision:  &revision,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	path := royaltyPath(asset)
	signature, err := api.SignRequest(c.privateKey, path, reqJSON)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(reqJSON))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.SignatureHeader, signature)

	var result api.RoyaltyConfigResponse
	return c.do(req, &result)
}

// Get returns the receiver and royalty amount for a sale. tokenID may be
// empty; salePrice is a non-negative base-10 integer.
func (c *RoyaltyClient) Get(asset interfaces.Address, tokenID, salePrice string) (*api.GetRoyaltyResponse, error) {
	query := url.Values{}
	query.Set("sale_price", salePrice)
	if tokenID != "" {
		query.Set("token_id", tokenID)
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+royaltyPath(asset)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result api.GetRoyaltyResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Config returns the stored config of asset.
func (c *RoyaltyClient) Config(asset interfaces.Address) (*api.RoyaltyConfigResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+royaltyPath(asset)+"/config", nil)
	if err != nil {
		return nil, err
	}

	var result api.RoyaltyConfigResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RoyaltyClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("royalty request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read royalty response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse royalty response: %w", err)
	}
	return nil
}

func royaltyPath(asset interfaces.Address) string {
	return "/api/royalty/" + asset.Hex()
}

// MockRoyaltyProvider implements a mock api.RoyaltyProvider for testing.
type MockRoyaltyProvider struct {
	mock.Mock
}

func (m *MockRoyaltyProvider) Set(asset interfaces.Address, config interfaces.RoyaltyConfig) error {
	args := m.Called(asset, config)
	return args.Error(0)
}

func (m *MockRoyaltyProvider) Get(asset interfaces.Address, tokenID, salePrice string) (*api.GetRoyaltyResponse, error) {
	args := m.Called(asset, tokenID, salePrice)
	resp, _ := args.Get(0).(*api.GetRoyaltyResponse)
	return resp, args.Error(1)
}

func (m *MockRoyaltyProvider) Config(asset interfaces.Address) (*api.RoyaltyConfigResponse, error) {
	args := m.Called(asset)
	resp, _ := args.Get(0).(*api.RoyaltyConfigResponse)
	return resp, args.Error(1)
}
