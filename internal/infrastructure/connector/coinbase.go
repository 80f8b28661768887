package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CoinbaseConnectorID is the single connector the Coinbase backend offers.
const CoinbaseConnectorID = "coinbaseWalletSDK"

type relayAccountsRequest struct {
	AppName    string `json:"appName"`
	Preference string `json:"preference"`
	Connector  string `json:"connector"`
}

type relayAccountsResponse struct {
	Accounts []string    `json:"accounts"`
	Error    *relayError `json:"error,omitempty"`
}

type relayDisconnectRequest struct {
	AppName   string `json:"appName"`
	Connector string `json:"connector"`
}

type relayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// coinbaseConnector is the SDK-specific backend. The Coinbase Wallet SDK runs in the
// browser; it reports to a relay that this connector talks to over HTTP.
type coinbaseConnector struct {
	client     *fasthttp.Client
	baseURL    string
	appName    string
	preference string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCoinbase creates the SDK-specific backend.
func NewCoinbase(cfg configloader.CoinbaseConnectorConfig, timeout time.Duration, logger *zap.Logger) port.WalletConnector {
	return &coinbaseConnector{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(cfg.RelayURL, "/"),
		appName:    cfg.AppName,
		preference: cfg.Preference,
		timeout:    timeout,
		logger:     logger.Named("CoinbaseConnector"),
	}
}

// ListConnectors implements port.WalletConnector.
func (c *coinbaseConnector) ListConnectors(_ context.Context) ([]entity.ConnectorInfo, error) {
	return []entity.ConnectorInfo{{
		ID:    CoinbaseConnectorID,
		Name:  "Coinbase Wallet",
		Ready: c.baseURL != "",
	}}, nil
}

// ConnectorStatus implements port.ConnectorStatusReader.
func (c *coinbaseConnector) ConnectorStatus(ctx context.Context, connectorID string) (entity.ConnectorInfo, error) {
	if connectorID != CoinbaseConnectorID {
		return entity.ConnectorInfo{}, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}
	infos, err := c.ListConnectors(ctx)
	if err != nil {
		return entity.ConnectorInfo{}, err
	}
	return infos[0], nil
}

// RequestAccounts implements port.WalletConnector.
func (c *coinbaseConnector) RequestAccounts(ctx context.Context, connectorID string) ([]string, error) {
	if connectorID != CoinbaseConnectorID {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}

	body, err := json.Marshal(relayAccountsRequest{AppName: c.appName, Preference: c.preference, Connector: connectorID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode accounts request: %w", err)
	}

	raw, status, err := c.post(ctx, "/v1/accounts", body)
	if err != nil {
		return nil, err
	}

	var resp relayAccountsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Error("Failed to unmarshal relay accounts response",
			zap.Int("statusCode", status), zap.ByteString("responseBody", raw), zap.Error(err))
		return nil, fmt.Errorf("failed to decode relay response (status %d): %w", status, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wallet relay error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("wallet relay returned status %d", status)
	}
	return resp.Accounts, nil
}

// Disconnect implements port.WalletConnector.
func (c *coinbaseConnector) Disconnect(ctx context.Context, connectorID string) error {
	if connectorID != CoinbaseConnectorID {
		return fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}

	body, err := json.Marshal(relayDisconnectRequest{AppName: c.appName, Connector: connectorID})
	if err != nil {
		return fmt.Errorf("failed to encode disconnect request: %w", err)
	}
	_, status, err := c.post(ctx, "/v1/disconnect", body)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusNoContent {
		return fmt.Errorf("wallet relay disconnect returned status %d", status)
	}
	return nil
}

// post sends body to the relay and returns a copy of the response body.
func (c *coinbaseConnector) post(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	if c.baseURL == "" {
		return nil, 0, fmt.Errorf("wallet relay URL is not configured")
	}
	requestURL := c.baseURL + path

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Calling wallet relay", zap.String("url", requestURL))

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to wallet relay", zap.String("url", requestURL), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}
