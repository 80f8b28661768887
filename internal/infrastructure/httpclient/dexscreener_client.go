// Package httpclient holds the HTTP API clients used by the live dashboard source.
package httpclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

// maxAddressesPerRequest is the tokens/v1 limit on comma-separated addresses.
const maxAddressesPerRequest = 30

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var stablecoinSymbols = map[string]struct{}{
	"USDC":   {},
	"USDC.E": {},
	"USDT":   {},
	"DAI":    {},
}

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	port.PriceFeed
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger) DEXScreenerClient {
	return &dexScreenerClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("DEXScreenerClient"),
	}
}

// GetTokenPairsByAddresses implements the DEXScreenerClient interface. Long address
// lists are split into batches the API accepts and the pairs are concatenated.
func (c *dexScreenerClientImpl) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, fmt.Errorf("tokenAddresses cannot be empty")
	}

	var pairs []PairData
	for _, batch := range utils.BatchStrings(tokenAddresses, maxAddressesPerRequest) {
		batchPairs, err := c.fetchPairs(ctx, dexscreenerChainID, batch)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, batchPairs...)
	}
	return pairs, nil
}

func (c *dexScreenerClientImpl) fetchPairs(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error) {
	addresses := strings.Join(tokenAddresses, ",")
	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, addresses)

	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to DEX Screener (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	// tokens/v1 answers with a bare array; older endpoints wrap it in {"pairs": [...]}.
	var wrapped DEXTokenPair
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Pairs != nil {
		return wrapped.Pairs, nil
	}

	var directPairs []PairData
	if err := json.Unmarshal(rawBody, &directPairs); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	c.logger.Debug("Received DEX Screener pairs",
		zap.String("dexscreenerChainID", dexscreenerChainID),
		zap.Int("pairCount", len(directPairs)))
	return directPairs, nil
}

// Quote implements port.PriceFeed. The price comes from the most liquid pair quoted
// in a stablecoin, or from the most liquid pair of any kind when none is.
func (c *dexScreenerClientImpl) Quote(ctx context.Context, dexscreenerChainID, tokenAddress string) (entity.PriceQuote, error) {
	pairs, err := c.GetTokenPairsByAddresses(ctx, dexscreenerChainID, []string{tokenAddress})
	if err != nil {
		return entity.PriceQuote{}, err
	}

	best := selectBestPair(pairs, tokenAddress)
	if best == nil {
		c.logger.Warn("No suitable price found from pairs",
			zap.String("baseTokenAddress", tokenAddress),
			zap.Int("evaluatedPairCount", len(pairs)))
		return entity.PriceQuote{}, fmt.Errorf("no priced pair for %s on %s", tokenAddress, dexscreenerChainID)
	}

	price, err := strconv.ParseFloat(best.PriceUsd, 64)
	if err != nil {
		return entity.PriceQuote{}, fmt.Errorf("invalid priceUsd %q for pair %s: %w", best.PriceUsd, best.PairAddress, err)
	}

	c.logger.Debug("Selected price pair",
		zap.String("baseTokenAddress", tokenAddress),
		zap.String("pairAddress", best.PairAddress),
		zap.String("quoteToken", best.QuoteToken.Symbol),
		zap.Float64("liquidityUsd", best.liquidityUSD()))
	return entity.PriceQuote{PriceUSD: price, Change24h: best.PriceChange.H24}, nil
}

func selectBestPair(pairs []PairData, baseTokenAddress string) *PairData {
	var bestOverall, bestStable *PairData
	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}
		if _, ok := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; ok {
			if bestStable == nil || pair.liquidityUSD() > bestStable.liquidityUSD() {
				bestStable = pair
			}
		}
		if bestOverall == nil || pair.liquidityUSD() > bestOverall.liquidityUSD() {
			bestOverall = pair
		}
	}
	if bestStable != nil {
		return bestStable
	}
	return bestOverall
}
