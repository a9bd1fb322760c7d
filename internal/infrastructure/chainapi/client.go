package chainapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTransactionLimit is used when a caller passes a non-positive limit.
const DefaultTransactionLimit = 10

type errorBody struct {
	Error string `json:"error"`
}

// chainAPIClientImpl is the fasthttp implementation of port.ChainDataClient.
type chainAPIClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewChainAPIClient creates a client for the balance/transaction service at baseURL.
// rateLimit is in requests per second; a non-positive value disables throttling.
func NewChainAPIClient(baseURL string, timeout time.Duration, rateLimit, burstLimit int, logger *zap.Logger) port.ChainDataClient {
	limit := rate.Inf
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if burstLimit <= 0 {
		burstLimit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// Path normalizing would decode %2F in an escaped address into a path separator.
	client := &fasthttp.Client{Name: "portfolio-dashboard", DisablePathNormalizing: true}

	return &chainAPIClientImpl{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burstLimit),
		logger:  logger.Named("ChainAPIClient"),
	}
}

// FetchBalances implements port.ChainDataClient.
func (c *chainAPIClientImpl) FetchBalances(ctx context.Context, chain entity.Chain, address string) (snapshot *entity.ChainSnapshot, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest(chain.String(), entity.OpBalances, start, err) }()

	def := chain.Definition()
	requestURL := fmt.Sprintf("%s/%s/balances/%s", c.baseURL, chain, url.PathEscape(address))

	body, err := c.get(ctx, chain, entity.OpBalances, requestURL, def.BalancesFallbackMessage())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &snapshot); err != nil || snapshot == nil {
		if err == nil {
			err = fmt.Errorf("empty balance payload")
		}
		c.logger.Error("Failed to unmarshal balance response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return nil, &entity.FetchError{
			Chain:      chain,
			Operation:  entity.OpBalances,
			StatusCode: fasthttp.StatusOK,
			Message:    def.BalancesFallbackMessage(),
			Cause:      fmt.Errorf("failed to unmarshal balance response from %s: %w", requestURL, err),
		}
	}

	if snapshot.Chain == "" {
		snapshot.Chain = chain.String()
	}
	if snapshot.Address == "" {
		snapshot.Address = address
	}
	if snapshot.Tokens == nil {
		snapshot.Tokens = []entity.TokenHolding{}
	}

	c.logger.Debug("Fetched balances",
		zap.String("chain", chain.String()),
		zap.String("address", address),
		zap.Int("tokenCount", len(snapshot.Tokens)))
	return snapshot, nil
}

// FetchTransactions implements port.ChainDataClient.
func (c *chainAPIClientImpl) FetchTransactions(ctx context.Context, chain entity.Chain, address string, limit int) (txs []entity.Transaction, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest(chain.String(), entity.OpTransactions, start, err) }()

	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	def := chain.Definition()
	requestURL := fmt.Sprintf("%s/%s/transactions/%s?limit=%s", c.baseURL, chain, url.PathEscape(address), strconv.Itoa(limit))

	body, err := c.get(ctx, chain, entity.OpTransactions, requestURL, def.TransactionsFallbackMessage())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &txs); err != nil {
		c.logger.Error("Failed to unmarshal transactions response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return nil, &entity.FetchError{
			Chain:      chain,
			Operation:  entity.OpTransactions,
			StatusCode: fasthttp.StatusOK,
			Message:    def.TransactionsFallbackMessage(),
			Cause:      fmt.Errorf("failed to unmarshal transactions response from %s: %w", requestURL, err),
		}
	}

	if txs == nil {
		txs = []entity.Transaction{}
	}
	for i := range txs {
		if txs[i].Chain == "" {
			txs[i].Chain = chain.String()
		}
	}
	return txs, nil
}

// get performs a GET request and returns the body of a 200 response.
// Every failure is returned as *entity.FetchError carrying either the upstream message or fallback.
func (c *chainAPIClientImpl) get(ctx context.Context, chain entity.Chain, op, requestURL, fallback string) ([]byte, error) {
	fail := func(status int, cause error) error {
		return &entity.FetchError{Chain: chain, Operation: op, StatusCode: status, Message: fallback, Cause: cause}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(0, fmt.Errorf("rate limiter wait for %s: %w", requestURL, err))
	}

	c.logger.Debug("Requesting chain API", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.URI().DisablePathNormalizing = true
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to chain API", zap.String("url", requestURL), zap.Error(err))
			return nil, fail(0, fmt.Errorf("failed to execute request to %s: %w", requestURL, err))
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to chain API (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fail(0, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err))
		}
	}

	// resp is released on return, so the body must be copied out.
	rawBody := append([]byte(nil), resp.Body()...)

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Chain API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))

		fetchErr := &entity.FetchError{
			Chain:      chain,
			Operation:  op,
			StatusCode: resp.StatusCode(),
			Message:    fallback,
			Cause:      fmt.Errorf("chain API request to %s failed with status %d", requestURL, resp.StatusCode()),
		}
		var eb errorBody
		if err := json.Unmarshal(rawBody, &eb); err == nil && strings.TrimSpace(eb.Error) != "" {
			fetchErr.Message = eb.Error
		}
		return nil, fetchErr
	}

	return rawBody, nil
}
