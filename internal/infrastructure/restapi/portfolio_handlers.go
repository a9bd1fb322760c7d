package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/app/portfolio"
	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/walletloader"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PortfolioResponse is the body of GET /api/v1/portfolio.
type PortfolioResponse struct {
	Version       uint64                        `json:"version"`
	TotalValueUSD float64                       `json:"totalValueUsd"`
	Loading       bool                          `json:"loading"`
	Error         string                        `json:"error,omitempty"`
	Statuses      map[string]entity.ChainStatus `json:"statuses"`
	Chains        []entity.ChainSummary         `json:"chains"`
	Stats         entity.PortfolioStats         `json:"stats"`
}

// TokensResponse is the body of GET /api/v1/tokens.
type TokensResponse struct {
	Filter        string                  `json:"filter"`
	Sort          portfolio.SortField     `json:"sort"`
	Direction     portfolio.SortDirection `json:"direction"`
	TotalValueUSD float64                 `json:"totalValueUsd"`
	Tokens        []entity.PortfolioToken `json:"tokens"`
}

// TransactionsResponse is the body of GET /api/v1/transactions.
type TransactionsResponse struct {
	Transactions []entity.TransactionView `json:"transactions"`
}

// WalletRequest is the body of PUT /api/v1/wallets/:chain.
type WalletRequest struct {
	Address string `json:"address" binding:"required"`
}

// WalletResponse reports the wallet tracked for a chain after a connect or disconnect.
type WalletResponse struct {
	Chain     entity.Chain `json:"chain"`
	Address   string       `json:"address"`
	Connected bool         `json:"connected"`
}

// PortfolioHandler serves the dashboard over HTTP. It reads from the store and
// writes only through the portfolio service.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	store            *store.Store
	dashboard        *portfolio.Dashboard
	logger           port.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, st *store.Store, dashboard *portfolio.Dashboard, logger port.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		store:            st,
		dashboard:        dashboard,
		logger:           logger,
	}
}

func (h *PortfolioHandler) view() *portfolio.View {
	return h.dashboard.Compute(h.store.State())
}

// HealthHandler answers liveness probes.
func (h *PortfolioHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPortfolioHandler returns totals, per-chain summaries and statistics.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	st := h.store.State()
	v := h.dashboard.Compute(st)

	statuses := make(map[string]entity.ChainStatus, len(st.Chains))
	for _, chain := range entity.Chains {
		statuses[chain.String()] = st.Chain(chain).Status
	}

	c.JSON(http.StatusOK, PortfolioResponse{
		Version:       v.Version,
		TotalValueUSD: v.TotalValueUSD,
		Loading:       v.Loading,
		Error:         v.Error,
		Statuses:      statuses,
		Chains:        v.Chains,
		Stats:         v.Stats,
	})
}

// GetTokensHandler returns the unified token table, filtered and sorted by query parameters.
func (h *PortfolioHandler) GetTokensHandler(c *gin.Context) {
	filter := c.DefaultQuery("chain", portfolio.FilterAll)
	if strings.EqualFold(filter, portfolio.FilterAll) {
		filter = portfolio.FilterAll
	} else if _, ok := entity.ParseChain(filter); !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown chain: " + filter})
		return
	}
	field, ok := portfolio.ParseSortField(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported sort field: " + c.Query("sort")})
		return
	}
	dir, ok := portfolio.ParseSortDirection(c.Query("direction"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported sort direction: " + c.Query("direction")})
		return
	}

	v := h.view()
	tokens := portfolio.SortTokens(portfolio.FilterTokens(v.Tokens, filter), field, dir)

	c.JSON(http.StatusOK, TokensResponse{
		Filter:        filter,
		Sort:          field,
		Direction:     dir,
		TotalValueUSD: v.TotalValueUSD,
		Tokens:        tokens,
	})
}

// GetChartHandler returns the distribution chart series.
func (h *PortfolioHandler) GetChartHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.view().Chart)
}

// GetTransactionsHandler returns the merged transaction history.
func (h *PortfolioHandler) GetTransactionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, TransactionsResponse{Transactions: h.view().Transactions})
}

// ConnectWalletHandler validates the address and connects it for the chain.
func (h *PortfolioHandler) ConnectWalletHandler(c *gin.Context) {
	chain, ok := entity.ParseChain(c.Param("chain"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown chain: " + c.Param("chain")})
		return
	}

	var req WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must be {\"address\": \"...\"}"})
		return
	}

	address, err := walletloader.NormalizeAddress(chain, req.Address)
	if err == nil && address == "" {
		err = fmt.Errorf("%w: address is empty", walletloader.ErrInvalidAddress)
	}
	if err != nil {
		h.logger.Debug("Rejected wallet address", "chain", chain, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.portfolioService.SetAddress(c.Request.Context(), chain, address)
	c.JSON(http.StatusAccepted, WalletResponse{Chain: chain, Address: address, Connected: true})
}

// DisconnectWalletHandler disconnects the chain and clears its data.
func (h *PortfolioHandler) DisconnectWalletHandler(c *gin.Context) {
	chain, ok := entity.ParseChain(c.Param("chain"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown chain: " + c.Param("chain")})
		return
	}
	h.portfolioService.SetAddress(c.Request.Context(), chain, "")
	c.JSON(http.StatusOK, WalletResponse{Chain: chain})
}

// RefreshHandler triggers an immediate refresh of every connected chain.
func (h *PortfolioHandler) RefreshHandler(c *gin.Context) {
	h.portfolioService.Refresh(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// ClearSessionHandler disconnects every wallet and clears all state.
func (h *PortfolioHandler) ClearSessionHandler(c *gin.Context) {
	h.portfolioService.Reset()
	c.Status(http.StatusNoContent)
}
