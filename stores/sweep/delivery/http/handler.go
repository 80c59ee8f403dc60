package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/delivery"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/ledger"
	"github.com/x-xyz/sweeper/domain/listing"
	"github.com/x-xyz/sweeper/domain/settlement"
	"github.com/x-xyz/sweeper/middleware"
)

const defaultHistoryLimit = 50

type handler struct {
	sweep    settlement.UseCase
	ledger   ledger.UseCase
	ghostSet listing.GhostSetRepo
}

func New(
	e *echo.Echo,
	sweep settlement.UseCase,
	ledger ledger.UseCase,
	ghostSet listing.GhostSetRepo) {
	h := &handler{sweep, ledger, ghostSet}

	g := e.Group("/sweep")

	g.POST("/preview", h.preview)

	g.POST("/execute", h.execute)

	g.GET("/history/:user", h.history, middleware.IsValidAddress("user"))

	g.POST("/ghost", h.ghost)

	g.GET("/ghost/:chainId/:collection", h.ghosted)
}

func (h *handler) preview(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := &settlement.PreviewRequest{}

	if err := c.Bind(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	quote, err := h.sweep.Preview(ctx, req)
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, quote)
}

func (h *handler) execute(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := &settlement.ExecuteRequest{}

	if err := c.Bind(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	// runs to the sweep's terminal state; the response carries what was
	// actually purchased and spent
	result, err := h.sweep.Execute(ctx, req)
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, result)
}

type historyParams struct {
	Limit int32 `query:"limit"`
}

func (h *handler) history(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	user := domain.Address(c.Param("user"))

	p := &historyParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if p.Limit <= 0 {
		p.Limit = defaultHistoryLimit
	}

	records, err := h.ledger.History(ctx, user, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, records)
}

type ghostParams struct {
	ChainId    domain.ChainId   `json:"chainId" validate:"required"`
	Collection domain.Address   `json:"collection" validate:"required"`
	TokenIds   []domain.TokenId `json:"tokenIds" validate:"required,min=1"`
}

func (h *handler) ghost(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &ghostParams{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.ghostSet.Add(ctx, p.ChainId, p.Collection.ToLower(), p.TokenIds...); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) ghosted(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	chainId, err := domain.ToChainId(c.Param("chainId"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid chain id")
	}
	collection := domain.Address(c.Param("collection")).ToLower()

	tokenIds, err := h.ghostSet.All(ctx, chainId, collection)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, tokenIds)
}

// errStatus maps the sweep error taxonomy onto http statuses so callers
// can tell a rejected request from an execution failure.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedChain),
		errors.Is(err, domain.ErrInvalidNumberFormat),
		errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSweepInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNothingToSweep),
		errors.Is(err, domain.ErrAllCandidatesStale):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoWalletKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
