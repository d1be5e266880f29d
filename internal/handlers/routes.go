package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/manjeshpatagar/mytradingview/internal/models"
	"github.com/manjeshpatagar/mytradingview/internal/store"
)

// Policy is the route declaration for one resource.
type Policy struct {
	// Path below the API prefix, without a leading slash.
	Path string
	// Name used in messages ("Stock news not found").
	Name string
	// Daily resources list only what was created today.
	Daily bool
	// Guarded collections require a valid token on every operation.
	Guarded bool
}

type binding struct {
	Policy
	mount func(h *Handler, api *gin.RouterGroup, p Policy)
}

// Only market-news is guarded. The other collections accept unauthenticated
// writes, which is how the portal currently works; confirm with the product
// owner before flipping any of them.
var bindings = []binding{
	{Policy{Path: "stock-news", Name: "Stock news", Daily: true}, mount[models.StockNews, *models.StockNews]},
	{Policy{Path: "market-news", Name: "Market news", Guarded: true}, mount[models.MarketNews, *models.MarketNews]},
	{Policy{Path: "intraday-stock", Name: "Intraday stock"}, mount[models.IntradayStock, *models.IntradayStock]},
	{Policy{Path: "intraday-results", Name: "Intraday result", Daily: true}, mount[models.IntradayResult, *models.IntradayResult]},
	{Policy{Path: "results", Name: "Result"}, mount[models.CorporateResult, *models.CorporateResult]},
}

// Policies returns the route table.
func Policies() []Policy {
	out := make([]Policy, len(bindings))
	for i, b := range bindings {
		out[i] = b.Policy
	}
	return out
}

func mount[T any, P store.RecordPtr[T]](h *Handler, api *gin.RouterGroup, p Policy) {
	rc := NewResource[T, P](store.New[T, P](h.db, p.Name), h.clock, p.Daily)

	g := api.Group("/" + p.Path)
	if p.Guarded {
		g.Use(h.gate)
	}
	g.POST("", rc.Create)
	g.GET("", rc.List)
	g.GET("/:id", rc.Get)
	g.PATCH("/:id", rc.Update)
	g.DELETE("/:id", rc.Delete)
}
