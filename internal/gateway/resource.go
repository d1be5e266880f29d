package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/manjeshpatagar/mytradingview/internal/models"
)

// Resource issues the CRUD calls for one collection, typed by its record.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: "/" + path}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, rec *T) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPost, r.path, rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends a partial patch. Only the named fields change on the server.
func (r *Resource[T]) Update(ctx context.Context, id string, patch map[string]interface{}) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPatch, r.item(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}

func (r *Resource[T]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (c *Client) StockNews() *Resource[models.StockNews] {
	return NewResource[models.StockNews](c, "stock-news")
}

func (c *Client) MarketNews() *Resource[models.MarketNews] {
	return NewResource[models.MarketNews](c, "market-news")
}

func (c *Client) IntradayStocks() *Resource[models.IntradayStock] {
	return NewResource[models.IntradayStock](c, "intraday-stock")
}

func (c *Client) IntradayResults() *Resource[models.IntradayResult] {
	return NewResource[models.IntradayResult](c, "intraday-results")
}

func (c *Client) Results() *Resource[models.CorporateResult] {
	return NewResource[models.CorporateResult](c, "results")
}
