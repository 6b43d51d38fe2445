// Package fipe reads the FIPE vehicle catalog (brands and models) used when adding a car.
package fipe

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"gearhead/pkg/fuzzy"
	"gearhead/pkg/gateway"
)

const (
	cacheSize = 256
	cacheTTL  = 24 * time.Hour
)

// Option is a catalog entry as served by FIPE.
type Option struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type getter interface {
	Get(ctx context.Context, path string, out interface{}, opts ...gateway.Option) error
}

type Client struct {
	baseURL string
	api     getter
	limiter *rate.Limiter
	cache   *expirable.LRU[string, []Option]
}

// NewClient creates a catalog client. ratePerSecond <= 0 disables rate limiting.
func NewClient(baseURL string, api getter, ratePerSecond float64) *Client {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		api:     api,
		limiter: rate.NewLimiter(limit, 1),
		cache:   expirable.NewLRU[string, []Option](cacheSize, nil, cacheTTL),
	}
}

func (c *Client) Brands(ctx context.Context) ([]Option, error) {
	return c.fetch(ctx, c.baseURL+"/brands")
}

func (c *Client) Models(ctx context.Context, brandCode string) ([]Option, error) {
	brandCode = strings.TrimSpace(brandCode)
	if brandCode == "" {
		return nil, fmt.Errorf("brand code is required")
	}
	return c.fetch(ctx, c.baseURL+"/brands/"+brandCode+"/models")
}

// SearchBrands ranks brands by how well their name matches query.
func (c *Client) SearchBrands(ctx context.Context, query string) ([]Option, error) {
	brands, err := c.Brands(ctx)
	if err != nil {
		return nil, err
	}
	return fuzzy.Rank(query, brands, optionName), nil
}

// SearchModels resolves brand by code or name, then ranks its models against query.
func (c *Client) SearchModels(ctx context.Context, brand, query string) ([]Option, error) {
	code, err := c.resolveBrand(ctx, brand)
	if err != nil {
		return nil, err
	}
	models, err := c.Models(ctx, code)
	if err != nil {
		return nil, err
	}
	return fuzzy.Rank(query, models, optionName), nil
}

func (c *Client) resolveBrand(ctx context.Context, brand string) (string, error) {
	brand = strings.TrimSpace(brand)
	brands, err := c.Brands(ctx)
	if err != nil {
		return "", err
	}
	for _, b := range brands {
		if b.Code == brand {
			return b.Code, nil
		}
	}
	ranked := fuzzy.Rank(brand, brands, optionName)
	if len(ranked) == 0 {
		return "", fmt.Errorf("unknown brand %q", brand)
	}
	return ranked[0].Code, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]Option, error) {
	if cached, ok := c.cache.Get(url); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var options []Option
	if err := c.api.Get(ctx, url, &options, gateway.SkipAuth()); err != nil {
		log.Printf("[Fipe] Failed to fetch %s: %v", url, err)
		return nil, err
	}
	c.cache.Add(url, options)
	return options, nil
}

func optionName(o Option) string {
	return o.Name
}
