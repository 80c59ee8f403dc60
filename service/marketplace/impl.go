package marketplace

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"sync"
	"time"

	bCtx "github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

const (
	bearerKey = "X-API-KEY"
)

func NewClient(cfg *ClientCfg) Client {
	return &client{
		client:     cfg.HttpClient,
		timeout:    cfg.Timeout,
		apikey:     cfg.Apikey,
		endpoints:  cfg.Endpoints,
		minSpacing: cfg.MinSpacing,
	}
}

type client struct {
	client     http.Client
	timeout    time.Duration
	apikey     string
	endpoints  []string
	minSpacing time.Duration

	// serializes upstream calls and enforces minSpacing between them
	mu       sync.Mutex
	lastCall time.Time
}

func (c *client) Listings(ctx bCtx.Ctx, chainId domain.ChainId, collection domain.Address, limit int) ([]*listing.Listing, error) {
	query := url.Values{}
	query.Set("chainId", fmt.Sprintf("%d", chainId))
	query.Set("collection", collection.ToLowerStr())
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("sort", "price")
	path := fmt.Sprintf("listings?%s", query.Encode())

	var lastErr error
	for _, endpoint := range c.endpoints {
		url := fmt.Sprintf("%s/%s", endpoint, path)
		data, err := c.get(ctx, url)
		if err != nil {
			ctx.WithFields(log.Fields{
				"url": url,
				"err": err,
			}).Warn("marketplace endpoint failed, trying next")
			lastErr = err
			continue
		}
		resp := &ListingsResp{}
		if err := json.Unmarshal(data, resp); err != nil {
			ctx.WithField("err", err).Error("json.Unmarshal failed")
			lastErr = err
			continue
		}
		for _, l := range resp.Listings {
			l.LowerCase()
		}
		return resp.Listings, nil
	}

	ctx.WithFields(log.Fields{
		"endpoints": len(c.endpoints),
		"err":       lastErr,
	}).Error("all marketplace endpoints failed")
	return nil, domain.ErrMarketplaceExhausted
}

func (c *client) get(ctx bCtx.Ctx, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.minSpacing > 0 {
		if wait := c.minSpacing - time.Since(c.lastCall); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	c.lastCall = time.Now()

	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	if len(c.apikey) > 0 {
		req.Header.Set(bearerKey, c.apikey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
		}).Error("resp.StatusCode != 200")
		return nil, ErrStatusCodeNotOk
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}
	return body, nil
}
