package marketplace

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

const listingsBody = `{
	"listings": [
		{
			"chainId": 1,
			"collection": "0xAbC0000000000000000000000000000000000001",
			"tokenId": "1",
			"seller": "0xDeF0000000000000000000000000000000000002",
			"paymentToken": "0x0000000000000000000000000000000000000003",
			"basePrice": "1000",
			"endPrice": "1000",
			"startTime": "1700000000",
			"endTime": "1700086400",
			"status": "active"
		}
	]
}`

func TestListings(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/listings", r.URL.Path)
		req.Equal("1", r.URL.Query().Get("chainId"))
		req.Equal("0xabc0000000000000000000000000000000000001", r.URL.Query().Get("collection"))
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	c := NewClient(&ClientCfg{
		Timeout:   time.Second,
		Endpoints: []string{srv.URL},
	})

	listings, err := c.Listings(ctx.Background(), 1, "0xAbC0000000000000000000000000000000000001", 50)
	req.NoError(err)
	req.Len(listings, 1)
	// addresses come back lowercased
	req.Equal(domain.Address("0xdef0000000000000000000000000000000000002"), listings[0].Seller)
}

func TestListingsFallback(t *testing.T) {
	req := require.New(t)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingsBody))
	}))
	defer good.Close()

	c := NewClient(&ClientCfg{
		Timeout:   time.Second,
		Endpoints: []string{bad.URL, good.URL},
	})

	listings, err := c.Listings(ctx.Background(), 1, "0xabc0000000000000000000000000000000000001", 50)
	req.NoError(err)
	req.Len(listings, 1)
}

func TestListingsExhausted(t *testing.T) {
	req := require.New(t)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	c := NewClient(&ClientCfg{
		Timeout:   time.Second,
		Endpoints: []string{bad.URL, bad.URL},
	})

	_, err := c.Listings(ctx.Background(), 1, "0xabc0000000000000000000000000000000000001", 50)
	req.ErrorIs(err, domain.ErrMarketplaceExhausted)
}

func TestListingsMinSpacing(t *testing.T) {
	req := require.New(t)

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	spacing := 50 * time.Millisecond
	c := NewClient(&ClientCfg{
		Timeout:    time.Second,
		Endpoints:  []string{srv.URL},
		MinSpacing: spacing,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Listings(ctx.Background(), 1, "0xabc0000000000000000000000000000000000001", 50)
		req.NoError(err)
	}
	req.Equal(int64(3), atomic.LoadInt64(&calls))
	// second and third call each wait out the spacing
	req.GreaterOrEqual(time.Since(start), 2*spacing)
}
