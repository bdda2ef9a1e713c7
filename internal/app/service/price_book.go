package service

import (
	"strings"
	"sync"

	"portfolio_valuator/internal/app/port"

	"golang.org/x/sync/singleflight"
)

// PriceBook holds the USD prices and icons discovered while valuing one wallet.
// It is created per request and never shared between requests.
type PriceBook struct {
	mu     sync.RWMutex
	prices map[string]float64
	icons  map[string]string
	group  singleflight.Group
}

// NewPriceBook creates an empty PriceBook.
func NewPriceBook() *PriceBook {
	return &PriceBook{
		prices: make(map[string]float64),
		icons:  make(map[string]string),
	}
}

// Price returns the recorded price of address.
func (b *PriceBook) Price(address string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[strings.ToLower(address)]
	return p, ok
}

// Icon returns the recorded icon of address, or "".
func (b *PriceBook) Icon(address string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.icons[strings.ToLower(address)]
}

// Set records a quote. The last write wins; an empty icon never erases a known one.
func (b *PriceBook) Set(address string, q port.MarketQuote) {
	key := strings.ToLower(address)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[key] = q.PriceUSD
	if q.Icon != "" {
		b.icons[key] = q.Icon
	}
}

// Len returns the number of priced addresses.
func (b *PriceBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.prices)
}

// Lookup returns the recorded quote of address, or runs fetch and records its answer.
// Concurrent lookups of one address share a single fetch.
func (b *PriceBook) Lookup(address string, fetch func() port.MarketQuote) port.MarketQuote {
	key := strings.ToLower(address)
	if p, ok := b.Price(key); ok {
		return port.MarketQuote{PriceUSD: p, Icon: b.Icon(key)}
	}

	v, _, _ := b.group.Do(key, func() (interface{}, error) {
		if p, ok := b.Price(key); ok {
			return port.MarketQuote{PriceUSD: p, Icon: b.Icon(key)}, nil
		}
		q := fetch()
		b.Set(key, q)
		return port.MarketQuote{PriceUSD: q.PriceUSD, Icon: b.Icon(key)}, nil
	})
	return v.(port.MarketQuote)
}
