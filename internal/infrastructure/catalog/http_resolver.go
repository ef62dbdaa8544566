// Package catalog implements the product-resolution client against
// the ERP catalog REST backend.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domaincatalog "github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/pos/internal/infrastructure/catalog"

// TokenSource supplies the bearer token attached to lookup requests.
// The auth token store satisfies it; a nil source sends no token.
type TokenSource interface {
	Load(ctx context.Context) (string, error)
}

// Config holds HTTP resolver settings
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// HTTPResolver resolves barcodes against the catalog backend. One
// lookup per call, no automatic retries; the circuit breaker only
// sheds load when the backend is persistently failing at the
// transport level. A not-found response is a normal business outcome
// and never trips the breaker.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*domaincatalog.Product]
	tokens  TokenSource
	logger  *zap.Logger
}

// NewHTTPResolver creates a resolver for the given backend
func NewHTTPResolver(cfg Config, tokens TokenSource, logger *zap.Logger) *HTTPResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "catalog-lookup",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// The backend answered; only transport failures count
			return err == nil || errors.Is(err, shared.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Catalog circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &HTTPResolver{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*domaincatalog.Product](settings),
		tokens:  tokens,
		logger:  logger,
	}
}

// ResolveByBarcode looks the barcode up and returns the product
// record, or a failure wrapping shared.ErrNotFound (backend said no)
// or shared.ErrUnavailable (transport failure / breaker open)
func (r *HTTPResolver) ResolveByBarcode(ctx context.Context, barcode string) (*domaincatalog.Product, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.ResolveByBarcode")
	span.SetAttributes(attribute.String("pos.barcode", barcode))
	defer span.End()

	product, err := r.breaker.Execute(func() (*domaincatalog.Product, error) {
		return r.lookup(ctx, barcode)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: catalog lookups suspended: %s", shared.ErrUnavailable, err)
		}
		return nil, err
	}
	return product, nil
}

// lookup performs the single backend request
func (r *HTTPResolver) lookup(ctx context.Context, barcode string) (*domaincatalog.Product, error) {
	// The lookup endpoint takes the JSON-encoded barcode string as the
	// request body
	body, err := json.Marshal(barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode: %w", err)
	}

	url := r.baseURL + "/product/barcode"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.tokens != nil {
		if token, err := r.tokens.Load(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: product lookup failed: %s", shared.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: no product for barcode %s (status %d)",
			shared.ErrNotFound, barcode, resp.StatusCode)
	}

	var product domaincatalog.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: malformed product response: %s", shared.ErrUnavailable, err)
	}
	return &product, nil
}

// Ensure HTTPResolver implements the domain resolver contract
var _ domaincatalog.Resolver = (*HTTPResolver)(nil)
