// Package integration exercises the full scan-to-cart flow with a
// real barcode image rendered to disk, the directory-backed camera,
// and the zxing decoder. No collaborator is faked except the catalog
// backend, which is an httptest server.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erp/pos/internal/application/orderentry"
	appscan "github.com/erp/pos/internal/application/scan"
	"github.com/erp/pos/internal/domain/cart"
	"github.com/erp/pos/internal/infrastructure/catalog"
	"github.com/erp/pos/internal/infrastructure/decoder"
	"github.com/erp/pos/internal/infrastructure/media"
	"github.com/erp/pos/internal/infrastructure/storage"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeBarcodeImage renders an EAN-13 barcode for the given 12-digit
// payload and returns the full 13-digit code including check digit
func writeBarcodeImage(t *testing.T, dir, payload string) string {
	t.Helper()

	writer := oned.NewEAN13Writer()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_EAN_13, 400, 160, nil)
	require.NoError(t, err)

	f, err := os.Create(filepath.Join(dir, "frame-001.png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, matrix))

	// The writer appends the check digit to a 12-digit payload
	sum := 0
	for i, r := range payload {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return fmt.Sprintf("%s%d", payload, check)
}

// catalogBackend serves the product lookup endpoint for one barcode
func catalogBackend(t *testing.T, barcode string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/product/barcode") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var requested string
		if err := json.NewDecoder(r.Body).Decode(&requested); err != nil || requested != barcode {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"p9","name":"Widget","price":"12","barcode":%q}`, barcode)
	}))
}

func TestScanFlowEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end scan flow in short mode")
	}

	frameDir := t.TempDir()
	fullCode := writeBarcodeImage(t, frameDir, "890103087561")

	backend := catalogBackend(t, fullCode)
	defer backend.Close()

	log := zap.NewNop()
	repo := storage.NewCartRepository(storage.NewInMemoryStore(), "cart")
	cartStore := cart.NewStore(context.Background(), repo, log)

	resolver := catalog.NewHTTPResolver(catalog.Config{
		BaseURL: backend.URL,
		Timeout: 2 * time.Second,
	}, nil, log)

	provider := &media.FileProvider{Dir: frameDir, FrameRate: 30}
	manager := media.NewManager(provider, media.ManagerConfig{FrameRate: 30}, log)
	controller := appscan.NewController(decoder.NewZXingDecoder(), nil, 10*time.Millisecond, log)

	svc := orderentry.NewService(cartStore, resolver, manager, controller,
		orderentry.Config{MaxRetries: 3}, log)
	defer svc.Shutdown()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewCartHandler(cartStore, log))
	r.Register(handler.NewScannerHandler(svc, log))
	r.Setup()

	// Open the scanner over the virtual camera
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scanner/open", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The rendered barcode must travel frame -> decoder -> catalog -> cart
	require.Eventually(t, func() bool {
		return cartStore.IsInCart("p9")
	}, 10*time.Second, 20*time.Millisecond, "scanned product should land in the cart")

	items := cartStore.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)

	// And the cart endpoint must serve it
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Widget")
}
