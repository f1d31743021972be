package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/adapter/captcha"
	"github.com/bookhaven/library-app/internal/adapter/openlibrary"
	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/handler"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/pkg/auth"

	service_mocks "github.com/bookhaven/library-app/internal/handler/mocks"
)

// newGatewayRouter wires the router to an in-process metadata gateway.
func newGatewayRouter(t *testing.T, upstream http.HandlerFunc) (*mocks, http.Handler) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	m := &mocks{
		catalog:     service_mocks.NewMockCatalogService(c),
		users:       service_mocks.NewMockUserService(c),
		reservation: service_mocks.NewMockReservationService(c),
	}
	log := zap.NewNop()
	h := handler.New(
		m.catalog,
		m.users,
		m.reservation,
		captcha.New(captcha.Config{}, log),
		openlibrary.New(openlibrary.Config{GatewayURL: srv.URL + "/open-library/search"}, log),
		auth.NewManager(auth.Config{Secret: "test-secret", TTL: time.Hour}),
		log,
	)
	return m, h.NewRouter()
}

func TestHandler_BookWebVersions(t *testing.T) {
	t.Parallel()
	m, router := newGatewayRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Dune", r.URL.Query().Get("title"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"results":[{"title":"Dune","year":1965}],"total_found":1}`))
	})
	m.catalog.EXPECT().
		GetBook(context.Background(), 5).
		Return(model.Book{ID: 5, Title: "Dune", TotalCopies: 1, AvailableCopies: 1}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/5/web-versions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"book_id":5,"book_title":"Dune","results":[{"title":"Dune","year":1965}],"service_available":true,"service_type":"api_gateway","success":true,"total_found":1}`,
		strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_BookWebVersions_UnknownBook(t *testing.T) {
	t.Parallel()
	m, router := newGatewayRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway called for an unknown book")
	})
	m.catalog.EXPECT().
		GetBook(context.Background(), 77).
		Return(model.Book{}, errs.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/77/web-versions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"success":false,"error":"book not found"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_BookWebVersions_Unconfigured(t *testing.T) {
	t.Parallel()
	_, router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/5/web-versions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"service_available":false`)
}
