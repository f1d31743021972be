package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
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

type mocks struct {
	catalog     *service_mocks.MockCatalogService
	users       *service_mocks.MockUserService
	reservation *service_mocks.MockReservationService
}

func newTestRouter(t *testing.T) (*mocks, http.Handler) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
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
		openlibrary.New(openlibrary.Config{}, log),
		auth.NewManager(auth.Config{Secret: "test-secret", TTL: time.Hour}),
		log,
	)
	return m, h.NewRouter()
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m *mocks)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/api/books?page=1&per_page=10",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					ListBooks(context.Background(), 1, 10).
					Return(model.BookList{
						Books: []model.Book{
							{
								ID:              1,
								Title:           "Dune",
								TotalCopies:     3,
								AvailableCopies: 2,
								Authors:         []model.Author{},
								Genres:          []model.Genre{},
							},
						},
						Total:       1,
						Pages:       1,
						CurrentPage: 1,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"books":[{"id":1,"title":"Dune","description":null,"publication_year":null,"isbn":null,"total_copies":3,"available_copies":2,"authors":[],"genres":[],"status":"available","file_stub_metadata":null}],"total":1,"pages":1,"current_page":1}`,
			},
		},
		{
			name:   "defaults on bad paging",
			target: "/api/books?page=abc",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					ListBooks(context.Background(), 1, 10).
					Return(model.BookList{Books: []model.Book{}, Total: 0, Pages: 0, CurrentPage: 1}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"books":[],"total":0,"pages":0,"current_page":1}`,
			},
		},
		{
			name:   "err. internal",
			target: "/api/books",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					ListBooks(context.Background(), 1, 10).
					Return(model.BookList{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"success":false,"error":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		target       string
		mockBehavior func(m *mocks)
		response     response
	}{
		{
			name:   "ok with metadata",
			target: "/api/books/1",
			mockBehavior: func(m *mocks) {
				meta := `{"format":"pdf"}`
				m.catalog.EXPECT().
					GetBook(context.Background(), 1).
					Return(model.Book{
						ID:              1,
						Title:           "Dune",
						Metadata:        &meta,
						TotalCopies:     1,
						AvailableCopies: 0,
						Authors:         []model.Author{},
						Genres:          []model.Genre{},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"title":"Dune","description":null,"publication_year":null,"isbn":null,"total_copies":1,"available_copies":0,"authors":[],"genres":[],"status":"reserved","file_stub_metadata":{"format":"pdf"}}`,
			},
		},
		{
			name:   "err. not found",
			target: "/api/books/99",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					GetBook(context.Background(), 99).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"success":false,"error":"book not found"}`,
			},
		},
		{
			name:         "err. invalid id",
			target:       "/api/books/zero",
			mockBehavior: func(m *mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"invalid id"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		body         string
		mockBehavior func(m *mocks)
		response     response
	}{
		{
			name: "ok",
			body: `{"title":"Dune","total_copies":2,"available_copies":2,"author_ids":[1],"genre_ids":[3]}`,
			mockBehavior: func(m *mocks) {
				two := 2
				m.catalog.EXPECT().
					CreateBook(context.Background(), model.CreateBookRequest{
						Title:           "Dune",
						TotalCopies:     &two,
						AvailableCopies: &two,
						AuthorIDs:       []int{1},
						GenreIDs:        []int{3},
					}).
					Return(model.Book{
						ID:              1,
						Title:           "Dune",
						TotalCopies:     2,
						AvailableCopies: 2,
						Authors:         []model.Author{},
						Genres:          []model.Genre{},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"title":"Dune","description":null,"publication_year":null,"isbn":null,"total_copies":2,"available_copies":2,"authors":[],"genres":[],"status":"available","file_stub_metadata":null}`,
			},
		},
		{
			name:         "err. title required",
			body:         `{"total_copies":2}`,
			mockBehavior: func(m *mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"Key: 'CreateBookRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"}`,
			},
		},
		{
			name: "err. bad metadata",
			body: `{"title":"Dune","file_stub_metadata":{"a":1}}`,
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(model.Book{}, errs.ErrInvalidMetadata)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"file_stub_metadata must be valid JSON"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Parallel()
	m, e := newTestRouter(t)
	m.catalog.EXPECT().
		SearchBooks(context.Background(), "dune").
		Return(model.SearchResult{Books: []model.Book{}, Total: 0}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/books/search?q=dune", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"books":[],"total":0}`, strings.Trim(w.Body.String(), "\n"))
}
