package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
)

func TestHandler_RegisterUser(t *testing.T) {
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
			body: `{"email":"ann@example.com","password":"secret1","first_name":"Ann","last_name":"Lee"}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().
					Register(context.Background(), model.RegisterRequest{
						Email:     "ann@example.com",
						Password:  "secret1",
						FirstName: "Ann",
						LastName:  "Lee",
					}).
					Return(model.User{
						ID:               7,
						Email:            "ann@example.com",
						FirstName:        "Ann",
						LastName:         "Lee",
						Role:             model.RoleReader,
						MembershipStatus: "active",
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":7,"email":"ann@example.com","first_name":"Ann","last_name":"Lee","role":"reader","membership_status":"active","join_date":null}`,
			},
		},
		{
			name: "err. email exists",
			body: `{"email":"ann@example.com","password":"secret1","first_name":"Ann","last_name":"Lee"}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().
					Register(context.Background(), model.RegisterRequest{
						Email:     "ann@example.com",
						Password:  "secret1",
						FirstName: "Ann",
						LastName:  "Lee",
					}).
					Return(model.User{}, errs.ErrEmailExists)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"email exists"}`,
			},
		},
		{
			name:         "err. short password",
			body:         `{"email":"ann@example.com","password":"abc","first_name":"Ann","last_name":"Lee"}`,
			mockBehavior: func(m *mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_LoginUser(t *testing.T) {
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
			name: "ok. lookup by email only",
			body: `{"email":"ann@example.com","password":"whatever"}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().
					LookupByEmail(context.Background(), "ann@example.com").
					Return(model.User{
						ID:               7,
						Email:            "ann@example.com",
						FirstName:        "Ann",
						LastName:         "Lee",
						Role:             model.RoleReader,
						MembershipStatus: "active",
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":7,"email":"ann@example.com","first_name":"Ann","last_name":"Lee","role":"reader","membership_status":"active","join_date":null}`,
			},
		},
		{
			name: "err. unknown email",
			body: `{"email":"ghost@example.com","password":"whatever"}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().
					LookupByEmail(context.Background(), "ghost@example.com").
					Return(model.User{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"success":false,"error":"Invalid credentials"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_WebVersionStatus_Unconfigured(t *testing.T) {
	t.Parallel()
	_, e := newTestRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/api/web-versions/status", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"service_available":false`)
	require.Contains(t, w.Body.String(), `"success":false`)
}
