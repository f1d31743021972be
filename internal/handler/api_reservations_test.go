package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

func TestHandler_CreateReservation(t *testing.T) {
	t.Parallel()
	reserved := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	expires := reserved.AddDate(0, 0, 14)

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
			body: `{"book_id":1,"user_id":2}`,
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Create(context.Background(), 1, 2).
					Return(model.Reservation{
						ID:              5,
						BookID:          1,
						UserID:          2,
						ReservationDate: reserved,
						ExpiryDate:      expires,
						Status:          model.StatusActive,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":5,"book_id":1,"user_id":2,"reservation_date":"2026-08-01T10:00:00Z","expiry_date":"2026-08-15T10:00:00Z","return_date":null,"status":"active"}`,
			},
		},
		{
			name: "err. book unavailable",
			body: `{"book_id":1,"user_id":2}`,
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Create(context.Background(), 1, 2).
					Return(model.Reservation{}, errs.ErrBookUnavailable)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"book unavailable"}`,
			},
		},
		{
			name: "err. duplicate reservation",
			body: `{"book_id":1,"user_id":2}`,
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Create(context.Background(), 1, 2).
					Return(model.Reservation{}, errs.ErrDuplicateReservation)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"duplicate reservation"}`,
			},
		},
		{
			name: "err. book not found",
			body: `{"book_id":99,"user_id":2}`,
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Create(context.Background(), 99, 2).
					Return(model.Reservation{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"success":false,"error":"book not found"}`,
			},
		},
		{
			name:         "err. missing ids",
			body:         `{}`,
			mockBehavior: func(m *mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"Key: 'CreateReservationRequest.BookID' Error:Field validation for 'BookID' failed on the 'required' tag\nKey: 'CreateReservationRequest.UserID' Error:Field validation for 'UserID' failed on the 'required' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CancelReservation(t *testing.T) {
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
			name:   "ok",
			target: "/api/reservations/5",
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Cancel(context.Background(), 5, service.Actor{Admin: true}).
					Return(model.Reservation{ID: 5, Status: model.StatusCancelled}, nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: "",
			},
		},
		{
			name:   "err. already finished",
			target: "/api/reservations/5",
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Cancel(context.Background(), 5, service.Actor{Admin: true}).
					Return(model.Reservation{}, errs.ErrReservationFinished)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"error":"already finished"}`,
			},
		},
		{
			name:   "err. not found",
			target: "/api/reservations/99",
			mockBehavior: func(m *mocks) {
				m.reservation.EXPECT().
					Cancel(context.Background(), 99, service.Actor{Admin: true}).
					Return(model.Reservation{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"success":false,"error":"reservation not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, e := newTestRouter(t)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodDelete, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnReservation(t *testing.T) {
	t.Parallel()
	returned := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	m, e := newTestRouter(t)
	m.reservation.EXPECT().
		Complete(context.Background(), 5, service.Actor{Admin: true}).
		Return(model.Reservation{
			ID:              5,
			BookID:          1,
			UserID:          2,
			ReservationDate: returned.AddDate(0, 0, -3),
			ExpiryDate:      returned.AddDate(0, 0, 11),
			ReturnDate:      &returned,
			Status:          model.StatusCompleted,
		}, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/reservations/5/return", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"id":5,"book_id":1,"user_id":2,"reservation_date":"2026-08-07T09:00:00Z","expiry_date":"2026-08-21T09:00:00Z","return_date":"2026-08-10T09:00:00Z","status":"completed"}`,
		strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_UserReservations(t *testing.T) {
	t.Parallel()
	m, e := newTestRouter(t)
	m.reservation.EXPECT().
		ListForUser(context.Background(), 2).
		Return([]model.Reservation{}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/reservations/user/2", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `[]`, strings.Trim(w.Body.String(), "\n"))
}
