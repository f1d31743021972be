package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bookhaven/library-app/internal/adapter/captcha"
	"github.com/bookhaven/library-app/internal/adapter/openlibrary"
	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/pkg/auth"
	mw "github.com/bookhaven/library-app/pkg/middleware"
	"github.com/bookhaven/library-app/pkg/validate"
	_ "github.com/bookhaven/library-app/swagger"
)

type Handler struct {
	catalogSvc     CatalogService
	userSvc        UserService
	reservationSvc ReservationService
	captcha        *captcha.Verifier
	openLibrary    *openlibrary.Client
	sessions       *auth.Manager
	log            *zap.Logger
}

func New(
	catalogSvc CatalogService,
	userSvc UserService,
	reservationSvc ReservationService,
	captchaVerifier *captcha.Verifier,
	openLibrary *openlibrary.Client,
	sessions *auth.Manager,
	log *zap.Logger,
) *Handler {
	return &Handler{
		catalogSvc:     catalogSvc,
		userSvc:        userSvc,
		reservationSvc: reservationSvc,
		captcha:        captchaVerifier,
		openLibrary:    openLibrary,
		sessions:       sessions,
		log:            log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	e.Validator = validate.NewCustomValidator()
	e.Renderer = newRenderer()
	e.HTTPErrorHandler = h.errorHandler

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig()),
		middleware.RequestID(),
		mw.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.CreateBook)
	api.GET("/books/search", h.SearchBooks)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)
	api.GET("/books/:id/web-versions", h.BookWebVersions)

	api.GET("/authors", h.ListAuthors)
	api.POST("/authors", h.CreateAuthor)
	api.GET("/authors/:id", h.GetAuthor)
	api.PUT("/authors/:id", h.UpdateAuthor)
	api.DELETE("/authors/:id", h.DeleteAuthor)

	api.GET("/genres", h.ListGenres)
	api.POST("/genres", h.CreateGenre)
	api.GET("/genres/:id", h.GetGenre)
	api.PUT("/genres/:id", h.UpdateGenre)
	api.DELETE("/genres/:id", h.DeleteGenre)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations/user/:id", h.UserReservations)
	api.DELETE("/reservations/:id", h.CancelReservation)
	api.POST("/reservations/:id/return", h.ReturnReservation)

	api.GET("/users", h.ListUsers)
	api.POST("/users/register", h.RegisterUser)
	api.POST("/users/login", h.LoginUser)

	api.GET("/web-versions/search", h.SearchWebVersions)
	api.GET("/web-versions/sort-options", h.WebVersionSortOptions)
	api.GET("/web-versions/status", h.WebVersionStatus)
	api.GET("/gateway/status", h.GatewayStatus)
	api.GET("/gateway/test", h.GatewayTest)

	web := e.Group("", mw.NewRateLimiter(baseRPS), h.withSession)
	web.GET("/", h.IndexPage)
	web.GET("/register", h.RegisterPage)
	web.POST("/register", h.RegisterForm)
	web.GET("/login", h.LoginPage)
	web.POST("/login", h.LoginForm)
	web.POST("/logout", h.Logout)
	web.GET("/books", h.BooksPage)
	web.GET("/books/:id", h.BookPage)

	user := web.Group("", h.requireUser)
	user.GET("/profile", h.ProfilePage)
	user.POST("/books/:id/reserve", h.ReserveForm)
	user.POST("/reservations/:id/cancel", h.CancelForm)
	user.POST("/reservations/:id/return", h.ReturnForm)

	admin := e.Group("/admin", mw.NewRateLimiter(baseRPS), h.withSession, h.requireAdmin)
	admin.GET("", h.AdminDashboard)
	admin.GET("/books", h.AdminBooks)
	admin.GET("/books/new", h.AdminBookNew)
	admin.POST("/books", h.AdminBookCreate)
	admin.GET("/books/:id", h.AdminBookEdit)
	admin.POST("/books/:id", h.AdminBookUpdate)
	admin.POST("/books/:id/delete", h.AdminBookDelete)
	admin.GET("/authors", h.AdminAuthors)
	admin.POST("/authors", h.AdminAuthorCreate)
	admin.POST("/authors/:id", h.AdminAuthorUpdate)
	admin.POST("/authors/:id/delete", h.AdminAuthorDelete)
	admin.GET("/genres", h.AdminGenres)
	admin.POST("/genres", h.AdminGenreCreate)
	admin.POST("/genres/:id", h.AdminGenreUpdate)
	admin.POST("/genres/:id/delete", h.AdminGenreDelete)
	admin.GET("/users", h.AdminUsers)
	admin.POST("/users/:id", h.AdminUserUpdate)
	admin.GET("/reservations", h.AdminReservations)
	admin.POST("/reservations/:id/status", h.AdminReservationStatus)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// errorHandler keeps the JSON error envelope uniform across the API and
// falls back to echo's default page for the web surface.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	if isAPIRequest(c) {
		_ = c.JSON(code, errs.ErrorResponse{Success: false, Error: msg})
		return
	}
	_ = c.HTML(code, "<h1>"+http.StatusText(code)+"</h1>")
}

func isAPIRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return len(p) >= 5 && p[:5] == "/api/" || p == "/api"
}
