package http

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	middleware "taskmaster.com/taskmaster/internal/http/middlewares"
	"taskmaster.com/taskmaster/internal/limiter"
)

type ServerOptions struct {
	Development      bool
	CORSAllowOrigins []string
	TrustedProxies   []*net.IPNet
	Limiter          limiter.Limiter
	Logger           *logrus.Logger
}

// NewServer builds the echo instance with the global middleware chain and
// every route registered.
func NewServer(h *Handler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(opts.Logger, opts.Development)
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderAccept},
	}))
	if opts.Limiter != nil {
		e.Use(middleware.RateLimiter(opts.Limiter, opts.Logger))
	}

	Register(e, h, middleware.Authenticate(h.authService))
	return e
}

// ipExtractor uses the socket peer address unless trusted proxies are
// configured, in which case X-Forwarded-For is honored only through them.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range trusted {
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
