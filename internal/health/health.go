package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// PingTimeout bounds the store check of the readiness endpoint.
const PingTimeout = 2 * time.Second

// A Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// An IOC is an Iversion Of Control pattern used to init the health package.
type IOC struct {
	Version  string
	Database Pinger
	Logger   logrus.FieldLogger
}

// EchoEngine instantiates the liveness web server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		// Platform health probes hit / every few seconds.
		Skipper: func(c echo.Context) bool { return c.Path() == "/" },
		Format:  "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.HTTPErrorHandler = HTTPErrorHandler(ctrl.Logger)

	router := engine.Group("")

	router.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok\n")
	})

	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	router.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), PingTimeout)
		defer cancel()

		if err := ctrl.Database.Ping(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").SetInternal(err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status": "ready",
		})
	})

	return engine
}

// HTTPErrorHandler formats rendered errors.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok && he.Code < http.StatusInternalServerError {
			_ = c.JSON(he.Code, echo.Map{
				"error": echo.Map{
					"message": he.Message,
				},
			})
			return
		}

		status := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}

		id := uuid.Must(uuid.NewV4()).String()
		log.WithError(err).WithField("error_id", id).Error("request failed")

		_ = c.JSON(status, echo.Map{
			"error": echo.Map{
				"message": fmt.Sprintf("Unexpected error (id: %s)", id),
			},
		})
	}
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo, log logrus.FieldLogger) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		log.Debugf("route %6s %s", route.Method, route.Path)
	}
}
