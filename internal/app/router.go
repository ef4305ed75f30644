package app

import (
	"net/http"

	_ "github.com/KarpovAlexandrGo/task-tracker/docs" // swagger docs
	"github.com/KarpovAlexandrGo/task-tracker/internal/config"
	httpcontroller "github.com/KarpovAlexandrGo/task-tracker/internal/controller/http"
	"github.com/KarpovAlexandrGo/task-tracker/internal/metrics"
	"github.com/KarpovAlexandrGo/task-tracker/internal/usecase"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func setupRouter(cfg config.Config, taskUC usecase.TaskUseCase) *chi.Mux {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&httpcontroller.LogFormatter{Logger: logger.Log}),
	)
	// Metrics wrap the recoverer: recovered panics count as 500s.
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware)
	}
	router.Use(
		httpcontroller.Recoverer,
		middleware.Heartbeat("/health"),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	router.Route("/api/v1", httpcontroller.NewTaskHandler(taskUC).RegisterRoutes)

	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	if cfg.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	if cfg.Swagger.Enabled {
		router.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	return router
}
