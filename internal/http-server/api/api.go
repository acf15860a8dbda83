package api

import (
	"SevaFlow/internal/config"
	"SevaFlow/internal/http-server/handlers/errors"
	"SevaFlow/internal/http-server/handlers/flows"
	"SevaFlow/internal/http-server/handlers/key"
	"SevaFlow/internal/http-server/handlers/webhook"
	"SevaFlow/internal/http-server/middleware/authenticate"
	"SevaFlow/internal/http-server/middleware/timeout"
	"SevaFlow/internal/lib/sl"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	webhook.Core
	flows.Core
	key.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Handle("/metrics", promhttp.Handler())

	// Webhook routes authenticate per delivery via the tenant's HMAC
	// signature, not a Bearer key.
	router.Route("/webhook", func(r chi.Router) {
		r.Get("/", webhook.Verify(log, conf.WhatsApp.VerifyToken))
		r.Post("/", webhook.Receive(log, handler))
	})

	router.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(authenticate.New(log, handler))

		r.Route("/api/v1", func(v1 chi.Router) {
			v1.Route("/flows", func(r chi.Router) {
				r.Get("/", flows.ListFlows(log, handler))
				r.Post("/", flows.CreateFlow(log, handler))
				r.Get("/{id}", flows.GetFlow(log, handler))
				r.Put("/{id}", flows.UpdateFlow(log, handler))
				r.Delete("/{id}", flows.DeleteFlow(log, handler))
				r.Post("/{id}/activate", flows.ActivateFlow(log, handler))
			})
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
