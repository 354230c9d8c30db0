package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/camden-git/personasapi/media"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

const defaultRequestTimeout = 30 * time.Second

type RouterConfig struct {
	Personas           *PersonaHandler
	Store              media.Store
	DB                 *gorm.DB
	Metrics            *Metrics
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
}

func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	requestTimeout := rc.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	corsOptions := cors.Options{
		AllowedOrigins:   rc.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.New(corsOptions).Handler)
	if rc.Metrics != nil {
		r.Use(rc.Metrics.Middleware)
	}

	r.Route("/personas", func(r chi.Router) {
		r.Get("/", rc.Personas.ListPersonas)
		r.Post("/", rc.Personas.CreatePersona)
		r.Route("/{persona_id}", func(r chi.Router) {
			r.Get("/", rc.Personas.GetPersona)
			r.Put("/", rc.Personas.ReplacePersona)
			r.Patch("/", rc.Personas.PatchPersona)
			r.Delete("/", rc.Personas.DeletePersona)
		})
	})

	if rc.Store != nil {
		r.Get(fmt.Sprintf("/%s/*", media.PublicPrefix), AssetServer(rc.Store))
		log.Printf("Registered asset server at /%s/*", media.PublicPrefix)
	}
	if rc.DB != nil {
		r.Get("/healthz", HealthHandler(rc.DB))
	}
	if rc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rc.Metrics.Handler())
	}

	return r
}
