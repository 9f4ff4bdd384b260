package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// DashboardService is the pipeline surface the HTTP layer renders.
type DashboardService interface {
	Options(ctx context.Context) (models.FilterOptions, error)
	Run(ctx context.Context, spec models.FilterSpec, persona models.Persona) (*models.DashboardView, error)
}

// Query parameter names.
const (
	ParamPersona    = "persona"
	ParamGroup      = "group"
	ParamRoomType   = "room_type"
	ParamPriceMin   = "price_min"
	ParamPriceMax   = "price_max"
	ParamMinReviews = "min_reviews"
)

// Server exposes the dashboard pipeline over HTTP.
type Server struct {
	dashboard DashboardService
	logger    *utils.Logger
	timeout   time.Duration
}

// NewServer creates a Server. A non-positive timeout disables the per-request deadline.
func NewServer(dashboard DashboardService, logger *utils.Logger, timeout time.Duration) *Server {
	return &Server{dashboard: dashboard, logger: logger, timeout: timeout}
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}
		r.Get("/options", s.options)
		r.Get("/dashboard", s.dashboardView)
		r.Get("/personas/{persona}", s.personaView)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, apiErr *APIError, cause error) {
	apiErr.RequestID = GetRequestID(r.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		s.logger.Error("[api] %s %s: %v", r.Method, r.URL.Path, cause)
	} else {
		s.logger.Warn("[api] %s %s: %v", r.Method, r.URL.Path, cause)
	}
	_ = render.Render(w, r, apiErr)
}

// GET /api/v1/options
func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboard.Options(r.Context())
	if err != nil {
		s.fail(w, r, fromError(err), err)
		return
	}
	render.JSON(w, r, opts)
}

// GET /api/v1/dashboard
func (s *Server) dashboardView(w http.ResponseWriter, r *http.Request) {
	view, ok := s.run(w, r, r.URL.Query().Get(ParamPersona))
	if !ok {
		return
	}
	render.JSON(w, r, view)
}

// GET /api/v1/personas/{persona}
func (s *Server) personaView(w http.ResponseWriter, r *http.Request) {
	view, ok := s.run(w, r, chi.URLParam(r, "persona"))
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"total":      view.Total,
		"selected":   view.Selected,
		"no_matches": view.NoMatches,
		"persona":    view.Persona,
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, rawPersona string) (*models.DashboardView, bool) {
	persona := models.PersonaHosts
	if rawPersona != "" {
		p, err := services.ParsePersona(rawPersona)
		if err != nil {
			s.fail(w, r, fromError(err), err)
			return nil, false
		}
		persona = p
	}

	opts, err := s.dashboard.Options(r.Context())
	if err != nil {
		s.fail(w, r, fromError(err), err)
		return nil, false
	}
	spec, apiErr := parseFilter(r.URL.Query(), opts)
	if apiErr != nil {
		s.fail(w, r, apiErr, apiErr)
		return nil, false
	}

	view, err := s.dashboard.Run(r.Context(), spec, persona)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			apiErr := newAPIError(http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", nil)
			s.fail(w, r, apiErr, err)
			return nil, false
		}
		s.fail(w, r, fromError(err), err)
		return nil, false
	}
	return view, true
}

// parseFilter builds a FilterSpec from query parameters. Absent parameters
// take the defaults from opts; a present but empty group or room_type selects
// nothing.
func parseFilter(q url.Values, opts models.FilterOptions) (models.FilterSpec, *APIError) {
	spec := opts.DefaultSpec()

	if values, ok := q[ParamGroup]; ok {
		spec.NeighbourhoodGroups = nonEmpty(values)
	}
	if values, ok := q[ParamRoomType]; ok {
		spec.RoomTypes = nonEmpty(values)
	}

	var err error
	if spec.PriceLo, err = floatParam(q, ParamPriceMin, spec.PriceLo); err != nil {
		return spec, invalidParameter(ParamPriceMin, err)
	}
	if spec.PriceHi, err = floatParam(q, ParamPriceMax, spec.PriceHi); err != nil {
		return spec, invalidParameter(ParamPriceMax, err)
	}
	if v := q.Get(ParamMinReviews); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, invalidParameter(ParamMinReviews, err)
		}
		spec.MinReviews = n
	}
	return spec, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}
