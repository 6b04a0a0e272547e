// Package server exposes generated reports over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
)

// ReportGenerator produces reports; campuscard.ReportService satisfies it
type ReportGenerator interface {
	Generate(ctx context.Context, params *campuscard.ReportParams) (*campuscard.Report, error)
}

// Options configures the server
type Options struct {
	// Location anchors default periods; nil means campuscard.DefaultLocation()
	Location *time.Location

	// Timeout bounds each request; zero means no extra bound
	Timeout time.Duration

	Logger campuscard.Logger

	// Now is used for default periods; nil means time.Now
	Now func() time.Time
}

type Server struct {
	reports ReportGenerator
	opts    Options
	router  chi.Router
}

// New builds the router
func New(reports ReportGenerator, opts *Options) *Server {
	s := &Server{reports: reports}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.Location == nil {
		s.opts.Location = campuscard.DefaultLocation()
	}
	if s.opts.Now == nil {
		s.opts.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.opts.Timeout > 0 {
		r.Use(middleware.Timeout(s.opts.Timeout))
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/reports", s.createReport)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// reportRequest is the body of POST /v1/reports. Credentials are required;
// missing dates default to the current calendar year.
type reportRequest struct {
	IDSerial    string          `json:"idserial"`
	ServiceHall string          `json:"servicehall"`
	Start       campuscard.Date `json:"start"`
	End         campuscard.Date `json:"end"`
	TradeType   string          `json:"tradeType,omitempty"`
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.sendError(w, r, http.StatusBadRequest, &errorResponse{
			Error: "request body must be a JSON object: " + err.Error(),
			Kind:  "validation",
		})
		return
	}

	if err := req.validate(); err != nil {
		s.sendError(w, r, http.StatusBadRequest, &errorResponse{
			Error:  err.Error(),
			Kind:   "validation",
			Fields: err.Errors,
		})
		return
	}

	params := s.params(&req)
	report, err := s.reports.Generate(r.Context(), params)
	if err != nil {
		status, kind := statusFor(err)
		s.logger().Error("report request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"kind", kind,
			"status", status,
			"error", err)
		resp := &errorResponse{Error: err.Error(), Kind: kind}
		var validationErrs *campuscard.ValidationErrors
		if errors.As(err, &validationErrs) {
			resp.Fields = validationErrs.Errors
		}
		s.sendError(w, r, status, resp)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, report)
}

// validate requires the caller's own credentials; the server never
// substitutes configured ones
func (req *reportRequest) validate() *campuscard.ValidationErrors {
	req.IDSerial = strings.TrimSpace(req.IDSerial)
	req.ServiceHall = strings.TrimSpace(req.ServiceHall)

	var errs []*campuscard.ValidationError
	if req.IDSerial == "" {
		errs = append(errs, &campuscard.ValidationError{Field: "idserial", Message: "identity is required"})
	}
	if req.ServiceHall == "" {
		errs = append(errs, &campuscard.ValidationError{Field: "servicehall", Message: "servicehall credential is required"})
	}
	if len(errs) > 0 {
		return &campuscard.ValidationErrors{Errors: errs}
	}
	return nil
}

func (s *Server) params(req *reportRequest) *campuscard.ReportParams {
	defaultStart, defaultEnd := campuscard.CalendarYear(s.opts.Now().In(s.opts.Location))

	params := &campuscard.ReportParams{
		Start:       defaultStart,
		End:         defaultEnd,
		IDSerial:    req.IDSerial,
		ServiceHall: req.ServiceHall,
		TradeType:   req.TradeType,
	}
	if !req.Start.IsZero() {
		params.Start = s.inLocation(req.Start)
	}
	if !req.End.IsZero() {
		params.End = s.inLocation(req.End)
	}
	return params
}

func (s *Server) inLocation(d campuscard.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.opts.Location)
}

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error     string                        `json:"error"`
	Kind      string                        `json:"kind"`
	Fields    []*campuscard.ValidationError `json:"fields,omitempty"`
	Timestamp int64                         `json:"timestamp"`
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, status int, resp *errorResponse) {
	resp.Timestamp = s.opts.Now().Unix()
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// statusFor maps the client's error taxonomy onto HTTP statuses
func statusFor(err error) (int, string) {
	kind := campuscard.ErrorKind(err)
	switch kind {
	case "validation":
		return http.StatusBadRequest, kind
	case "auth":
		return http.StatusUnauthorized, kind
	case "timeout":
		return http.StatusGatewayTimeout, kind
	case "transport", "protocol", "schema", "parse":
		return http.StatusBadGateway, kind
	}
	if errors.Is(err, context.Canceled) {
		return 499, "canceled"
	}
	return http.StatusInternalServerError, kind
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func (s *Server) logger() campuscard.Logger {
	if s.opts.Logger == nil {
		return nopLogger{}
	}
	return s.opts.Logger
}
