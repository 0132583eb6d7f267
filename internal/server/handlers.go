package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oakwood-commons/propdash/internal/document"
	"github.com/oakwood-commons/propdash/internal/search"
	"github.com/oakwood-commons/propdash/internal/source"
	"github.com/oakwood-commons/propdash/internal/transform"
)

// errBadExpression marks a CEL expression the caller got wrong.
var errBadExpression = errors.New("invalid expression")

type reportRequest struct {
	query  source.Query
	filter string
	expr   string
	demo   bool
}

func parseReportRequest(r *http.Request, demo bool) (reportRequest, error) {
	params := r.URL.Query()
	req := reportRequest{
		filter: strings.TrimSpace(params.Get("filter")),
		expr:   strings.TrimSpace(params.Get("expr")),
		demo:   demo,
	}
	if demo {
		return req, nil
	}
	q, err := source.ParseQuery(params.Get("q"), params.Get("lat"), params.Get("lng"))
	req.query = q
	return req, err
}

// build fetches the document, applies the expression if any and builds the
// unfiltered report.
func (s *Server) build(ctx context.Context, req reportRequest) (transform.Report, error) {
	src := s.source
	if req.demo {
		src = s.demo
	}
	doc, err := src.Fetch(ctx, req.query)
	if err != nil {
		return transform.Report{}, err
	}
	if req.expr != "" {
		if doc, err = s.selector.Select(req.expr, doc); err != nil {
			return transform.Report{}, errors.Join(errBadExpression, err)
		}
	}
	return s.builder.Build(doc), nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r, false)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, describeRequestError(err))
		return
	}
	s.serveReport(w, r, req)
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	req, _ := parseReportRequest(r, true)
	s.serveReport(w, r, req)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, req reportRequest) {
	report, err := s.build(r.Context(), req)
	if err != nil {
		s.log.Error(err, "report failed", "query", req.query.String(), "demo", req.demo)
		s.respondError(w, statusFor(err), describe(err))
		return
	}
	s.respondJSON(w, http.StatusOK, search.Filter(report, req.filter))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(err, "encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// describeRequestError explains a malformed query.
func describeRequestError(err error) string {
	if errors.Is(err, source.ErrEmptyQuery) {
		return source.Describe(err)
	}
	return err.Error()
}

// describe extends source.Describe with expression errors.
func describe(err error) string {
	if errors.Is(err, errBadExpression) {
		return "The expression could not be evaluated: " + strings.TrimPrefix(err.Error(), errBadExpression.Error()+"\n")
	}
	return source.Describe(err)
}

func statusFor(err error) int {
	var statusErr *source.StatusError
	switch {
	case errors.Is(err, errBadExpression),
		errors.Is(err, source.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client closed request
		return 499
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, document.ErrInvalidJSON), errors.Is(err, document.ErrEmptyInput):
		return http.StatusBadGateway
	case source.IsRetryable(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
