package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridpath/pkg/buildinfo"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/pipeline"
)

// jsonOverhead is the room a JSON request gets on top of the map size limit
// for escaping and the other fields.
const jsonOverhead = 64 << 10

// contentTypes maps each format to the Content-Type it is served with.
var contentTypes = map[string]string{
	pipeline.FormatText:  "text/plain; charset=utf-8",
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatGraph: "application/json",
	pipeline.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:   "image/svg+xml",
}

// solveRequest is the JSON request body of POST /v1/solve.
type solveRequest struct {
	Map     string   `json:"map"`
	Formats []string `json:"formats,omitempty"`
	Costs   bool     `json:"costs,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`
}

// solveResponse is the JSON response of POST /v1/solve. Artifacts are keyed
// by format; the json format is already the summary and is not repeated.
type solveResponse struct {
	pipeline.Summary
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		s.solveJSON(w, r)
		return
	}
	s.solveText(w, r)
}

// solveText handles a raw map body and answers with one artifact.
func (s *Server) solveText(w http.ResponseWriter, r *http.Request) {
	formats := pipeline.ParseFormats(r.URL.Query().Get("format"))
	switch len(formats) {
	case 0:
		formats = []string{pipeline.DefaultFormat}
	case 1:
	default:
		s.writeError(w, r, gerrors.New(gerrors.ErrCodeInvalidFormat,
			"plain-text requests take a single format; send JSON for several"))
		return
	}

	body, err := s.readBody(w, r, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.solve(r, string(body), pipeline.Options{
		Formats: formats,
		Costs:   r.URL.Query().Has("costs"),
		Refresh: r.URL.Query().Has("refresh"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// solveJSON handles a JSON request and answers with the summary plus the
// requested artifacts.
func (s *Server) solveJSON(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r, jsonOverhead)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req solveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	result, err := s.solve(r, req.Map, pipeline.Options{
		Formats: req.Formats,
		Costs:   req.Costs,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := solveResponse{
		Summary: result.Summary,
		Cached:  result.CacheInfo.SolveHit,
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string, len(result.Artifacts))
		}
		resp.Artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

// solve validates the map text and runs the pipeline.
func (s *Server) solve(r *http.Request, text string, opts pipeline.Options) (*pipeline.Result, error) {
	if err := gerrors.ValidateMapText(text, s.cfg.MaxMapBytes); err != nil {
		return nil, err
	}
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))
	return s.runner.Execute(r.Context(), text, opts)
}

// readBody reads the request body, allowing MaxMapBytes plus overhead bytes.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, overhead int) ([]byte, error) {
	body := io.Reader(r.Body)
	if s.cfg.MaxMapBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxMapBytes+overhead))
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, gerrors.New(gerrors.ErrCodeMapTooLarge, "map too large (max %d bytes)", s.cfg.MaxMapBytes)
		}
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// writeError answers with a JSON error body. Internal errors are logged and
// their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := gerrors.GetCode(err)
	if code == "" {
		code = gerrors.ErrCodeInternal
	}
	status := gerrors.HTTPStatus(code)
	message := gerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("solve failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		message = strings.ToLower(http.StatusText(status))
	}

	writeJSON(w, status, errorBody{
		Code:      string(code),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
