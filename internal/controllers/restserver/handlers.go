package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/report"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// invertRequest is the body of POST /invert
type invertRequest struct {
	Sample types.SpectralSample `json:"sample"`
	Mode   string               `json:"mode,omitempty"`
	Params *saber.ParameterSpec `json:"params,omitempty"`
	MCMC   saber.MCMCOptions    `json:"mcmc,omitempty"`
}

// invertResponse carries the inversion result plus its rendered forms
type invertResponse struct {
	Result  *saber.Result   `json:"result"`
	Summary string          `json:"summary"`
	Plot    report.PlotSpec `json:"plot"`
}

// PostInvert runs a synchronous inversion for a posted spectral sample
func (h *Handlers) PostInvert(w http.ResponseWriter, req *http.Request) {
	var body invertRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}

	mode := saber.ModeGradient
	if body.Mode != "" {
		mode = saber.Mode(body.Mode)
	}

	params := saber.DefaultSpec()
	if body.Params != nil {
		params = *body.Params
	}

	sreq := &saber.Request{
		Sample: body.Sample,
		Mode:   mode,
		Params: params,
		MCMC:   body.MCMC,
	}

	result, err := h.controller.Backend.Invert(req.Context(), sreq)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, saber.ErrEnvironment) {
			status = http.StatusServiceUnavailable
		}
		h.formatter.WriteError(w, req, status, err.Error())
		return
	}

	methodLabel := body.Sample.Method
	if methodLabel == "" {
		methodLabel = "unspecified"
	}

	resp := invertResponse{
		Result:  result,
		Summary: report.Summary(result, methodLabel),
		Plot:    report.Plot(result, methodLabel),
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing inversion response: %v", err)
	}
}

// GetLatest returns the most recent stored retrieval
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	var retrieval types.Retrieval
	err := h.controller.DB.Order("time DESC").First(&retrieval).Error
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no retrievals stored")
		return
	}

	if err := h.formatter.WriteResponse(w, req, retrieval, nil); err != nil {
		log.Errorf("error writing latest retrieval: %v", err)
	}
}

// GetRetrievalSpan returns retrievals within a time span like "24h" or "7d"
func (h *Handlers) GetRetrievalSpan(w http.ResponseWriter, req *http.Request) {
	spanText := mux.Vars(req)["span"]

	span, err := parseSpan(spanText)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	var retrievals []types.Retrieval
	cutoff := time.Now().Add(-span)
	err = h.controller.DB.Where("time > ?", cutoff).Order("time ASC").Find(&retrievals).Error
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "could not query retrievals")
		return
	}

	if err := h.formatter.WriteResponse(w, req, retrievals, nil); err != nil {
		log.Errorf("error writing retrieval span: %v", err)
	}
}

// GetHealth reports basic server health
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	health := map[string]any{
		"status":     "ok",
		"db_enabled": h.controller.DBEnabled,
		"timestamp":  time.Now().UTC(),
	}
	if err := h.formatter.WriteResponse(w, req, health, nil); err != nil {
		log.Errorf("error writing health response: %v", err)
	}
}

// parseSpan accepts Go durations plus a "d" suffix for days
func parseSpan(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days, err := time.ParseDuration(s[:len(s)-1] + "h")
		if err != nil {
			return 0, errors.New("invalid span: " + s)
		}
		return days * 24, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.New("invalid span: " + s)
	}
	return d, nil
}
