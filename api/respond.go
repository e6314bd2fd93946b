package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
)

// Envelope is the only response shape the API writes.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type Responder struct {
	logger   zerolog.Logger
	notifier notify.Notifier
}

func NewResponder(logger zerolog.Logger, notifier notify.Notifier) Responder {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return Responder{logger: logger, notifier: notifier}
}

// WriteJSON writes v as is with the given status.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, v any) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteData wraps data in a success envelope.
func (r Responder) WriteData(w http.ResponseWriter, status int, data any, message string) {
	r.WriteJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// anything that is not an ApiErr is a bug: keep the detail server side
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		notify.Async(r.notifier, "Unexpected error in portfolio API", err.Error())
		r.WriteJSON(w, http.StatusInternalServerError, Envelope{
			Success: false,
			Message: "An unexpected error occurred",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
		if apiErr.StatusCode == http.StatusInternalServerError {
			notify.Async(r.notifier, "Internal error in portfolio API", apiErr.GetFullError())
		}
	} else {
		r.logger.Debug().Int("status", apiErr.StatusCode).Msg(apiErr.Error())
	}

	response := Envelope{Success: false, Message: apiErr.Error()}
	if apiErr.Field != "" {
		detail := apiErr.Details
		if detail == "" {
			detail = apiErr.Message()
		}
		response.Errors = map[string]string{apiErr.Field: detail}
	}

	r.WriteJSON(w, apiErr.StatusCode, response)
}
