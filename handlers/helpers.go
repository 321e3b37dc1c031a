package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/knockout-system/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // dst is not a non-nil pointer
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusNotFound, err.Error())
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, param string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, param))
	if id == "" {
		return "", fmt.Errorf("missing %s in URL path", param)
	}
	return id, nil
}

// mapServiceErrorToHTTP turns a service error into the matching HTTP response.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// not found
	case errors.Is(err, services.ErrClubNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNoEvents),
		errors.Is(err, services.ErrNoPendingMatches),
		errors.Is(err, services.ErrInvalidMatchCode):
		notFoundResponse(w, r, err)

	// conflicts
	case errors.Is(err, services.ErrClubNameConflict),
		errors.Is(err, services.ErrEventNameConflict),
		errors.Is(err, services.ErrPlayerDuplicateInEvent),
		errors.Is(err, services.ErrFixturesAlreadyGenerated),
		errors.Is(err, services.ErrRoundAlreadyAdvanced):
		conflictResponse(w, r, err.Error())

	// invalid input and bracket rules
	case errors.Is(err, services.ErrClubNameRequired),
		errors.Is(err, services.ErrEventNameRequired),
		errors.Is(err, services.ErrUnsupportedEventType),
		errors.Is(err, services.ErrInvalidMinRest),
		errors.Is(err, services.ErrPlayerNameRequired),
		errors.Is(err, services.ErrPlayerPhoneRequired),
		errors.Is(err, services.ErrInvalidPlayerAge),
		errors.Is(err, services.ErrInvalidCSV),
		errors.Is(err, services.ErrInvalidScheduleInput),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrUmpireRequired),
		errors.Is(err, services.ErrInsufficientPlayers),
		errors.Is(err, services.ErrMatchIsBye),
		errors.Is(err, services.ErrMatchCodeExpired):
		badRequestResponse(w, r, err)

	// access
	case errors.Is(err, services.ErrUmpireTokenMismatch):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrStoreNotConfigured):
		serviceUnavailableResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
