package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// errBadRequest некорректный JSON или параметр пути/запроса
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response{Success: code < http.StatusBadRequest, Data: data})
}

// writeError переводит ошибку сервиса в HTTP-статус; детали 500 не раскрываются клиенту
func writeError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	message := "something went wrong, please try again later"
	var details any

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		code = http.StatusUnprocessableEntity
		message = "validation failed"
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		details = fields
	case errors.Is(err, errBadRequest):
		code, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrSlotNotFound),
		errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrPatientNotFound),
		errors.Is(err, service.ErrPhysicianNotFound),
		errors.Is(err, service.ErrClinicNotFound):
		code, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrScheduleConflict):
		code, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrNoMatchingWorkWindow),
		errors.Is(err, service.ErrOutsideWorkingHours),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidInterval):
		code, message = http.StatusUnprocessableEntity, err.Error()
	default:
		log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response{Success: false, Message: message, Errors: details})
}
