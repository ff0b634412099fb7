package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	schedules *service.ScheduleService
	slots     *service.SlotService
	archive   *service.ArchiveService
	clinics   *service.ClinicService
	loc       *time.Location
	validate  *validator.Validate
	log       *zap.Logger
}

// NewHandler loc задаёт часовой пояс, в котором разбираются даты из запросов
func NewHandler(
	schedules *service.ScheduleService,
	slots *service.SlotService,
	archive *service.ArchiveService,
	clinics *service.ClinicService,
	loc *time.Location,
	log *zap.Logger,
) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		schedules: schedules,
		slots:     slots,
		archive:   archive,
		clinics:   clinics,
		loc:       loc,
		validate:  newValidator(),
		log:       log,
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

func uuidQuery(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: query parameter %s must be a uuid", errBadRequest, name)
	}
	return id, nil
}

func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", errBadRequest)
	}
	return nil
}

// POST /api/v1/schedules/physicians/{physicianID}
func (h *Handler) generateSchedules(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidParam(r, "physicianID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	var body []newDayScheduleRequest
	if err := h.decode(r, &body); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if err := h.validate.Var(body, "required,min=1,dive"); err != nil {
		writeError(h.log, w, r, err)
		return
	}

	reqs := make([]model.NewDaySchedule, 0, len(body))
	for _, item := range body {
		req, err := item.toModel(h.loc)
		if err != nil {
			writeError(h.log, w, r, err)
			return
		}
		reqs = append(reqs, req)
	}

	results, err := h.schedules.GenerateSchedules(r.Context(), physicianID, reqs)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPublishResults(results))
}

// GET /api/v1/schedules/physicians/{physicianID}
func (h *Handler) privateSchedules(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidParam(r, "physicianID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	days, err := h.schedules.ListPrivate(r.Context(), physicianID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDaySchedules(days))
}

// GET /api/v1/schedules?physicianId=
func (h *Handler) publicSchedules(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidQuery(r, "physicianId")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	days, err := h.schedules.ListPublic(r.Context(), physicianID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDaySchedules(days))
}

// PATCH /api/v1/schedules/physicians/{physicianID}/days/{date}/inactivate
func (h *Handler) inactivateDay(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidParam(r, "physicianID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	date, err := model.ParseDate(chi.URLParam(r, "date"), h.loc)
	if err != nil {
		writeError(h.log, w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
		return
	}
	if _, err := h.schedules.InactivateDay(r.Context(), physicianID, date); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/schedules/physicians/{physicianID}/future
func (h *Handler) retireFutureSchedules(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidParam(r, "physicianID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	result, err := h.schedules.RetireFutureSchedules(r.Context(), physicianID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// PATCH /api/v1/appointments/{slotID}?accountId=
func (h *Handler) makeAppointment(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuidParam(r, "slotID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	accountID, err := uuidQuery(r, "accountId")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if err := h.slots.MakeAppointment(r.Context(), accountID, slotID); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/appointments/{slotID}?accountId=
func (h *Handler) releaseAppointment(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuidParam(r, "slotID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	accountID, err := uuidQuery(r, "accountId")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if err := h.slots.ReleaseAppointment(r.Context(), accountID, slotID); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/v1/timeslots/{slotID}/inactivate
func (h *Handler) inactivateSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuidParam(r, "slotID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if err := h.slots.Inactivate(r.Context(), slotID); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/patients/{patientID}/appointments
func (h *Handler) patientAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuidParam(r, "patientID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	items, err := h.slots.GetPatientAppointments(r.Context(), patientID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientAppointments(items))
}

// PUT /api/v1/clinics/{clinicID}/workdays/{weekday}
func (h *Handler) setWorkday(w http.ResponseWriter, r *http.Request) {
	clinicID, err := uuidParam(r, "clinicID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	weekday, err := model.ParseWeekday(chi.URLParam(r, "weekday"))
	if err != nil {
		writeError(h.log, w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var body workWindowRequest
	if err := h.decode(r, &body); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	// формат уже проверен тегом timeofday
	opening, _ := model.ParseTimeOfDay(body.Opening)
	closing, _ := model.ParseTimeOfDay(body.Closing)

	window, err := h.clinics.SetWorkWindow(r.Context(), clinicID, weekday, opening, closing)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkWindows([]*model.WorkWindow{window})[0])
}

// GET /api/v1/clinics/{clinicID}/workdays
func (h *Handler) listWorkdays(w http.ResponseWriter, r *http.Request) {
	clinicID, err := uuidParam(r, "clinicID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	windows, err := h.clinics.ListWorkWindows(r.Context(), clinicID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkWindows(windows))
}

// POST /api/v1/admin/archive
func (h *Handler) runArchive(w http.ResponseWriter, r *http.Request) {
	result, err := h.archive.ArchiveSchedules(r.Context())
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/v1/physicians/{physicianID}/archive
func (h *Handler) listArchive(w http.ResponseWriter, r *http.Request) {
	physicianID, err := uuidParam(r, "physicianID")
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	rows, err := h.archive.ListArchived(r.Context(), physicianID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArchived(rows))
}
