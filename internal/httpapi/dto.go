package httpapi

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// newValidator validator с тегом timeofday для "HH:MM" и "HH:MM:SS"
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

type newDayScheduleRequest struct {
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime        string `json:"startTime" validate:"required,timeofday"`
	EndTime          string `json:"endTime" validate:"required,timeofday"`
	TimeSlotInterval int    `json:"timeSlotInterval" validate:"required,min=15,max=60"`
}

func (r newDayScheduleRequest) toModel(loc *time.Location) (model.NewDaySchedule, error) {
	date, err := model.ParseDate(r.Date, loc)
	if err != nil {
		return model.NewDaySchedule{}, fmt.Errorf("%w: date %q", errBadRequest, r.Date)
	}
	start, err := model.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return model.NewDaySchedule{}, fmt.Errorf("%w: startTime %q", errBadRequest, r.StartTime)
	}
	end, err := model.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return model.NewDaySchedule{}, fmt.Errorf("%w: endTime %q", errBadRequest, r.EndTime)
	}
	return model.NewDaySchedule{
		Date:             date,
		StartTime:        start,
		EndTime:          end,
		TimeSlotInterval: r.TimeSlotInterval,
	}, nil
}

type workWindowRequest struct {
	Opening string `json:"opening" validate:"required,timeofday"`
	Closing string `json:"closing" validate:"required,timeofday"`
}

type publishResultResponse struct {
	ScheduleID   uuid.UUID          `json:"scheduleId"`
	Date         string             `json:"date"`
	Outcome      model.MergeOutcome `json:"outcome"`
	SlotsCreated int                `json:"slotsCreated"`
	StartTime    model.TimeOfDay    `json:"startTime"`
	EndTime      model.TimeOfDay    `json:"endTime"`
}

func toPublishResults(results []model.PublishResult) []publishResultResponse {
	out := make([]publishResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, publishResultResponse{
			ScheduleID:   r.ScheduleID,
			Date:         r.Date.Format(model.DateLayout),
			Outcome:      r.Outcome,
			SlotsCreated: r.SlotsCreated,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
		})
	}
	return out
}

type appointmentResponse struct {
	ID          uuid.UUID          `json:"id"`
	StartTime   model.TimeOfDay    `json:"startTime"`
	Duration    int                `json:"durationInMinutes"`
	Status      model.SlotStatus   `json:"status"`
	PatientInfo *model.PatientInfo `json:"patientInfo,omitempty"`
}

type dayScheduleResponse struct {
	ID        uuid.UUID             `json:"id"`
	Date      string                `json:"date"`
	StartTime model.TimeOfDay       `json:"startTime"`
	EndTime   model.TimeOfDay       `json:"endTime"`
	Schedule  []appointmentResponse `json:"schedule"`
}

func toDaySchedules(days []model.PhysicianDaySchedule) []dayScheduleResponse {
	out := make([]dayScheduleResponse, 0, len(days))
	for _, d := range days {
		day := dayScheduleResponse{
			ID:        d.ID,
			Date:      d.Date.Format(model.DateLayout),
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Schedule:  make([]appointmentResponse, 0, len(d.Schedule)),
		}
		for _, a := range d.Schedule {
			day.Schedule = append(day.Schedule, appointmentResponse{
				ID:          a.ID,
				StartTime:   a.StartTime,
				Duration:    a.Duration,
				Status:      a.Status,
				PatientInfo: a.Patient,
			})
		}
		out = append(out, day)
	}
	return out
}

type patientAppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	AppointmentDate string          `json:"appointmentDate"`
	StartTime       model.TimeOfDay `json:"startTime"`
	PhysicianID     uuid.UUID       `json:"physicianId"`
	Physician       string          `json:"physician"`
	Address         string          `json:"address"`
}

func toPatientAppointments(items []model.PatientAppointment) []patientAppointmentResponse {
	out := make([]patientAppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, patientAppointmentResponse{
			ID:              a.ID,
			AppointmentDate: a.AppointmentDate.Format(model.DateLayout),
			StartTime:       a.StartTime,
			PhysicianID:     a.PhysicianID,
			Physician:       a.Physician,
			Address:         a.Address,
		})
	}
	return out
}

type workWindowResponse struct {
	Weekday model.Weekday   `json:"weekday"`
	Opening model.TimeOfDay `json:"opening"`
	Closing model.TimeOfDay `json:"closing"`
}

func toWorkWindows(items []*model.WorkWindow) []workWindowResponse {
	out := make([]workWindowResponse, 0, len(items))
	for _, w := range items {
		out = append(out, workWindowResponse{Weekday: w.Weekday, Opening: w.Opening, Closing: w.Closing})
	}
	return out
}

type archivedResponse struct {
	ID                uuid.UUID        `json:"id"`
	Date              string           `json:"date"`
	Status            model.SlotStatus `json:"status"`
	PatientID         *uuid.UUID       `json:"patientId,omitempty"`
	StartTime         model.TimeOfDay  `json:"startTime"`
	DurationInMinutes int              `json:"durationInMinutes"`
}

func toArchived(rows []*model.ArchivedSchedule) []archivedResponse {
	out := make([]archivedResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, archivedResponse{
			ID:                a.ID,
			Date:              a.Date.Format(model.DateLayout),
			Status:            a.Status,
			PatientID:         a.PatientID,
			StartTime:         a.StartTime,
			DurationInMinutes: a.DurationMinutes,
		})
	}
	return out
}
