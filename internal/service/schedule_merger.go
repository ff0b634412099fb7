package service

import "github.com/Freeeeeet/clinic_scheduler/internal/model"

type TimeRange struct {
	Start model.TimeOfDay
	End   model.TimeOfDay
}

// MergePlan что нужно сделать с расписанием дня
type MergePlan struct {
	Outcome model.MergeOutcome
	Start   model.TimeOfDay
	End     model.TimeOfDay
	// Deltas диапазоны для генерации новых слотов, по возрастанию времени
	Deltas []TimeRange
}

// PlanMerge согласует запрошенное окно с существующим расписанием.
// Окно только расширяется: сужение и подмножество не меняют ничего,
// существующие слоты и брони не трогаются.
func PlanMerge(existing *model.DailySchedule, start, end model.TimeOfDay) MergePlan {
	if existing == nil {
		return MergePlan{
			Outcome: model.MergeCreated,
			Start:   start,
			End:     end,
			Deltas:  []TimeRange{{Start: start, End: end}},
		}
	}

	plan := MergePlan{
		Outcome: model.MergeUnchanged,
		Start:   existing.StartTime,
		End:     existing.EndTime,
	}

	if start.Before(existing.StartTime) {
		plan.Start = start
		plan.Deltas = append(plan.Deltas, TimeRange{Start: start, End: existing.StartTime})
	}
	if end.After(existing.EndTime) {
		plan.End = end
		plan.Deltas = append(plan.Deltas, TimeRange{Start: existing.EndTime, End: end})
	}
	if len(plan.Deltas) > 0 {
		plan.Outcome = model.MergeExtended
	}
	return plan
}
