package models

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
)

// Request модели

// TimeIntervalInput интервал рабочего времени до нормализации.
// Start и End принимаются и в 24-часовом ("09:00"), и в 12-часовом ("9:00 AM") формате.
type TimeIntervalInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BreakRuleInput перерыв до нормализации.
// Days принимает полные и сокращенные названия дней недели в любом регистре;
// пустой список означает все дни.
type BreakRuleInput struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []string `json:"days,omitempty"`
}

// UpdateRuleSetRequest запрос на замену набора правил расписания
type UpdateRuleSetRequest struct {
	Name                string                         `json:"name"`
	Timezone            string                         `json:"timezone"`
	WeeklyRules         map[string][]TimeIntervalInput `json:"weeklyRules"`
	Breaks              []BreakRuleInput               `json:"breaks,omitempty"`
	GridIntervalMinutes *int                           `json:"gridIntervalMinutes,omitempty"`
}

// UpsertExceptionRequest запрос на установку исключения на дату
type UpsertExceptionRequest struct {
	IsClosed bool                `json:"isClosed"`
	Hours    []TimeIntervalInput `json:"hours,omitempty"`
	Reason   *string             `json:"reason,omitempty"`
}

// UpsertServiceConfigRequest запрос на установку параметров планирования услуги
type UpsertServiceConfigRequest struct {
	ShopID                 int64 `json:"shopId"`
	DurationMinutes        int   `json:"durationMinutes"`
	ProviderBlockMinutes   *int  `json:"providerBlockMinutes,omitempty"`
	AllowProcessingOverlap bool  `json:"allowProcessingOverlap"`
	BufferBeforeMinutes    int   `json:"bufferBeforeMinutes"`
	BufferAfterMinutes     int   `json:"bufferAfterMinutes"`
}

// Response модели

// TimeIntervalResponse нормализованный интервал рабочего времени
type TimeIntervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BreakRuleResponse нормализованный перерыв
type BreakRuleResponse struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []string `json:"days,omitempty"`
}

// RuleSetResponse ответ с набором правил расписания
type RuleSetResponse struct {
	ID                  int64                             `json:"id"`
	Name                string                            `json:"name"`
	Timezone            string                            `json:"timezone"`
	WeeklyRules         map[string][]TimeIntervalResponse `json:"weeklyRules"`
	Breaks              []BreakRuleResponse               `json:"breaks,omitempty"`
	GridIntervalMinutes int                               `json:"gridIntervalMinutes"`
	CreatedAt           time.Time                         `json:"createdAt"`
	UpdatedAt           time.Time                         `json:"updatedAt"`
}

// ExceptionResponse ответ с исключением расписания на дату
type ExceptionResponse struct {
	ID            int64                  `json:"id"`
	ProviderID    int64                  `json:"providerId"`
	Date          string                 `json:"date"`
	IsClosed      bool                   `json:"isClosed"`
	OverrideHours []TimeIntervalResponse `json:"overrideHours,omitempty"`
	Reason        *string                `json:"reason,omitempty"`
}

// ServiceConfigResponse ответ с параметрами планирования услуги
type ServiceConfigResponse struct {
	ID                     int64 `json:"id"`
	ServiceID              int64 `json:"serviceId"`
	ShopID                 int64 `json:"shopId"`
	DurationMinutes        int   `json:"durationMinutes"`
	ProviderBlockMinutes   int   `json:"providerBlockMinutes"`
	AllowProcessingOverlap bool  `json:"allowProcessingOverlap"`
	BufferBeforeMinutes    int   `json:"bufferBeforeMinutes"`
	BufferAfterMinutes     int   `json:"bufferAfterMinutes"`
}

// Методы конвертации

// FromDomainRuleSet конвертирует domain модель набора правил в DTO
func FromDomainRuleSet(ruleset *domain.RuleSet) *RuleSetResponse {
	if ruleset == nil {
		return nil
	}

	weekly := make(map[string][]TimeIntervalResponse, len(ruleset.WeeklyRules))
	for day, intervals := range ruleset.WeeklyRules {
		out := make([]TimeIntervalResponse, 0, len(intervals))
		for _, iv := range intervals {
			out = append(out, TimeIntervalResponse{Start: iv.Start.String(), End: iv.End.String()})
		}
		weekly[day] = out
	}

	breaks := make([]BreakRuleResponse, 0, len(ruleset.Breaks))
	for _, br := range ruleset.Breaks {
		breaks = append(breaks, BreakRuleResponse{
			Start: br.Start.String(),
			End:   br.End.String(),
			Days:  br.Days,
		})
	}

	return &RuleSetResponse{
		ID:                  ruleset.ID,
		Name:                ruleset.Name,
		Timezone:            ruleset.Timezone,
		WeeklyRules:         weekly,
		Breaks:              breaks,
		GridIntervalMinutes: ruleset.GridIntervalMinutes,
		CreatedAt:           ruleset.CreatedAt,
		UpdatedAt:           ruleset.UpdatedAt,
	}
}

// FromDomainException конвертирует domain модель исключения в DTO
func FromDomainException(exc *domain.Exception) *ExceptionResponse {
	if exc == nil {
		return nil
	}

	hours := make([]TimeIntervalResponse, 0, len(exc.OverrideRules))
	for _, iv := range exc.OverrideRules {
		hours = append(hours, TimeIntervalResponse{Start: iv.Start.String(), End: iv.End.String()})
	}

	return &ExceptionResponse{
		ID:            exc.ID,
		ProviderID:    exc.ProviderID,
		Date:          exc.Date.Format(domain.DateFormat),
		IsClosed:      exc.IsClosed,
		OverrideHours: hours,
		Reason:        exc.Reason,
	}
}

// FromDomainServiceConfig конвертирует domain модель конфигурации услуги в DTO
func FromDomainServiceConfig(cfg *domain.ServiceConfig) *ServiceConfigResponse {
	if cfg == nil {
		return nil
	}

	return &ServiceConfigResponse{
		ID:                     cfg.ID,
		ServiceID:              cfg.ServiceID,
		ShopID:                 cfg.ShopID,
		DurationMinutes:        cfg.DurationMinutes,
		ProviderBlockMinutes:   cfg.EffectiveProviderBlockMinutes(),
		AllowProcessingOverlap: cfg.AllowProcessingOverlap,
		BufferBeforeMinutes:    cfg.BufferBeforeMinutes,
		BufferAfterMinutes:     cfg.BufferAfterMinutes,
	}
}
