package domain

import "time"

// Exception точечное переопределение расписания провайдера на конкретную дату.
// Либо "закрыто" (IsClosed), либо полная замена недельных правил на OverrideRules.
// Имеет приоритет над WeeklyRules для этой даты.
type Exception struct {
	ID            int64
	ProviderID    int64
	Date          time.Time // только дата, время игнорируется
	IsClosed      bool
	OverrideRules []TimeInterval // пусто, если IsClosed
	Reason        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasOverrideHours возвращает true, если исключение задает собственные рабочие часы
func (e *Exception) HasOverrideHours() bool {
	return !e.IsClosed && len(e.OverrideRules) > 0
}
