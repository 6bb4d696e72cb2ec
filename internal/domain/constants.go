package domain

// Default configuration values
const (
	DefaultGridIntervalMinutes         = 30
	DefaultMaxConcurrentProcessingJobs = 1
	DefaultTimezone                    = "America/New_York"
)

// Business validation constants
const (
	MinGridIntervalMinutes = 5
	MaxGridIntervalMinutes = 240
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 480 // 8 hours
	MaxBufferMinutes       = 120
	MaxNotesLength         = 500
	MaxCancelReasonLength  = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// WeekdayKeys нормализованные ключи дней недели в порядке ISO (понедельник первый)
var WeekdayKeys = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// InactiveStatuses статусы, при которых бронирование не блокирует календарь
// Используется при построении busy/processing-блоков
var InactiveStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByCompany,
	StatusNoShow,
}

// ActiveStatuses статусы активных бронирований
var ActiveStatuses = []BookingStatus{
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
