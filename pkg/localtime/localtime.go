// Package localtime выполняет DST-безопасную конвертацию локального времени в абсолютный момент.
//
// Два проблемных случая при работе с таймзонами:
//   - spring-forward: локальное время не существует (часы перепрыгнули вперед);
//   - fall-back: локальное время встречается дважды (часы вернулись назад).
//
// Несуществующее время отбрасывается, неоднозначное всегда разрешается в более
// ранний UTC-офсет (первое вхождение до перевода часов).
package localtime

import (
	"fmt"
	"time"
)

// MinutesPerDay количество минут в сутках; значение 1440 (т.е. 24:00) невалидно
const MinutesPerDay = 1440

// ambiguityProbes возможные величины DST-сдвигов: 30 минут, 1 час и 2 часа
// покрывают все реально существующие переходы в базе IANA
var ambiguityProbes = []time.Duration{
	-2 * time.Hour,
	-time.Hour,
	-30 * time.Minute,
}

// Localize строит абсолютный момент из даты (год/месяц/день берутся из date),
// минут от полуночи и таймзоны.
//
// Возвращает (instant, true), если локальное время существует.
// Возвращает (zero, false), если:
//   - minutes вне диапазона [0, 1439];
//   - локальное время попадает в spring-forward разрыв.
//
// Для неоднозначного времени (fall-back) детерминированно возвращается
// более ранний момент (до перевода часов).
func Localize(date time.Time, minutes int, loc *time.Location) (time.Time, bool) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return time.Time{}, false
	}

	year, month, day := date.Date()
	hour := minutes / 60
	min := minutes % 60

	t := time.Date(year, month, day, hour, min, 0, 0, loc)

	// Если после нормализации настенное время изменилось - запрошенное
	// время не существует (spring-forward разрыв)
	if t.Hour() != hour || t.Minute() != min || t.Day() != day {
		return time.Time{}, false
	}

	// time.Date не гарантирует выбор вхождения для неоднозначного времени,
	// поэтому ищем более ранний момент с тем же настенным временем
	for _, probe := range ambiguityProbes {
		earlier := t.Add(probe)
		if earlier.Hour() == hour && earlier.Minute() == min && earlier.Day() == day {
			return earlier, true
		}
	}

	return t, true
}

// LocalizeClock аналог Localize для времени в формате "HH:MM"
func LocalizeClock(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return Localize(date, parsed.Hour()*60+parsed.Minute(), loc)
}

// ToUTC форматирует момент как UTC ISO 8601 с суффиксом 'Z'
// Используется для ВСЕХ моментов времени в ответах API
func ToUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ValidateTimezone проверяет, что строка является валидным IANA-идентификатором
func ValidateTimezone(tzID string) (*time.Location, error) {
	if tzID == "" {
		return nil, fmt.Errorf("timezone id is empty")
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, fmt.Errorf("invalid IANA timezone %q: %v", tzID, err)
	}
	return loc, nil
}
