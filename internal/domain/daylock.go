package domain

import "time"

// DayLock строка-мьютекс для сериализации создания бронирований по (салон, дата).
// Не несет бизнес-данных: создается лениво при первой необходимости,
// никогда не удаляется, блокируется через SELECT ... FOR UPDATE.
type DayLock struct {
	ID        int64
	ShopID    int64
	Date      time.Time
	CreatedAt time.Time
}
