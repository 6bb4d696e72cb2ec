package create_booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
)

// candidate провайдер с его загрузкой на день бронирования
type candidate struct {
	provider *catalogservice.Provider
	load     int // количество активных бронирований на дату
}

// rankCandidates выстраивает провайдеров в порядке предпочтения для авто-выбора:
// сначала наименее загруженные на эту дату, при равной загрузке - меньший ID.
// Вызывается внутри транзакции после захвата дневной блокировки, чтобы счетчики
// не устарели к моменту вставки.
func (uc *UseCase) rankCandidates(ctx context.Context, providers []*catalogservice.Provider, date time.Time) ([]candidate, error) {
	candidates := make([]candidate, 0, len(providers))

	for _, provider := range providers {
		load, err := uc.bookingRepo.CountActiveForDay(ctx, provider.ID, date)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count bookings for provider=%d: %v", ErrInternal, provider.ID, err)
		}
		candidates = append(candidates, candidate{provider: provider, load: load})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].load != candidates[j].load {
			return candidates[i].load < candidates[j].load
		}
		return candidates[i].provider.ID < candidates[j].provider.ID
	})

	return candidates, nil
}
