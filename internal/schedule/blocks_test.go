package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
)

func utc(hour, min int) time.Time {
	return time.Date(2026, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestBuildBlocks_SimpleBooking(t *testing.T) {
	bookings := []*domain.Booking{
		{
			Status:    domain.StatusConfirmed,
			BusyStart: utc(9, 50),
			BusyEnd:   utc(11, 0),
			TotalEnd:  utc(11, 15),
		},
	}

	busy, processing := BuildBlocks(bookings)

	// Без processing-окна жестко занято все окно целиком, включая буферы
	require.Len(t, busy, 1)
	assert.Equal(t, Interval{Start: utc(9, 50), End: utc(11, 15)}, busy[0])
	assert.Empty(t, processing)
}

func TestBuildBlocks_CancelledExcluded(t *testing.T) {
	bookings := []*domain.Booking{
		{Status: domain.StatusCancelledByUser, BusyStart: utc(9, 0), BusyEnd: utc(10, 0), TotalEnd: utc(10, 0)},
		{Status: domain.StatusCancelledByCompany, BusyStart: utc(10, 0), BusyEnd: utc(11, 0), TotalEnd: utc(11, 0)},
		{Status: domain.StatusNoShow, BusyStart: utc(11, 0), BusyEnd: utc(12, 0), TotalEnd: utc(12, 0)},
	}

	busy, processing := BuildBlocks(bookings)

	assert.Empty(t, busy)
	assert.Empty(t, processing)
}

func TestBuildBlocks_ProcessingSplit(t *testing.T) {
	ps := utc(10, 30)
	pe := utc(11, 30)
	bookings := []*domain.Booking{
		{
			Status:          domain.StatusConfirmed,
			BusyStart:       utc(10, 0),
			BusyEnd:         utc(10, 30),
			ProcessingStart: &ps,
			ProcessingEnd:   &pe,
			TotalEnd:        utc(11, 45),
		},
	}

	busy, processing := BuildBlocks(bookings)

	// Занятость распадается на busy до processing и busy после него
	require.Len(t, busy, 2)
	assert.Equal(t, Interval{Start: utc(10, 0), End: utc(10, 30)}, busy[0])
	assert.Equal(t, Interval{Start: utc(11, 30), End: utc(11, 45)}, busy[1])

	require.Len(t, processing, 1)
	assert.Equal(t, Interval{Start: utc(10, 30), End: utc(11, 30)}, processing[0])
}

func TestBuildBlocks_ProcessingWithoutTail(t *testing.T) {
	ps := utc(10, 30)
	pe := utc(11, 30)
	bookings := []*domain.Booking{
		{
			Status:          domain.StatusInProgress,
			BusyStart:       utc(10, 0),
			BusyEnd:         utc(10, 30),
			ProcessingStart: &ps,
			ProcessingEnd:   &pe,
			TotalEnd:        utc(11, 30), // нет пост-буфера
		},
	}

	busy, processing := BuildBlocks(bookings)

	require.Len(t, busy, 1)
	assert.Equal(t, Interval{Start: utc(10, 0), End: utc(10, 30)}, busy[0])
	require.Len(t, processing, 1)
}

func TestOverlaps(t *testing.T) {
	// Полуоткрытые интервалы: граничащие не пересекаются
	assert.False(t, Overlaps(utc(9, 0), utc(10, 0), utc(10, 0), utc(11, 0)))
	assert.True(t, Overlaps(utc(9, 0), utc(10, 1), utc(10, 0), utc(11, 0)))
	assert.True(t, Overlaps(utc(9, 0), utc(12, 0), utc(10, 0), utc(11, 0)))
	assert.False(t, Overlaps(utc(9, 0), utc(10, 0), utc(11, 0), utc(12, 0)))
}
