package availability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotDraft_AddDerivesWeekday(t *testing.T) {
	d := NewSlotDraft(nil)
	// 2024-01-10 is a Wednesday.
	slot, err := d.Add("2024-01-10", "14:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, Slot{Wednesday, "14:00", "17:00"}, slot)
	assert.Equal(t, []Slot{slot}, d.Slots())
}

func TestSlotDraft_RejectsEndBeforeStart(t *testing.T) {
	d := NewSlotDraft(nil)
	err := d.AddSlot(Slot{DayOfWeek: 1, StartTime: "09:00", EndTime: "08:00"})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, d.Len())

	_, err = d.Add("2024-01-08", "09:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = d.Add("2024-01-08", "nine", "10:00")
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, d.Len())
}

func TestSlotDraft_RangeCheckedBeforeDate(t *testing.T) {
	d := NewSlotDraft(nil)
	_, err := d.Add("not-a-date", "12:00", "08:00")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSlotDraft_RejectsDuplicate(t *testing.T) {
	d := NewSlotDraft(nil)
	require.NoError(t, d.AddSlot(Slot{1, "09:00", "12:00"}))

	err := d.AddSlot(Slot{1, "09:00", "12:00"})
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.Equal(t, 1, d.Len())

	// Same weekday through a date: 2024-01-08 is a Monday.
	_, err = d.Add("2024-01-08", "09:00", "12:00")
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.Equal(t, []Slot{{1, "09:00", "12:00"}}, d.Slots())
}

func TestSlotDraft_MissingFields(t *testing.T) {
	d := NewSlotDraft(nil)
	_, err := d.Add("", "09:00", "10:00")
	assert.ErrorIs(t, err, ErrMissingDate)
	_, err = d.Add("2024-01-08", "", "10:00")
	assert.ErrorIs(t, err, ErrMissingStart)
	_, err = d.Add("2024-01-08", "09:00", " ")
	assert.ErrorIs(t, err, ErrMissingEnd)
	_, err = d.Add("08/01/2024", "09:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSlotDraft_AddSlotRejectsInvalidWeekday(t *testing.T) {
	d := NewSlotDraft(nil)
	assert.ErrorIs(t, d.AddSlot(Slot{9, "09:00", "10:00"}), ErrInvalidWeekday)
}

func TestSlotDraft_KeepsCanonicalOrder(t *testing.T) {
	d := NewSlotDraft(nil)
	require.NoError(t, d.AddSlot(Slot{5, "09:00", "10:00"}))
	require.NoError(t, d.AddSlot(Slot{1, "15:00", "16:00"}))
	require.NoError(t, d.AddSlot(Slot{1, "08:00", "09:00"}))

	assert.Equal(t, []Slot{
		{1, "08:00", "09:00"},
		{1, "15:00", "16:00"},
		{5, "09:00", "10:00"},
	}, d.Slots())

	week := d.ByDay()
	assert.Len(t, week[1], 2)
	assert.Len(t, week[5], 1)
	assert.Empty(t, week[0])
}

func TestSlotDraft_RemoveAndReset(t *testing.T) {
	var raw []RawSlot
	require.NoError(t, json.Unmarshal([]byte(`[
		{"dayOfWeek":3,"startTime":"14:00","endTime":"17:00"},
		{"dayOfWeek":"bad","startTime":"14:00","endTime":"17:00"}
	]`), &raw))

	d := NewSlotDraft(raw)
	require.Equal(t, 1, d.Len())

	require.NoError(t, d.AddSlot(Slot{1, "09:00", "10:00"}))
	assert.True(t, d.Remove("3|14:00|17:00"))
	assert.False(t, d.Remove("3|14:00|17:00"))
	assert.Equal(t, []Slot{{1, "09:00", "10:00"}}, d.Slots())

	d.Reset(raw)
	assert.Equal(t, []Slot{{3, "14:00", "17:00"}}, d.Slots())
}

func TestSlotDraft_SlotsIsACopy(t *testing.T) {
	d := NewSlotDraft(nil)
	require.NoError(t, d.AddSlot(Slot{1, "09:00", "10:00"}))
	got := d.Slots()
	got[0].StartTime = "00:00"
	assert.Equal(t, "09:00", d.Slots()[0].StartTime)
}
