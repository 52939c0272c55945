package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShiftKey(t *testing.T) {
	key := MakeShiftKey("2026-03-02", "上午班")

	assert.Equal(t, ShiftKey("2026-03-02-上午班"), key)
	assert.Equal(t, "2026-03-02", key.Date())
	assert.Equal(t, "上午班", key.ShiftName())
	assert.Equal(t, "2026-03", key.MonthKey())

	// 格式非法的键所有部分都返回空
	broken := ShiftKey("短键")
	assert.Equal(t, "", broken.Date())
	assert.Equal(t, "", broken.ShiftName())
	assert.Equal(t, "", broken.MonthKey())
}

func TestFullyAssigned(t *testing.T) {
	assert.False(t, (&Slot{}).FullyAssigned())
	assert.True(t, (&Slot{Dentists: []AssignedStaff{{ID: 1}}}).FullyAssigned())
	assert.True(t, (&Slot{Nurses: []AssignedStaff{{ID: 2}}}).FullyAssigned())
}
