package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestValidateEmail tests the ValidateEmail function with valid and invalid emails.
func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("test@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.org"))
	assert.False(t, ValidateEmail("test@example"))
	assert.False(t, ValidateEmail("test@.com"))
	assert.False(t, ValidateEmail("test@."))
	assert.False(t, ValidateEmail(""))
}

// TestValidatePassword tests the ValidatePassword function with valid and invalid passwords.
func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Test1234"))
	assert.False(t, ValidatePassword("test"))
	assert.False(t, ValidatePassword("Test"))
	assert.False(t, ValidatePassword("1234"))
	assert.False(t, ValidatePassword("T1234"))
	assert.False(t, ValidatePassword("onlyletters"))
	assert.False(t, ValidatePassword("12345678"))
}

func TestDayString(t *testing.T) {
	assert.Equal(t, "2024-02-05", DayString(time.Date(2024, 2, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2024-11-30", DayString(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)))
}
