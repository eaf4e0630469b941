package diary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateHelpers(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 2, 18, 30, 5, 0, time.Local)
	assert.Equal(t, "2024-05-02", LocalYMD(now))
	assert.Equal(t, "2024-05-02T18:30:05", LocalDateTime(now))
	assert.Equal(t, 113, ROCYear(now))
}

func TestFormatROC(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "113 / 5 / 02（週四）", FormatROC("2024-05-02T12:00", false))
	assert.Equal(t, "113 / 5 / 02", FormatROC("2024-05-02", true))
	assert.Equal(t, "not a date", FormatROC("not a date", false))
}
