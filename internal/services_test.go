package internal

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestWriteLeadsCSV(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	leads := []Lead{
		{
			ID:          2,
			LeadType:    LeadTypeClient,
			Name:        strPtr("Иван"),
			Phone:       strPtr("+7 900"),
			City:        strPtr("Казань"),
			WorkType:    strPtr("плитка"),
			Budget:      strPtr("100к"),
			Description: strPtr("Первая строка\nвторая строка"),
			Status:      StatusNew,
			CreatedAt:   created,
		},
		{
			ID:        1,
			LeadType:  LeadTypeContractor,
			Status:    StatusDone,
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeLeadsCSV(&buf, leads))

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"id", "lead_type", "name", "phone", "city", "work_type", "budget", "status", "created_at", "description",
	}, rows[0])

	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, LeadTypeClient, rows[1][1])
	assert.Equal(t, "Иван", rows[1][2])
	assert.Equal(t, "2025-03-01T12:30:00Z", rows[1][8])
	assert.Equal(t, "Первая строка вторая строка", rows[1][9], "переводы строки схлопываются в пробел")

	// nil-поля выгружаются пустыми ячейками
	assert.Equal(t, []string{"1", LeadTypeContractor, "", "", "", "", "", StatusDone, "2025-03-01T12:30:00Z", ""}, rows[2])
}

func TestWriteLeadsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLeadsCSV(&buf, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1, "только заголовок")
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "x", deref(strPtr("x")))
}
