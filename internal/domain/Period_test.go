package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		periodKey string
		wantFrom  time.Time
		wantTo    time.Time
		wantDays  int
	}{
		{
			name:      "Hoje cobre um único dia UTC inteiro",
			periodKey: PeriodToday,
			wantFrom:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
			wantDays:  1,
		},
		{
			name:      "Ontem cobre o dia anterior inteiro",
			periodKey: PeriodYesterday,
			wantFrom:  time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2025, 6, 14, 23, 59, 59, 999_000_000, time.UTC),
			wantDays:  1,
		},
		{
			name:      "Semana cobre os últimos sete dias incluindo hoje",
			periodKey: PeriodWeek,
			wantFrom:  time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
			wantDays:  7,
		},
		{
			name:      "Mês cobre os últimos trinta dias incluindo hoje",
			periodKey: PeriodMonth,
			wantFrom:  time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
			wantDays:  30,
		},
		{
			name:      "Max cobre da época até o fim de hoje",
			periodKey: PeriodMax,
			wantFrom:  time.Unix(0, 0).UTC(),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			name:      "All é sinônimo de max",
			periodKey: PeriodAll,
			wantFrom:  time.Unix(0, 0).UTC(),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			name:      "Chave desconhecida cai em hoje",
			periodKey: "quarter",
			wantFrom:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2025, 6, 15, 23, 59, 59, 999_000_000, time.UTC),
			wantDays:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePeriod(tt.periodKey, now)

			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Equal(t, tt.wantFrom.Format(time.DateOnly), got.Period)

			if tt.wantDays > 0 {
				assert.Equal(t, tt.wantDays, got.Days())
			}
		})
	}
}

func TestResolvePeriodNormalizaFusoHorario(t *testing.T) {
	// 23h30 em UTC-3 já é o dia seguinte em UTC
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, loc)

	got := ResolvePeriod(PeriodToday, now)

	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), got.From)
}

func TestCachePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	got := ResolvePeriod(PeriodWeek, now).CachePeriod()

	assert.Equal(t, CachePeriod{From: "2025-06-09", To: "2025-06-15"}, got)
}
