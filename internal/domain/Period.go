package domain

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Chaves simbólicas de período aceitas pelo resolvedor
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodMax       = "max"
	PeriodAll       = "all"
)

// CachePeriod representa o intervalo absoluto de datas (inclusivo) coberto
// por uma entrada de cache, no formato date-only
type CachePeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PeriodRange é o resultado da resolução de uma chave simbólica de período
// em limites absolutos de dias UTC inteiros
type PeriodRange struct {
	From   time.Time
	To     time.Time
	Period string // forma canônica date-only (YYYY-MM-DD) da data inicial
}

// CachePeriod converte o intervalo resolvido para a forma armazenada no cache
func (p PeriodRange) CachePeriod() CachePeriod {
	return CachePeriod{
		From: p.From.Format(time.DateOnly),
		To:   p.To.Format(time.DateOnly),
	}
}

// Days retorna a quantidade de dias inteiros cobertos pelo intervalo
func (p PeriodRange) Days() int {
	return int(p.To.Truncate(24*time.Hour).Sub(p.From.Truncate(24*time.Hour))/(24*time.Hour)) + 1
}

// ResolvePeriod mapeia uma chave simbólica de período para limites absolutos
// de datas. Os limites são dias UTC inteiros (00:00:00.000 a 23:59:59.999).
// Chaves desconhecidas caem silenciosamente em "today".
func ResolvePeriod(periodKey string, now time.Time) PeriodRange {
	today := startOfDayUTC(now)

	var from, to time.Time

	switch periodKey {
	case PeriodToday:
		from, to = today, today
	case PeriodYesterday:
		yesterday := today.AddDate(0, 0, -1)
		from, to = yesterday, yesterday
	case PeriodWeek:
		// Últimos 7 dias, incluindo hoje
		from, to = today.AddDate(0, 0, -6), today
	case PeriodMonth:
		// Últimos 30 dias, incluindo hoje
		from, to = today.AddDate(0, 0, -29), today
	case PeriodMax, PeriodAll:
		from, to = time.Unix(0, 0).UTC(), today
	default:
		logrus.WithField("period_key", periodKey).Warn("Chave de período desconhecida, usando 'today'")
		from, to = today, today
	}

	return PeriodRange{
		From:   from,
		To:     endOfDayUTC(to),
		Period: from.Format(time.DateOnly),
	}
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
}
