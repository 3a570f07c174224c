package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"alumni-check/internal/storage"
)

// DailyStats содержит статистику проверок за день
type DailyStats struct {
	Date           string         `json:"date"`
	TotalEvents    int            `json:"total_events"`
	UniqueUsers    int            `json:"unique_users"`
	ByOutcome      map[string]int `json:"by_outcome"`
	NotFoundClaims []string       `json:"not_found_claims"`
}

// AnalyzeDaily анализирует записанные события за указанную дату
func AnalyzeDaily(events []storage.Event, targetDate time.Time) *DailyStats {
	// Нормализуем дату до начала дня
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByOutcome: make(map[string]int),
	}

	uniqueUsers := make(map[int64]bool)

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		stats.TotalEvents++
		uniqueUsers[event.UserID] = true
		stats.ByOutcome[event.Outcome]++

		if event.Outcome == storage.OutcomeNotFoundDM || event.Outcome == storage.OutcomeJoinDeclinedNotFound {
			stats.NotFoundClaims = append(stats.NotFoundClaims,
				fmt.Sprintf("%s %d-%d (id %d)", event.FullName, event.Year, event.Klass, event.UserID))
		}
	}

	stats.UniqueUsers = len(uniqueUsers)
	return stats
}

// ReportSummary создает текстовый отчет для админа
func (ds *DailyStats) ReportSummary() string {
	approved := ds.ByOutcome[storage.OutcomeJoinApproved]
	verified := ds.ByOutcome[storage.OutcomeVerifiedDM]
	declined := ds.ByOutcome[storage.OutcomeJoinDeclinedNoBio] +
		ds.ByOutcome[storage.OutcomeJoinDeclinedIncomplete] +
		ds.ByOutcome[storage.OutcomeJoinDeclinedNotFound]

	summary := fmt.Sprintf(`📊 Статистика проверок за %s:

- Всего событий: %d
- Уникальных пользователей: %d
- Заявок одобрено: %d
- Заявок отклонено: %d
- Подтверждено через личные сообщения: %d
- Эскалаций к админу: %d
`, ds.Date, ds.TotalEvents, ds.UniqueUsers, approved, declined, verified,
		ds.ByOutcome[storage.OutcomeEscalated])

	if len(ds.NotFoundClaims) > 0 {
		summary += fmt.Sprintf("\nНе найдены в базе (%d):\n", len(ds.NotFoundClaims))
		for _, c := range ds.NotFoundClaims {
			summary += "- " + c + "\n"
		}
	}

	return summary
}

// ToJSON сериализует статистику в JSON для детального анализа
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
