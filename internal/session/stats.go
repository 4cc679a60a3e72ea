package session

import (
	"sort"
	"strings"
	"time"
)

// ModelCount is one model's session count.
type ModelCount struct {
	Model string
	Count int
}

// DayCount is the number of sessions active on one local date.
type DayCount struct {
	Date  string // YYYY-MM-DD
	Count int
}

// StatsSourceRow aggregates one source's sessions.
type StatsSourceRow struct {
	Source           Source
	Sessions         int
	HistoryEntries   int64
	FirstSessionDate string // em dash when unknown
	TopModels        []ModelCount
	DailySessions    []DayCount // ascending by date, last 14 active days
}

// StatsReport is the full stats aggregation consumed by render.
type StatsReport struct {
	TotalSessions        int
	TotalHistoryEntries  int64
	TotalTranscriptBytes int64
	LastComputed         string
	Sources              []StatsSourceRow
}

const (
	statsTopModels = 8
	statsDays      = 14
)

// BuildStats aggregates session counts, model usage, and daily activity per
// source. Claude sessions missing a model get a one-off transcript scan
// first; stats is the one path where that extra cost is acceptable, and the
// gain is persisted so later runs skip it.
func (s *Store) BuildStats() StatsReport {
	s.Load()

	for _, sess := range s.sessions {
		if sess.Source != SourceClaude || strings.TrimSpace(sess.Model) != "" || sess.FilePath == "" {
			continue
		}
		model := claudeModelFromTranscript(sess.FilePath)
		if model == "" || sess.Model == model {
			continue
		}
		sess.Model = model
		s.updateHistoryCacheSession(*sess)
	}

	report := StatsReport{
		TotalSessions: len(s.sessions),
		LastComputed:  time.Now().Format("2006-01-02"),
	}
	for _, src := range Sources {
		report.TotalHistoryEntries += s.cache.Histories[string(src)].LineCount
	}
	for _, sess := range s.sessions {
		if sess.FilePath == "" {
			continue
		}
		if size, _, ok := fileFingerprint(sess.FilePath); ok {
			report.TotalTranscriptBytes += size
		}
	}

	for _, src := range Sources {
		row := StatsSourceRow{
			Source:           src,
			HistoryEntries:   s.cache.Histories[string(src)].LineCount,
			FirstSessionDate: "—",
		}

		var firstTS int64
		modelCounts := map[string]int{}
		dailyCounts := map[string]int{}
		for _, sess := range s.sessions {
			if sess.Source != src {
				continue
			}
			row.Sessions++
			if sess.Timestamp > 0 {
				if firstTS == 0 || sess.Timestamp < firstTS {
					firstTS = sess.Timestamp
				}
				day := time.UnixMilli(sess.Timestamp).Format("2006-01-02")
				dailyCounts[day]++
			}
			if strings.TrimSpace(sess.Model) != "" {
				modelCounts[sess.Model]++
			}
		}

		if firstTS > 0 {
			row.FirstSessionDate = time.UnixMilli(firstTS).Format("2006-01-02")
		}

		for model, count := range modelCounts {
			row.TopModels = append(row.TopModels, ModelCount{Model: model, Count: count})
		}
		sort.Slice(row.TopModels, func(i, j int) bool {
			if row.TopModels[i].Count != row.TopModels[j].Count {
				return row.TopModels[i].Count > row.TopModels[j].Count
			}
			return row.TopModels[i].Model < row.TopModels[j].Model
		})
		if len(row.TopModels) > statsTopModels {
			row.TopModels = row.TopModels[:statsTopModels]
		}

		for day, count := range dailyCounts {
			row.DailySessions = append(row.DailySessions, DayCount{Date: day, Count: count})
		}
		sort.Slice(row.DailySessions, func(i, j int) bool {
			return row.DailySessions[i].Date < row.DailySessions[j].Date
		})
		if len(row.DailySessions) > statsDays {
			row.DailySessions = row.DailySessions[len(row.DailySessions)-statsDays:]
		}

		report.Sources = append(report.Sources, row)
	}
	return report
}
