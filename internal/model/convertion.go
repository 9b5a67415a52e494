package model

import "github.com/arisefit-lab/backend/internal/entity"

const DefaultDateLayout string = "2006-01-02"

func ConvertProgression(p *entity.UserProgression, progress LevelProgress) Progression {
	if p == nil {
		return Progression{}
	}

	return Progression{
		UserID:         p.UserID,
		TotalXP:        p.TotalXP,
		XPToday:        p.XPToday,
		WeeklyXP:       p.WeeklyXP,
		MonthlyXP:      p.MonthlyXP,
		Level:          p.Level,
		Rank:           string(p.Rank),
		Prestige:       p.Prestige,
		StatPoints:     p.StatPoints,
		TasksCompleted: p.TasksCompleted,
		CurrentStreak:  p.CurrentStreak,
		LastActive:     p.LastActive,
		LevelProgress:  progress,
	}
}

func ConvertStats(s *entity.UserStats) Stats {
	if s == nil {
		return Stats{}
	}

	return Stats{
		Strength:  s.Strength,
		Speed:     s.Speed,
		Endurance: s.Endurance,
		Agility:   s.Agility,
		Power:     s.Power,
		Recovery:  s.Recovery,
	}
}

func ConvertTask(t *entity.DailyTask) Task {
	if t == nil {
		return Task{}
	}

	return Task{
		ID:         t.ID,
		Title:      t.Title,
		XPReward:   t.XPReward,
		Recurrence: string(t.Recurrence),
		Completed:  t.Completed,
	}
}

func ConvertRankHistory(h *entity.RankHistory) RankHistoryEntry {
	if h == nil {
		return RankHistoryEntry{}
	}

	return RankHistoryEntry{
		FromRank: string(h.FromRank),
		ToRank:   string(h.ToRank),
		Level:    h.Level,
		TotalXP:  h.TotalXP,
	}
}
