package service

import (
	"context"
	"time"

	"github.com/atinyakov/daybook/internal/models"
	"go.uber.org/zap"
)

const memberSinceFallback = "Recently"

// StatsService summarises a user's journaling activity.
type StatsService struct {
	users   UserRepository
	entries EntryRepository
	log     *zap.Logger
	now     Clock
}

func NewStatsService(users UserRepository, entries EntryRepository, log *zap.Logger, now Clock) *StatsService {
	if now == nil {
		now = ClockIn(time.Local)
	}
	return &StatsService{users: users, entries: entries, log: log, now: now}
}

// GetUserStats never fails: a missing user or a storage error yields the zero Stats.
func (s *StatsService) GetUserStats(ctx context.Context, userID int64) models.Stats {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("stats: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return models.Stats{}
	}

	total, err := s.entries.CountByUser(ctx, userID)
	if err != nil {
		s.log.Error("stats: count failed", zap.Int64("user_id", userID), zap.Error(err))
		return models.Stats{}
	}

	dates, err := s.entries.EntryDates(ctx, userID)
	if err != nil {
		s.log.Error("stats: entry dates failed", zap.Int64("user_id", userID), zap.Error(err))
		return models.Stats{}
	}

	return models.Stats{
		TotalEntries: total,
		Streak:       CalculateStreak(dates, s.now()),
		MemberSince:  MemberSince(u),
	}
}

// CalculateStreak counts consecutive calendar days ending today that have at
// least one entry. Dates are compared in today's location; a missing entry
// for today gives 0.
func CalculateStreak(dates []time.Time, today time.Time) int {
	days := make(map[civilDate]struct{}, len(dates))
	for _, d := range dates {
		days[dateOf(d.In(today.Location()))] = struct{}{}
	}

	streak := 0
	for day := dateOf(today); ; day = day.addDays(-1) {
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
	}
}

// MemberSince formats the registration month, e.g. "Jan 2024".
func MemberSince(u *models.User) string {
	if u == nil || u.CreatedAt.IsZero() {
		return memberSinceFallback
	}
	return u.CreatedAt.Format("Jan 2006")
}
