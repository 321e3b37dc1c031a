package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/models"
	"github.com/google/uuid"
)

const (
	fixturesCachePrefix    = "fixtures:"
	leaderboardCachePrefix = "leaderboard:"
)

type jsonPayload map[string]interface{}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// readCache decodes a cached JSON value into dst. Cache failures are logged and treated as a miss.
func readCache(ctx context.Context, c cache.Cache, logger *slog.Logger, key string, dst interface{}) bool {
	if c == nil {
		return false
	}
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.WarnContext(ctx, "cache entry is not valid JSON", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func writeCache(ctx context.Context, c cache.Cache, logger *slog.Logger, key string, value interface{}, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.WarnContext(ctx, "failed to encode cache entry", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// invalidateEventCaches drops cached fixtures of the event and every cached leaderboard,
// the "latest event" leaderboard may be the same one.
func invalidateEventCaches(ctx context.Context, c cache.Cache, logger *slog.Logger, eventID string) {
	if c == nil {
		return
	}
	for _, prefix := range []string{fixturesCachePrefix + eventID, leaderboardCachePrefix} {
		if err := c.DeleteByPrefix(ctx, prefix); err != nil {
			logger.WarnContext(ctx, "cache invalidation failed", slog.String("prefix", prefix), slog.Any("error", err))
		}
	}
}

func broadcast(n brackets.Notifier, eventID, messageType string, payload interface{}) {
	if n == nil {
		return
	}
	room := brackets.EventRoom(eventID)
	n.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// sortByStartTime orders matches by start time, unscheduled ones last.
func sortByStartTime(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].StartTime, matches[j].StartTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
