package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

const sessionCacheTTL = 30 * time.Second

// SessionCache keeps short-lived copies of session list views in Redis so the
// worker and admin dashboards do not hammer the database between changes.
// Every claim, proof submission and review invalidates the affected keys.
// A nil client disables caching entirely; all methods are nil-safe.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache connects to REDIS_ADDR. When the variable is unset or the
// server is unreachable the cache is disabled and the app serves from the
// database alone.
func NewSessionCache() *SessionCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return &SessionCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Printf("Redis unavailable (%v), session cache disabled", err)
		return &SessionCache{}
	}

	utils.InfoLogger.Printf("Session cache connected to redis at %s", addr)
	return &SessionCache{client: client}
}

func (sc *SessionCache) Enabled() bool {
	return sc != nil && sc.client != nil
}

func staffSessionsKey(staffID uint) string {
	return fmt.Sprintf("coachclean:sessions:staff:%d", staffID)
}

const allSessionsKey = "coachclean:sessions:all"

// GetStaffSessions returns the cached active-session list for a staff member,
// or false when the cache misses.
func (sc *SessionCache) GetStaffSessions(ctx context.Context, staffID uint) ([]models.OtpSession, bool) {
	if !sc.Enabled() {
		return nil, false
	}
	data, err := sc.client.Get(ctx, staffSessionsKey(staffID)).Bytes()
	if err != nil {
		return nil, false
	}
	var sessions []models.OtpSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, false
	}
	return sessions, true
}

func (sc *SessionCache) SetStaffSessions(ctx context.Context, staffID uint, sessions []models.OtpSession) {
	if !sc.Enabled() {
		return
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return
	}
	if err := sc.client.Set(ctx, staffSessionsKey(staffID), data, sessionCacheTTL).Err(); err != nil {
		utils.ErrorLogger.Printf("Error caching sessions for staff %d: %v", staffID, err)
	}
}

// GetAllSessions returns the cached admin all-sessions view, or false when
// the cache misses.
func (sc *SessionCache) GetAllSessions(ctx context.Context) ([]models.OtpSession, bool) {
	if !sc.Enabled() {
		return nil, false
	}
	data, err := sc.client.Get(ctx, allSessionsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var sessions []models.OtpSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, false
	}
	return sessions, true
}

func (sc *SessionCache) SetAllSessions(ctx context.Context, sessions []models.OtpSession) {
	if !sc.Enabled() {
		return
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return
	}
	if err := sc.client.Set(ctx, allSessionsKey, data, sessionCacheTTL).Err(); err != nil {
		utils.ErrorLogger.Printf("Error caching all-sessions view: %v", err)
	}
}

// Invalidate drops the all-sessions view and, when staffID is non-zero, that
// staff member's view.
func (sc *SessionCache) Invalidate(ctx context.Context, staffID uint) {
	if !sc.Enabled() {
		return
	}
	keys := []string{allSessionsKey}
	if staffID != 0 {
		keys = append(keys, staffSessionsKey(staffID))
	}
	if err := sc.client.Del(ctx, keys...).Err(); err != nil {
		utils.ErrorLogger.Printf("Error invalidating session cache: %v", err)
	}
}

func (sc *SessionCache) Close() {
	if sc.Enabled() {
		sc.client.Close()
	}
}
