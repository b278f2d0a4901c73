package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/SaicharanT-tech/eventra/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader  = "X-Idempotency-Key"
	IdempotencyKeyPrefix  = "eventra:idempotency:"
	DefaultIdempotencyTTL = 5 * time.Minute
	// ReplayHeader marks a response served from the idempotency cache
	ReplayHeader = "Idempotent-Replayed"
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyStore is the subset of go-redis the middleware needs
type IdempotencyStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig configures the middleware
type IdempotencyConfig struct {
	Store IdempotencyStore
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight marker blocks retries
	ProcessingTTL time.Duration
	// Methods the middleware applies to
	Methods []string
}

// DefaultIdempotencyConfig returns defaults for mutating methods
func DefaultIdempotencyConfig(store IdempotencyStore) *IdempotencyConfig {
	return &IdempotencyConfig{
		Store:         store,
		TTL:           DefaultIdempotencyTTL,
		ProcessingTTL: 30 * time.Second,
		Methods:       []string{http.MethodPost, http.MethodPut},
	}
}

// Idempotency replays the stored response when a write is retried with the
// same X-Idempotency-Key. Requests without the header pass through. Redis
// errors fail open.
func Idempotency(config *IdempotencyConfig) gin.HandlerFunc {
	methods := make(map[string]struct{}, len(config.Methods))
	for _, m := range config.Methods {
		methods[m] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := methods[c.Request.Method]; !ok {
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		ctx := c.Request.Context()
		redisKey := IdempotencyKeyPrefix + key
		hash := requestHash(c, body)

		existing, err := loadRecord(ctx, config.Store, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replayOrReject(c, existing, hash)
			return
		}

		marker := &idempotencyRecord{Status: statusProcessing, RequestHash: hash, CreatedAt: time.Now()}
		acquired, err := storeRecord(ctx, config.Store, redisKey, marker, config.ProcessingTTL, true)
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			if existing, _ = loadRecord(ctx, config.Store, redisKey); existing != nil {
				replayOrReject(c, existing, hash)
				return
			}
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw
		c.Next()

		status := rw.Status()
		if status >= http.StatusInternalServerError {
			// Server failures are not cached so the client can retry.
			config.Store.Del(ctx, redisKey)
			return
		}

		done := &idempotencyRecord{
			Status:       statusCompleted,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: rw.body.String(),
			CreatedAt:    marker.CreatedAt,
		}
		_, _ = storeRecord(ctx, config.Store, redisKey, done, config.TTL, false)
	}
}

func replayOrReject(c *gin.Context, rec *idempotencyRecord, hash string) {
	if rec.RequestHash != hash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, response.Err("IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request"))
		return
	}
	if rec.Status == statusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict, response.Err("REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed"))
		return
	}
	c.Header(ReplayHeader, "true")
	c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	c.Abort()
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(userID))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func loadRecord(ctx context.Context, store IdempotencyStore, key string) (*idempotencyRecord, error) {
	raw, err := store.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func storeRecord(ctx context.Context, store IdempotencyStore, key string, rec *idempotencyRecord, ttl time.Duration, onlyIfAbsent bool) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	if onlyIfAbsent {
		return store.SetNX(ctx, key, data, ttl).Result()
	}
	return true, store.Set(ctx, key, data, ttl).Err()
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
