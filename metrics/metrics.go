package metrics

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recorder receives request and payment business observations. The
// services depend on this interface only; the Redis recorder is wired in
// main and the no-op recorder keeps tests dependency-free.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	PaymentCreated(amount int64, currency string, captured bool)
	PaymentCaptured(amount int64, currency string)
	PaymentCanceled(amount int64, currency string)
	PaymentFailed(reason, currency string)
	IdempotencyCheck(duration time.Duration, hit bool)
}

const (
	requestsKey        = "payments:counters:http_requests"
	errorsKey          = "payments:counters:http_errors"
	requestLatencyKey  = "payments:latency:http_requests"
	createdKey         = "payments:counters:created"
	capturedKey        = "payments:counters:captured"
	canceledKey        = "payments:counters:canceled"
	failedKey          = "payments:counters:failed"
	amountKey          = "payments:amount_cents"
	idempotencyKey     = "payments:counters:idempotency_checks"
	idempotencyLatency = "payments:latency:idempotency_checks"
	latencySumField    = "sum_us"
	latencyCountField  = "count"
)

// RedisRecorder accumulates counters in Redis hashes so they survive
// restarts and can be scraped from any instance.
type RedisRecorder struct {
	client *redis.Client
}

// NewRedisRecorder connects to the cache server. A failed ping is logged
// and tolerated: recording degrades to errors on each call rather than
// taking the API down.
func NewRedisRecorder(host, port string) *RedisRecorder {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: metrics cache unreachable: %v", err)
	}
	return &RedisRecorder{client: client}
}

func (r *RedisRecorder) incr(key, field string, by int64) {
	if err := r.client.HIncrBy(context.Background(), key, field, by).Err(); err != nil {
		log.Printf("metrics: incr %s[%s] failed: %v", key, field, err)
	}
}

func (r *RedisRecorder) observeLatency(key string, d time.Duration) {
	ctx := context.Background()
	pipe := r.client.Pipeline()
	pipe.HIncrBy(ctx, key, latencySumField, d.Microseconds())
	pipe.HIncrBy(ctx, key, latencyCountField, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("metrics: latency observe %s failed: %v", key, err)
	}
}

func (r *RedisRecorder) RecordRequest(method, route string, status int, duration time.Duration) {
	field := fmt.Sprintf("%s %s %d", method, route, status)
	r.incr(requestsKey, field, 1)
	if status >= 400 {
		r.incr(errorsKey, field, 1)
	}
	r.observeLatency(requestLatencyKey, duration)
}

func (r *RedisRecorder) PaymentCreated(amount int64, currency string, captured bool) {
	r.incr(createdKey, currency+":"+strconv.FormatBool(captured), 1)
	r.incr(amountKey, currency, amount)
}

func (r *RedisRecorder) PaymentCaptured(amount int64, currency string) {
	r.incr(capturedKey, currency, 1)
}

func (r *RedisRecorder) PaymentCanceled(amount int64, currency string) {
	r.incr(canceledKey, currency, 1)
}

func (r *RedisRecorder) PaymentFailed(reason, currency string) {
	r.incr(failedKey, reason+":"+currency, 1)
}

func (r *RedisRecorder) IdempotencyCheck(duration time.Duration, hit bool) {
	r.incr(idempotencyKey, strconv.FormatBool(hit), 1)
	r.observeLatency(idempotencyLatency, duration)
}

// Snapshot returns all counter hashes for the metrics endpoint.
func (r *RedisRecorder) Snapshot() (map[string]map[string]string, error) {
	ctx := context.Background()
	out := make(map[string]map[string]string)
	for _, key := range []string{
		requestsKey, errorsKey, requestLatencyKey,
		createdKey, capturedKey, canceledKey, failedKey,
		amountKey, idempotencyKey, idempotencyLatency,
	} {
		data, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			out[key] = data
		}
	}
	return out, nil
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) RecordRequest(string, string, int, time.Duration) {}
func (NopRecorder) PaymentCreated(int64, string, bool)              {}
func (NopRecorder) PaymentCaptured(int64, string)                   {}
func (NopRecorder) PaymentCanceled(int64, string)                   {}
func (NopRecorder) PaymentFailed(string, string)                    {}
func (NopRecorder) IdempotencyCheck(time.Duration, bool)            {}
