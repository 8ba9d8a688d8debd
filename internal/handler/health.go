package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	svc     *service.FactCheckService
	startAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, svc *service.FactCheckService) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		rdb:     rdb,
		svc:     svc,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — readiness probe with dependency checks.
// Redis being down degrades but does not fail readiness: the pipeline falls
// back to the in-process queue and uncached reads.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := make(fiber.Map)
	overallStatus := "healthy"

	checks["database"] = checkDB(ctx, h.pool)
	if dbCheck, ok := checks["database"].(fiber.Map); ok {
		if dbCheck["status"] != "up" {
			overallStatus = "unhealthy"
		}
	}

	checks["redis"] = checkRedis(ctx, h.rdb)
	if redisCheck, ok := checks["redis"].(fiber.Map); ok {
		if redisCheck["status"] == "down" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	checks["queue"] = fiber.Map{
		"status": "up",
		"depth":  h.svc.QueueLen(),
	}

	resp := fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
		"version":        "1.0.0",
	}

	status := fiber.StatusOK
	if overallStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func checkDB(ctx context.Context, pool *pgxpool.Pool) fiber.Map {
	start := time.Now()
	err := pool.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

func checkRedis(ctx context.Context, rdb *redis.Client) fiber.Map {
	if rdb == nil {
		return fiber.Map{
			"status": "disabled",
		}
	}

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
