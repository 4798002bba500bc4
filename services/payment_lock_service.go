// Package services holds application services that sit beside the models
// layer: infrastructure concerns with behavior of their own.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/redis/go-redis/v9"
)

// PaymentLockService serializes payment creation per directed transfer edge
// with a short-lived Redis lock (SET NX PX). The lock is a fast first line
// of defense against double checkouts; the partial unique index on the
// payments table remains the authoritative guard, so a Redis outage degrades
// to slower conflict detection rather than broken behavior.
type PaymentLockService struct {
	client  *redis.Client
	lockTTL time.Duration
}

// NewPaymentLockService creates the lock service.
func NewPaymentLockService(client *redis.Client, lockTTL time.Duration) *PaymentLockService {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &PaymentLockService{
		client:  client,
		lockTTL: lockTTL,
	}
}

func edgeLockKey(groupID, fromMemberID, toMemberID string) string {
	return fmt.Sprintf("payment-edge:%s:%s:%s", groupID, fromMemberID, toMemberID)
}

// AcquireEdgeLock attempts to take the edge lock. It returns a release
// function and whether the lock was acquired. Redis errors fail open with a
// warning: the database constraint still rejects a duplicate.
func (s *PaymentLockService) AcquireEdgeLock(ctx context.Context, groupID, fromMemberID, toMemberID string) (release func(), acquired bool) {
	log := logger.GetLogger()
	key := edgeLockKey(groupID, fromMemberID, toMemberID)

	ok, err := s.client.SetNX(ctx, key, "1", s.lockTTL).Result()
	if err != nil {
		log.Warnw("Edge lock unavailable, relying on database constraint",
			"key", key, "error", err)
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}

	return func() {
		if err := s.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			log.Warnw("Failed to release edge lock", "key", key, "error", err)
		}
	}, true
}
