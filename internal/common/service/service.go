// Package service provides the health-state tracking shared by the
// control loop and anything else in the tree that wants a simple
// healthy/degraded/unhealthy status exposed over the REST health check.
package service

import (
	"context"
	"sync"
	"time"
)

// HealthStatus reports a service's current status, a human-readable
// reason, and when that status last changed — useful for an operator
// deciding whether a "degraded" reading is fresh or stale.
type HealthStatus struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is anything with a lifecycle and a health status.
type Service interface {
	Initialize(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() HealthStatus
	Name() string
}

// BaseService tracks a named service's health state. Tracker holds one in
// a field rather than implementing its own mutex-guarded status field.
type BaseService struct {
	mu     sync.RWMutex
	name   string
	health HealthStatus
	now    func() time.Time
}

// NewBaseService creates a base service with the given name, starting in
// an "unknown" state until Start or one of the SetXxx methods runs.
func NewBaseService(name string) *BaseService {
	return &BaseService{
		name: name,
		health: HealthStatus{
			Status:  "unknown",
			Message: "not started",
		},
		now: time.Now,
	}
}

// Name returns the service name.
func (s *BaseService) Name() string {
	return s.name
}

// Health returns the current health status.
func (s *BaseService) Health() HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// SetHealthy marks the service healthy with the given message.
func (s *BaseService) SetHealthy(msg string) {
	s.setStatus("healthy", msg)
}

// SetUnhealthy marks the service unhealthy with the given message.
func (s *BaseService) SetUnhealthy(msg string) {
	s.setStatus("unhealthy", msg)
}

// SetDegraded marks the service degraded with the given message, for a
// state that is running but not performing as expected (e.g. a stopped
// control loop that exited for a non-error reason).
func (s *BaseService) SetDegraded(msg string) {
	s.setStatus("degraded", msg)
}

func (s *BaseService) setStatus(status, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = HealthStatus{
		Status:    status,
		Message:   msg,
		UpdatedAt: s.now(),
	}
}

// Initialize is a no-op default that embedding types may override.
func (s *BaseService) Initialize(ctx context.Context) error {
	return nil
}

// Start marks the service healthy; embedding types may override.
func (s *BaseService) Start(ctx context.Context) error {
	s.SetHealthy("service started")
	return nil
}

// Stop marks the service unhealthy; embedding types may override.
func (s *BaseService) Stop(ctx context.Context) error {
	s.SetUnhealthy("service stopped")
	return nil
}
