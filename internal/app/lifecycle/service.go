package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/metrics"
	"github.com/YelzhanWeb/floreria/internal/session"
)

const DefaultRequestTimeout = 10 * time.Second

// Service is the order lifecycle manager: it decides which status changes a
// role may apply and carries them out against the shop API.
type Service struct {
	repos          interfaces.OrderRepositoryFactory
	statusLog      interfaces.StatusLogRepository
	publisher      interfaces.MessagePublisher
	logger         logger.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	inflight       *inflight
	requestTimeout time.Duration
	now            func() time.Time
}

type Option func(*Service)

// WithStatusLog records applied transitions locally.
func WithStatusLog(repo interfaces.StatusLogRepository) Option {
	return func(s *Service) { s.statusLog = repo }
}

// WithPublisher announces applied transitions.
func WithPublisher(p interfaces.MessagePublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

func NewService(repos interfaces.OrderRepositoryFactory, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		repos:          repos,
		logger:         logger,
		tracer:         otel.Tracer("floreria/lifecycle"),
		inflight:       newInflight(),
		requestTimeout: DefaultRequestTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AvailableTransitions(current domain.Status, role domain.Role) []domain.Status {
	return domain.AvailableTransitions(current, role)
}

// Prompt is the confirmation question shown before a change to target.
func Prompt(target domain.Status) string {
	return fmt.Sprintf("Are you sure you want to change the status to %q?", target.String())
}

// RequestTransition moves order to target on behalf of sess.
//
// Refusals (terminal order, role without the edge, a change already running for
// the order) happen before any network call. A declined confirmation returns the
// order unchanged with Applied=false and no error. The order in the result only
// carries the new status once the API confirmed it.
func (s *Service) RequestTransition(ctx context.Context, sess session.Session, order domain.Order, target domain.Status, confirm interfaces.Confirmer) (interfaces.TransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.RequestTransition")
	defer span.End()
	span.SetAttributes(
		attribute.Int("order.id", order.ID),
		attribute.String("order.status", order.Status.String()),
		attribute.String("order.target", target.String()),
		attribute.String("session.role", sess.Role.String()),
	)

	result := interfaces.TransitionResult{Order: order, Prompt: Prompt(target)}
	details := map[string]interface{}{
		"order_id": order.ID,
		"from":     order.Status.String(),
		"to":       target.String(),
		"role":     sess.Role.String(),
	}

	if err := domain.CheckTransition(order.Status, target, sess.Role); err != nil {
		return result, s.refuse(span, order, target, sess.Role, details, err)
	}

	release, ok := s.inflight.acquire(order.ID)
	if !ok {
		return result, s.refuse(span, order, target, sess.Role, details, domain.ErrTransitionInFlight)
	}
	defer release()

	if confirm == nil {
		return result, errors.New("a confirmer is required to change an order status")
	}
	confirmed, err := confirm.Confirm(ctx, result.Prompt)
	if err != nil {
		span.RecordError(err)
		return result, fmt.Errorf("confirmation failed: %w", err)
	}
	if !confirmed {
		s.logger.Debug("transition_declined", "Status change declined by user", "", details)
		s.metrics.ObserveTransition(sess.Role.String(), target.String(), "declined")
		span.AddEvent("confirmation declined")
		return result, nil
	}

	s.logger.Debug("transition_requested", fmt.Sprintf("Changing order %d to %s", order.ID, target), "", details)

	// Once issued the call runs to completion or timeout, whatever the caller does.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.requestTimeout)
	defer cancel()

	updated, err := s.repos(sess).UpdateStatus(callCtx, order, sess.Role, target)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return result, s.refuse(span, order, target, sess.Role, details, domain.ErrUnauthorized)
		}
		var repoErr *domain.RepositoryError
		if !errors.As(err, &repoErr) {
			repoErr = &domain.RepositoryError{Message: err.Error(), Err: err}
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && repoErr.Code == 0 {
			repoErr.Message = fmt.Sprintf("request timed out after %s", s.requestTimeout)
		}
		details["code"] = repoErr.Code
		s.logger.Error("transition_failed", "Failed to update order status", "", details, repoErr)
		span.RecordError(repoErr)
		span.SetStatus(codes.Error, repoErr.Error())
		s.metrics.ObserveTransition(sess.Role.String(), target.String(), "repository_error")
		return result, &domain.TransitionError{OrderID: order.ID, Target: target, Err: repoErr}
	}

	updated.Status = target
	result.Order = *updated
	result.Applied = true

	s.afterApplied(ctx, sess, order.Status, *updated)

	s.logger.Info("transition_applied", fmt.Sprintf("Order %d is now %s", order.ID, target), "", details)
	s.metrics.ObserveTransition(sess.Role.String(), target.String(), "applied")
	span.AddEvent("status updated")
	return result, nil
}

func (s *Service) refuse(span trace.Span, order domain.Order, target domain.Status, role domain.Role, details map[string]interface{}, reason error) error {
	err := &domain.TransitionError{OrderID: order.ID, Target: target, Err: reason}
	s.logger.Debug("transition_refused", err.Error(), "", details)
	s.metrics.ObserveTransition(role.String(), target.String(), err.Reason())
	span.SetStatus(codes.Error, err.Reason())
	return err
}

// afterApplied records and announces a confirmed change. Failures are logged only:
// the remote status has already changed.
func (s *Service) afterApplied(ctx context.Context, sess session.Session, from domain.Status, order domain.Order) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()

	if s.statusLog != nil {
		entry := &domain.StatusLog{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   order.Status,
			Role:       sess.Role,
			ChangedBy:  sess.Actor(),
			ChangedAt:  now,
		}
		if err := s.statusLog.Append(ctx, entry); err != nil {
			s.logger.Error("status_log_failed", "Failed to record status change", "", map[string]interface{}{"order_id": order.ID}, err)
		}
	}

	if s.publisher != nil {
		msg := interfaces.StatusUpdateMessage{
			OrderID:   order.ID,
			OldStatus: from,
			NewStatus: order.Status,
			OldLabel:  from.String(),
			NewLabel:  order.Status.String(),
			Role:      sess.Role.String(),
			ChangedBy: sess.Actor(),
			Timestamp: now,
		}
		if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", "", map[string]interface{}{"order_id": order.ID}, err)
		}
	}
}
