package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/metrics"
	"github.com/YelzhanWeb/floreria/internal/session"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	calls   []domain.Status
	roles   []domain.Role
	err     error
	block   chan struct{}
	started chan struct{}
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, order domain.Order, role domain.Role, status domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	r.calls = append(r.calls, status)
	r.roles = append(r.roles, role)
	r.mu.Unlock()

	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, &domain.RepositoryError{Message: "request timed out", Err: ctx.Err()}
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	updated := order.WithStatus(status)
	return &updated, nil
}

func (r *fakeOrderRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeStatusLog struct {
	entries []*domain.StatusLog
	err     error
}

func (l *fakeStatusLog) Append(ctx context.Context, entry *domain.StatusLog) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeStatusLog) History(ctx context.Context, orderID int) ([]*domain.StatusLog, error) {
	return l.entries, nil
}

type fakePublisher struct {
	msgs []interfaces.StatusUpdateMessage
	err  error
}

func (p *fakePublisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type harness struct {
	svc     *Service
	repo    *fakeOrderRepo
	log     *fakeStatusLog
	pub     *fakePublisher
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		repo:    &fakeOrderRepo{},
		log:     &fakeStatusLog{},
		pub:     &fakePublisher{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	all := append([]Option{
		WithStatusLog(h.log),
		WithPublisher(h.pub),
		WithMetrics(h.metrics),
	}, opts...)
	h.svc = NewService(func(session.Session) interfaces.OrderRepository { return h.repo }, logger.Nop(), all...)
	return h
}

var (
	admin    = session.Session{Token: "a", Role: domain.RoleAdmin, Subject: "admin@floreria.mx"}
	delivery = session.Session{Token: "d", Role: domain.RoleDelivery, Subject: "reparto@floreria.mx"}
	customer = session.Session{Token: "c", Role: domain.RoleCustomer}
)

func TestAdminMovesPreparedToOnTheWay(t *testing.T) {
	h := newHarness(t)
	order := domain.Order{ID: 10, CustomerName: "Ana", Status: domain.StatusPrepared}

	res, err := h.svc.RequestTransition(context.Background(), admin, order, domain.StatusOnTheWay, interfaces.Answer(true))
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, domain.StatusOnTheWay, res.Order.Status)
	assert.Equal(t, "Ana", res.Order.CustomerName)
	assert.Equal(t, domain.StatusPrepared, order.Status, "caller copy is a value")
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, h.repo.roles)

	require.Len(t, h.log.entries, 1)
	assert.Equal(t, domain.StatusPrepared, h.log.entries[0].FromStatus)
	assert.Equal(t, domain.StatusOnTheWay, h.log.entries[0].ToStatus)
	assert.Equal(t, "admin:admin@floreria.mx", h.log.entries[0].ChangedBy)

	require.Len(t, h.pub.msgs, 1)
	assert.Equal(t, "Elaborado", h.pub.msgs[0].OldLabel)
	assert.Equal(t, "En Camino", h.pub.msgs[0].NewLabel)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Transitions.WithLabelValues("admin", "En Camino", "applied")))
}

func TestAdminOnDeliveredOrderHasNoTransitions(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.svc.AvailableTransitions(domain.StatusDelivered, domain.RoleAdmin))

	for _, target := range []domain.Status{domain.StatusPrepared, domain.StatusOnTheWay, domain.StatusDelivered} {
		_, err := h.svc.RequestTransition(context.Background(), admin, domain.Order{ID: 1, Status: domain.StatusDelivered}, target, interfaces.Answer(true))
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	}
	assert.Zero(t, h.repo.callCount())
}

func TestDeliveryRepositoryFailureKeepsStatus(t *testing.T) {
	h := newHarness(t)
	h.repo.err = &domain.RepositoryError{Code: http.StatusInternalServerError, Message: "boom"}
	order := domain.Order{ID: 5, Status: domain.StatusOnTheWay}

	res, err := h.svc.RequestTransition(context.Background(), delivery, order, domain.StatusDelivered, interfaces.Answer(true))

	var repoErr *domain.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, http.StatusInternalServerError, repoErr.Code)

	var trErr *domain.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "repository_error", trErr.Reason())

	assert.False(t, res.Applied)
	assert.Equal(t, domain.StatusOnTheWay, res.Order.Status)
	assert.Empty(t, h.log.entries)
	assert.Empty(t, h.pub.msgs)
}

func TestDeliveryOnDeliveredOrderIsTerminal(t *testing.T) {
	h := newHarness(t)
	confirmAsked := false
	confirm := interfaces.ConfirmFunc(func(context.Context, string) (bool, error) {
		confirmAsked = true
		return true, nil
	})

	_, err := h.svc.RequestTransition(context.Background(), delivery, domain.Order{ID: 5, Status: domain.StatusDelivered}, domain.StatusDelivered, confirm)

	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	assert.False(t, confirmAsked)
	assert.Zero(t, h.repo.callCount())
}

func TestUnauthorizedTransitions(t *testing.T) {
	tests := []struct {
		name   string
		sess   session.Session
		status domain.Status
		target domain.Status
	}{
		{"delivery cannot prepare", delivery, domain.StatusReserved, domain.StatusPrepared},
		{"customer has no edges", customer, domain.StatusReserved, domain.StatusPrepared},
		{"admin cannot reapply current", admin, domain.StatusOnTheWay, domain.StatusOnTheWay},
		{"admin cannot go back to reserved", admin, domain.StatusPrepared, domain.StatusReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.RequestTransition(context.Background(), tt.sess, domain.Order{ID: 2, Status: tt.status}, tt.target, interfaces.Answer(true))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Zero(t, h.repo.callCount())
		})
	}
}

func TestAdminMayMoveBackwards(t *testing.T) {
	h := newHarness(t)
	res, err := h.svc.RequestTransition(context.Background(), admin, domain.Order{ID: 3, Status: domain.StatusOnTheWay}, domain.StatusPrepared, interfaces.Answer(true))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPrepared, res.Order.Status)
}

func TestDeclinedConfirmationIsNoop(t *testing.T) {
	h := newHarness(t)
	var prompt string
	confirm := interfaces.ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return false, nil
	})

	res, err := h.svc.RequestTransition(context.Background(), admin, domain.Order{ID: 4, Status: domain.StatusReserved}, domain.StatusPrepared, confirm)
	require.NoError(t, err)

	assert.False(t, res.Applied)
	assert.Equal(t, domain.StatusReserved, res.Order.Status)
	assert.Contains(t, prompt, `"Elaborado"`)
	assert.Zero(t, h.repo.callCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Transitions.WithLabelValues("admin", "Elaborado", "declined")))
}

func TestConfirmerErrorStopsTransition(t *testing.T) {
	h := newHarness(t)
	confirm := interfaces.ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("terminal closed")
	})

	_, err := h.svc.RequestTransition(context.Background(), admin, domain.Order{ID: 4, Status: domain.StatusReserved}, domain.StatusPrepared, confirm)
	assert.Error(t, err)
	assert.Zero(t, h.repo.callCount())
}

func TestConcurrentTransitionForSameOrderIsRejected(t *testing.T) {
	h := newHarness(t)
	h.repo.block = make(chan struct{})
	h.repo.started = make(chan struct{})
	order := domain.Order{ID: 8, Status: domain.StatusPrepared}

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.RequestTransition(context.Background(), admin, order, domain.StatusOnTheWay, interfaces.Answer(true))
		done <- err
	}()
	<-h.repo.started

	_, err := h.svc.RequestTransition(context.Background(), admin, order, domain.StatusDelivered, interfaces.Answer(true))
	assert.ErrorIs(t, err, domain.ErrTransitionInFlight)

	close(h.repo.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.repo.callCount())

	// released after completion
	h.repo.block = nil
	h.repo.started = nil
	_, err = h.svc.RequestTransition(context.Background(), admin, order.WithStatus(domain.StatusOnTheWay), domain.StatusDelivered, interfaces.Answer(true))
	assert.NoError(t, err)
}

func TestRequestTimeoutSurfacesRepositoryError(t *testing.T) {
	h := newHarness(t, WithRequestTimeout(20*time.Millisecond))
	h.repo.block = make(chan struct{})
	defer close(h.repo.block)

	_, err := h.svc.RequestTransition(context.Background(), delivery, domain.Order{ID: 9, Status: domain.StatusOnTheWay}, domain.StatusDelivered, interfaces.Answer(true))

	var repoErr *domain.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, 0, repoErr.Code)
	assert.Contains(t, repoErr.Message, "timed out")
}

func TestCallerCancellationDoesNotAbortIssuedCall(t *testing.T) {
	h := newHarness(t)
	h.repo.block = make(chan struct{})
	h.repo.started = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.RequestTransition(ctx, admin, domain.Order{ID: 11, Status: domain.StatusReserved}, domain.StatusPrepared, interfaces.Answer(true))
		done <- err
	}()

	<-h.repo.started
	cancel()
	close(h.repo.block)

	require.NoError(t, <-done)
	require.Len(t, h.log.entries, 1)
}

func TestSideEffectFailuresAreNotSurfaced(t *testing.T) {
	h := newHarness(t)
	h.log.err = errors.New("db down")
	h.pub.err = errors.New("broker down")

	res, err := h.svc.RequestTransition(context.Background(), delivery, domain.Order{ID: 12, Status: domain.StatusOnTheWay}, domain.StatusDelivered, interfaces.Answer(true))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, domain.StatusDelivered, res.Order.Status)
}

func TestNilConfirmerIsRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.RequestTransition(context.Background(), admin, domain.Order{ID: 13, Status: domain.StatusReserved}, domain.StatusPrepared, nil)
	assert.Error(t, err)
	assert.Zero(t, h.repo.callCount())
}
