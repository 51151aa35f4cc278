package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/shareit-platform/service-booking/pkg/kafka"
	"github.com/shareit-platform/service-booking/pkg/metrics"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID int64     `json:"item_id" binding:"required,gt=0"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingStatsDTO holds aggregate booking counts.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingEventData is the payload of booking.* events.
type BookingEventData struct {
	BookingID  int64     `json:"booking_id"`
	ItemID     int64     `json:"item_id"`
	BookerID   int64     `json:"booker_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingService is the application service orchestrating booking use cases.
// Every write runs in one transaction; events are published after commit.
type BookingService struct {
	uow       UnitOfWork
	publisher EventPublisher
	metrics   *metrics.BookingMetrics
	clock     func() time.Time
	tracer    trace.Tracer
	logger    *zap.Logger
}

// BookingServiceOption customizes a BookingService.
type BookingServiceOption func(*BookingService)

// WithClock replaces the wall clock used for "now".
func WithClock(clock func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.clock = clock }
}

// WithBookingMetrics records booking outcomes on m.
func WithBookingMetrics(m *metrics.BookingMetrics) BookingServiceOption {
	return func(s *BookingService) { s.metrics = m }
}

// NewBookingService creates a new BookingService.
func NewBookingService(uow UnitOfWork, publisher EventPublisher, logger *zap.Logger, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		uow:       uow,
		publisher: publisher,
		clock:     func() time.Time { return time.Now().UTC() },
		tracer:    otel.Tracer(serviceName),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking creates a WAITING booking for bookerID. The availability check and
// the insert share one transaction holding the item's row lock. The booker is looked
// up only after the request itself passed the availability rules.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateBooking", trace.WithAttributes(
		attribute.Int64("booker.id", bookerID),
		attribute.Int64("item.id", req.ItemID),
	))
	defer span.End()

	now := s.clock()
	interval := bookingDomain.NewInterval(req.Start, req.End)

	var created *bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(tx *repository.Repositories) error {
		checker := bookingDomain.NewAvailabilityChecker(tx.Items, tx.Bookings)
		if err := checker.Check(ctx, req.ItemID, bookerID, interval, now); err != nil {
			return err
		}
		if err := requireUser(ctx, tx.Users, bookerID); err != nil {
			return err
		}

		bk, err := bookingDomain.NewBooking(req.ItemID, bookerID, interval, now)
		if err != nil {
			return err
		}
		created, err = tx.Bookings.Save(ctx, bk)
		return err
	})
	if err != nil {
		s.fail(span, "create", err)
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", created.ID()),
		zap.Int64("item_id", created.ItemID()),
		zap.Int64("booker_id", bookerID),
	)
	s.recordTransition(created)
	s.publishBookingEvent(ctx, BookingCreated, created, bookerID)

	result := toBookingDTO(created)
	return &result, nil
}

// SetApproval approves or rejects a waiting booking on behalf of the item owner.
func (s *BookingService) SetApproval(ctx context.Context, ownerID, bookingID int64, approved bool) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.SetApproval", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
		attribute.Bool("booking.approved", approved),
	))
	defer span.End()

	now := s.clock()
	var updated *bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		updated, err = bookingDomain.NewStateMachine(tx.Bookings, tx.Items).
			ApproveOrReject(ctx, bookingID, ownerID, approved, now)
		return err
	})
	if err != nil {
		s.fail(span, "approve", err)
		return nil, err
	}

	eventType := BookingRejected
	if approved {
		eventType = BookingApproved
	}
	s.logger.Info("booking decided",
		zap.Int64("booking_id", bookingID),
		zap.Int64("owner_id", ownerID),
		zap.String("status", updated.Status().String()),
	)
	s.recordTransition(updated)
	s.publishBookingEvent(ctx, eventType, updated, ownerID)

	result := toBookingDTO(updated)
	return &result, nil
}

// CancelBooking withdraws a waiting booking on behalf of its booker.
func (s *BookingService) CancelBooking(ctx context.Context, bookerID, bookingID int64) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CancelBooking", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
	))
	defer span.End()

	now := s.clock()
	var updated *bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		updated, err = bookingDomain.NewStateMachine(tx.Bookings, tx.Items).Cancel(ctx, bookingID, bookerID, now)
		return err
	})
	if err != nil {
		s.fail(span, "cancel", err)
		return nil, err
	}

	s.logger.Info("booking canceled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("booker_id", bookerID),
	)
	s.recordTransition(updated)
	s.publishBookingEvent(ctx, BookingCanceled, updated, bookerID)

	result := toBookingDTO(updated)
	return &result, nil
}

// GetBooking returns a booking to its booker or to the item owner.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*BookingDTO, error) {
	repos := s.uow.Repos()
	bk, err := bookingDomain.NewStateMachine(repos.Bookings, repos.Items).Get(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings lists the user's bookings as booker or as owner, filtered by state.
func (s *BookingService) ListBookings(ctx context.Context, userID int64, role bookingDomain.Role, state string) ([]BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListBookings", trace.WithAttributes(
		attribute.String("booking.role", string(role)),
		attribute.String("booking.state", state),
	))
	defer span.End()

	filter, err := bookingDomain.ParseState(state)
	if err != nil {
		return nil, err
	}

	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, userID); err != nil {
		return nil, err
	}

	bookings, err := bookingDomain.NewQueryEngine(repos.Bookings).List(ctx, userID, role, filter, s.clock())
	if err != nil {
		s.fail(span, "list", err)
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListAllBookings returns one page of all bookings, newest first (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.uow.Repos().Bookings.ListAll(ctx, page, limit)
	if err != nil {
		return domain.PaginatedResult[BookingDTO]{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	return domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit), nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.uow.Repos().Bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func requireUser(ctx context.Context, users bookingDomain.UserLookup, userID int64) error {
	exists, err := users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("User", strconv.FormatInt(userID, 10))
	}
	return nil
}

func (s *BookingService) fail(span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	code := domain.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
		s.logger.Error("booking operation failed", zap.String("operation", operation), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.Rejections.WithLabelValues(operation, code).Inc()
	}
}

func (s *BookingService) recordTransition(bk *bookingDomain.Booking) {
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(bk.Status().String()).Inc()
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, actorID int64) {
	data := BookingEventData{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		Start:      bk.Start(),
		End:        bk.End(),
		Status:     bk.Status().String(),
		ActorID:    actorID,
		OccurredAt: bk.UpdatedAt(),
	}
	s.publishEvent(ctx, TopicBookingEvents, eventType, strconv.FormatInt(bk.ID(), 10), data)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(serviceName, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Start:     bk.Start(),
		End:       bk.End(),
		Status:    bk.Status().String(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
