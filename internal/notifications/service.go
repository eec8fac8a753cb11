package notifications

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
	"github.com/driveline-dms/driveline/jobs"
)

// Enqueuer hands delivery work to the background queue. jobs.Client
// implements it; tests stub it.
type Enqueuer interface {
	EnqueueNotificationDelivery(ctx context.Context, payload jobs.NotificationDeliverPayload) error
}

// Service owns the notification outbox. Rows are written first, then a
// delivery task is enqueued; a failed enqueue leaves the row pending for the
// next sweep rather than losing the message.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	gate     *rbac.Gate
	audit    *auditlog.Recorder
	queue    Enqueuer
	validate *validator.Validate
}

// NewService constructs a Service instance.
func NewService(logger *slog.Logger, repo Repository, gate *rbac.Gate, audit *auditlog.Recorder, queue Enqueuer) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		audit:    audit,
		queue:    queue,
		validate: validator.New(),
	}
}

// List returns a page of notifications and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Notification, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single notification.
func (s *Service) Get(ctx context.Context, id int64) (*Notification, error) {
	return s.repo.Get(ctx, id)
}

// Create queues a notification on behalf of the acting identity.
func (s *Service) Create(ctx context.Context, req CreateNotificationRequest) (*Notification, error) {
	if err := s.gate.Require(ctx, shared.PermNotificationsCreate); err != nil {
		return nil, err
	}
	req.Recipient = strings.TrimSpace(req.Recipient)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if req.Channel == "" {
		req.Channel = "email"
	}
	created, err := s.enqueue(ctx, Notification{
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
		Channel:   req.Channel,
		Status:    "pending",
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "notification",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"recipient": created.Recipient},
	})
	return created, nil
}

// Notify stores and dispatches a system-generated message. Other modules
// call it outside any request identity, so it is not gated.
func (s *Service) Notify(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" || subject == "" {
		return shared.Invalidf("notification needs recipient and subject")
	}
	_, err := s.enqueue(ctx, Notification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Channel:   "email",
		Status:    "pending",
	})
	return err
}

func (s *Service) enqueue(ctx context.Context, n Notification) (*Notification, error) {
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	if s.queue != nil {
		err = s.queue.EnqueueNotificationDelivery(ctx, jobs.NotificationDeliverPayload{
			NotificationID: created.ID,
			Recipient:      created.Recipient,
			Subject:        created.Subject,
			Body:           created.Body,
		})
		if err != nil {
			s.logger.Error("enqueue notification delivery",
				slog.Any("error", err),
				slog.Int64("notification_id", created.ID))
		}
	}
	return created, nil
}

// Update edits a pending notification.
func (s *Service) Update(ctx context.Context, id int64, req UpdateNotificationRequest) (*Notification, error) {
	if err := s.gate.Require(ctx, shared.PermNotificationsEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != "pending" {
		return nil, shared.Invalidf("only pending notifications can change")
	}
	if req.Subject != nil {
		trimmed := strings.TrimSpace(*req.Subject)
		if trimmed == "" {
			return nil, shared.Invalidf("subject must not be blank")
		}
		current.Subject = trimmed
	}
	if req.Body != nil {
		current.Body = *req.Body
	}
	if req.Channel != nil {
		current.Channel = *req.Channel
	}
	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "update",
		Entity:   "notification",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a notification.
func (s *Service) Delete(ctx context.Context, id int64) (*Notification, error) {
	if err := s.gate.Require(ctx, shared.PermNotificationsDelete); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "notification",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
