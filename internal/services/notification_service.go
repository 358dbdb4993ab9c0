package services

import (
	"context"
	"time"

	"mingle-server/internal/domain/notification"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/events"
	"mingle-server/internal/repository"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	bus      events.Bus
	log      *logger.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	bus events.Bus,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, bus: bus, log: log}
}

// NotificationView is a notification joined with its actor's profile.
type NotificationView struct {
	Notification notification.Notification
	Actor        user.User
}

// NotificationPayload is the socket rendering of a view: the same camelCase
// shape the notification list endpoint returns, so clients decode one schema
// on both paths.
type NotificationPayload struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Actor      ActorPayload `json:"actor"`
	SourceType string       `json:"sourceType"`
	SourceID   string       `json:"sourceId"`
	Seen       bool         `json:"seen"`
	CreatedAt  string       `json:"createdAt"`
}

type ActorPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

func (v NotificationView) Payload() NotificationPayload {
	ref := v.Notification.Source()
	p := NotificationPayload{
		ID:         v.Notification.ID.String(),
		Type:       string(v.Notification.Type),
		SourceType: string(ref.Type),
		SourceID:   ref.ID.String(),
		Seen:       v.Notification.Seen.Valid,
		CreatedAt:  v.Notification.CreatedAt.Format(time.RFC3339),
		Actor: ActorPayload{
			ID:        v.Actor.ID.String(),
			FirstName: v.Actor.FirstName,
			LastName:  v.Actor.LastName,
		},
	}
	if v.Actor.Avatar.Valid {
		p.Actor.Avatar = v.Actor.Avatar.String
	}
	return p
}

// Notify records a notification and pushes it to the recipient's active
// connections. A user never hears about their own action: recipient == actor
// is a silent no-op.
func (s *NotificationService) Notify(ctx context.Context, recipientID, actorID uuid.UUID, ref notification.SourceRef) error {
	if recipientID == actorID {
		return nil
	}

	n, err := notification.New(recipientID, actorID, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return err
	}

	view := NotificationView{Notification: n}
	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		view.Actor = actor
	}
	// Best effort: a recipient with no open sockets reconciles from the
	// stored row on their next visit.
	if err := s.bus.PublishToUser(ctx, recipientID, events.EventNotification, view.Payload()); err != nil {
		s.log.Warnf("push notification %s: %v", n.ID, err)
	}
	return nil
}

// MarkSeen stamps the given notifications as seen, restricted to rows owned
// by userID. Foreign ids in the list are ignored rather than rejected.
func (s *NotificationService) MarkSeen(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return s.repo.MarkSeen(ctx, userID, ids)
}

// CascadeDelete removes every notification referencing any of the given
// source entities. Callers delete the entities themselves; this routine owns
// only the notification side of the cascade.
func (s *NotificationService) CascadeDelete(ctx context.Context, refs ...notification.SourceRef) error {
	return s.repo.DeleteBySources(ctx, refs)
}

func (s *NotificationService) ListGeneral(ctx context.Context, userID uuid.UUID) ([]NotificationView, error) {
	notifications, err := s.repo.ListGeneral(ctx, userID)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]uuid.UUID, 0, len(notifications))
	dedup := map[uuid.UUID]bool{}
	for _, n := range notifications {
		if !dedup[n.ActorID] {
			dedup[n.ActorID] = true
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors, err := s.userRepo.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]user.User, len(actors))
	for _, a := range actors {
		profiles[a.ID] = a
	}

	views := make([]NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, NotificationView{Notification: n, Actor: profiles[n.ActorID]})
	}
	return views, nil
}

func (s *NotificationService) CountUnseenGeneral(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnseenGeneral(ctx, userID)
}
