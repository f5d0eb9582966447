package notification

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		// FilterNotifications applies AND operation on available QueryFilter fields.
		FilterNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
		SetNotificationRead(ctx context.Context, id string, read bool) (Notification, error)
		DeleteNotification(ctx context.Context, id string) error
	}

	// Roster resolves the student record (and email) of an evaluation owner.
	Roster interface {
		GetByUserID(ctx context.Context, userID string) (student.Student, error)
	}

	Service struct {
		repo    Repository
		roster  Roster
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ core.EventHandler = (*Service)(nil)

func NewService(repo Repository, roster Roster, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, roster: roster, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.Type = core.CleanString(nn.Type, true /* lower */)
	nn.RecipientID = core.CleanString(nn.RecipientID)
	nn.RecipientRole = core.CleanString(nn.RecipientRole, true /* lower */)

	if err := core.Validate.Struct(nn); err != nil {
		return Notification{}, err
	}

	notif := Notification{
		ID:            uuid.NewString(),
		Title:         nn.Title,
		Message:       nn.Message,
		Type:          nn.Type,
		RecipientID:   nn.RecipientID,
		RecipientRole: nn.RecipientRole,
		CreatedAt:     NowFunc().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

// Query returns the matching notifications, newest first, with the unread count.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) (List, error) {
	filter.RecipientID = core.CleanString(filter.RecipientID)
	filter.RecipientRole = core.CleanString(filter.RecipientRole, true /* lower */)

	notifs, err := svc.repo.FilterNotifications(ctx, filter)
	if err != nil {
		return List{}, err
	}
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })

	list := List{Notifications: notifs, Total: len(notifs)}
	for _, n := range notifs {
		if !n.Read {
			list.UnreadCount++
		}
	}
	return list, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) MarkRead(ctx context.Context, mr MarkRead) (Notification, error) {
	mr.ID = core.CleanString(mr.ID)
	if err := core.Validate.Struct(mr); err != nil {
		return Notification{}, err
	}
	read := true
	if mr.Read != nil {
		read = *mr.Read
	}
	return svc.repo.SetNotificationRead(ctx, mr.ID, read)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNotification(ctx, id)
}

// HandleEvent notifies the people concerned by an evaluation state change.
func (svc *Service) HandleEvent(ctx context.Context, event core.Event) error {
	switch event.Type {
	case core.EventEvaluationSubmitted:
		_, err := svc.Create(ctx, NewNotification{
			Title:         "Phiếu đánh giá mới được nộp",
			Message:       fmt.Sprintf("Sinh viên %s đã nộp phiếu đánh giá %s năm học %s.", svc.studentName(ctx, event.UserID), event.Semester, event.AcademicYear),
			Type:          TypeInfo,
			RecipientRole: core.RoleTeacher,
		})
		return errors.Wrap(err, "creating submitted notification")

	case core.EventEvaluationGraded:
		var score string
		if event.FinalScore != nil {
			score = fmt.Sprintf(" Điểm cuối cùng: %d/100.", *event.FinalScore)
		}
		notif, err := svc.Create(ctx, NewNotification{
			Title:       "Phiếu đánh giá đã được chấm điểm",
			Message:     fmt.Sprintf("Phiếu đánh giá %s năm học %s của bạn đã được chấm điểm.%s", event.Semester, event.AcademicYear, score),
			Type:        TypeSuccess,
			RecipientID: event.UserID,
		})
		if err != nil {
			return errors.Wrap(err, "creating graded notification")
		}
		svc.sendGradedMail(ctx, event, notif)
		return nil

	default:
		svc.logger.Warn("unknown event type: "+event.Type, map[string]interface{}{"evaluationId": event.EvaluationID})
		return nil
	}
}

func (svc *Service) studentName(ctx context.Context, userID string) string {
	if st, err := svc.roster.GetByUserID(ctx, userID); err == nil {
		return st.FullName
	}
	return userID
}

func (svc *Service) sendGradedMail(ctx context.Context, event core.Event, notif Notification) {
	st, err := svc.roster.GetByUserID(ctx, event.UserID)
	if err != nil {
		if err != student.ErrNotFound {
			svc.logger.Error("resolving student for graded mail", errors.Wrap(err, "roster"))
		}
		return
	}
	if st.Email == "" {
		return
	}

	var finalScore int
	if event.FinalScore != nil {
		finalScore = *event.FinalScore
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: st.FullName, Address: st.Email}},
		Subject:      notif.Title,
		TemplateName: "evaluation_graded",
		TemplateData: map[string]interface{}{
			"Name":         st.FullName,
			"Semester":     event.Semester,
			"AcademicYear": event.AcademicYear,
			"FinalScore":   finalScore,
		},
	})
}
