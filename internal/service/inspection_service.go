package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/draft"
	"github.com/example/p2h/backend/internal/models"
	"github.com/example/p2h/backend/internal/mq"
	"github.com/example/p2h/backend/internal/notify"
	"github.com/example/p2h/backend/internal/repository"
)

// Taxonomy for the approval flow. NotFound is terminal; AlreadyApproved is
// informational and never corrupts the first approval.
var (
	ErrNotFound        = errors.New("inspection not found")
	ErrAlreadyApproved = errors.New("inspection already approved")
)

// Notifier delivers the supervisor message; failures downgrade to a flag.
type Notifier interface {
	Send(ctx context.Context, target, message string) error
}

// InspectionService contains the submission/status engine and the approval
// state machine.
type InspectionService struct {
	inspections     *repository.InspectionRepository
	users           *repository.UserRepository
	notifier        Notifier
	events          mq.Publisher
	frontendURL     string
	supervisorPhone string
}

// NewInspectionService builds a service with dependencies. notifier and
// events may be nil; both are best-effort collaborators.
func NewInspectionService(inspections *repository.InspectionRepository, users *repository.UserRepository, notifier Notifier, events mq.Publisher, frontendURL, supervisorPhone string) *InspectionService {
	return &InspectionService{
		inspections:     inspections,
		users:           users,
		notifier:        notifier,
		events:          events,
		frontendURL:     frontendURL,
		supervisorPhone: supervisorPhone,
	}
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	ID       uint
	Status   models.InspectionStatus
	Notified bool
}

// ClassifyReadiness computes the unit readiness from the answers: NOT READY
// when any condition answer is exactly R. K and B defects do not by
// themselves flip readiness; that threshold matches the deployed form
// handling and must not be widened without a policy decision.
func ClassifyReadiness(answers checklist.AnswerSet) models.InspectionStatus {
	for _, a := range answers {
		if a.Kind == checklist.AnswerCondition && a.Code == checklist.ConditionBroken {
			return models.StatusNotReady
		}
	}
	return models.StatusReady
}

// newApprovalToken returns 24 hex chars from a cryptographically strong
// source. The token is the sole public lookup key for the approval flow.
func newApprovalToken() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate approval token")
	}
	return hex.EncodeToString(buf), nil
}

// Submit classifies, persists and announces a finished wizard payload. The
// record is durable regardless of the notification outcome; Notified only
// reports whether the supervisor message went out.
func (s *InspectionService) Submit(ctx context.Context, operatorID string, meta draft.Metadata, answers checklist.AnswerSet) (SubmitResult, error) {
	token, err := newApprovalToken()
	if err != nil {
		return SubmitResult{}, err
	}

	payload, err := json.Marshal(answers)
	if err != nil {
		return SubmitResult{}, errors.WithStack(err)
	}

	hm, _ := strconv.ParseFloat(meta.HMStart, 64)
	if operatorID == "" {
		operatorID = "unknown"
	}

	rec := models.Inspection{
		UnitCode:      meta.UnitCode,
		Date:          meta.Date,
		Shift:         meta.Shift,
		HMStart:       hm,
		OperatorID:    operatorID,
		OperatorName:  meta.OperatorName,
		Status:        ClassifyReadiness(answers),
		Answers:       payload,
		ApprovalToken: token,
	}
	if err := s.inspections.Create(ctx, &rec); err != nil {
		return SubmitResult{}, err
	}

	notified := s.notifySupervisor(ctx, &rec)
	s.publishEvent(ctx, "inspection.submitted", &rec)

	return SubmitResult{ID: rec.ID, Status: rec.Status, Notified: notified}, nil
}

// FetchByToken returns the record the approval token points at.
func (s *InspectionService) FetchByToken(ctx context.Context, token string) (*models.Inspection, error) {
	rec, err := s.inspections.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Approve performs the one-way AwaitingApproval -> Approved transition.
// Re-approval attempts are rejected idempotently and never overwrite the
// first signature or timestamp.
func (s *InspectionService) Approve(ctx context.Context, token, signature string) error {
	if signature == "" {
		return &checklist.ValidationError{Field: "supervisorSignature", Reason: "required"}
	}

	rows, err := s.inspections.Approve(ctx, token, signature, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		rec, ferr := s.inspections.FindByToken(ctx, token)
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if ferr != nil {
			return ferr
		}
		if rec.Approved() {
			return ErrAlreadyApproved
		}
		return errors.Errorf("approval of token %s changed no rows", token)
	}

	rec, err := s.inspections.FindByToken(ctx, token)
	if err == nil {
		s.publishEvent(ctx, "inspection.approved", rec)
	}
	return nil
}

// ApprovalLink builds the public link embedded in the supervisor message.
func (s *InspectionService) ApprovalLink(token string) string {
	return fmt.Sprintf("%s/approve/%s", s.frontendURL, token)
}

func (s *InspectionService) notifySupervisor(ctx context.Context, rec *models.Inspection) bool {
	if s.notifier == nil {
		return false
	}

	phone := s.supervisorPhone
	name := "Pengawas"
	if phone == "" && s.users != nil {
		contact, err := s.users.SupervisorContact(ctx)
		if err != nil {
			logrus.WithError(err).Warn("no supervisor contact configured")
			return false
		}
		phone = contact.PhoneNumber
		name = contact.Name
	}
	if phone == "" {
		logrus.Warn("no supervisor phone configured, skipping notification")
		return false
	}

	hm := "-"
	if rec.HMStart > 0 {
		hm = strconv.FormatFloat(rec.HMStart, 'f', -1, 64)
	}
	message := fmt.Sprintf(
		"*NOTIFIKASI P2H - PERLU APPROVAL*\n\n"+
			"Operator *%s* telah menyelesaikan inspeksi P2H.\n\n"+
			"*Detail Inspeksi:*\n"+
			"- Unit: %s\n"+
			"- Tanggal: %s\n"+
			"- Shift: %s\n"+
			"- HM: %s\n"+
			"- Status: %s\n"+
			"- ID Inspeksi: #%d\n\n"+
			"*Klik link untuk approve:*\n%s\n\n"+
			"_Link ini aman dan khusus untuk inspeksi ini._",
		rec.OperatorName, rec.UnitCode, rec.Date, rec.Shift, hm, rec.Status, rec.ID,
		s.ApprovalLink(rec.ApprovalToken),
	)

	if err := s.notifier.Send(ctx, notify.FormatPhone(phone), message); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"unit":       rec.UnitCode,
			"supervisor": name,
		}).Warn("supervisor notification failed")
		return false
	}
	logrus.WithFields(logrus.Fields{
		"unit":       rec.UnitCode,
		"supervisor": name,
	}).Info("supervisor notified")
	return true
}

func (s *InspectionService) publishEvent(ctx context.Context, event string, rec *models.Inspection) {
	if s.events == nil {
		return
	}
	payload := map[string]any{
		"eventId":      uuid.NewString(),
		"event":        event,
		"inspectionId": rec.ID,
		"unitCode":     rec.UnitCode,
		"status":       rec.Status,
		"operator":     rec.OperatorName,
		"occurredAt":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, event, payload); err != nil {
		logrus.WithError(err).WithField("event", event).Warn("publish inspection event failed")
	}
}
