package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/draft"
	"github.com/example/p2h/backend/internal/models"
	"github.com/example/p2h/backend/internal/mq"
	"github.com/example/p2h/backend/internal/repository"
)

type recordingNotifier struct {
	targets  []string
	messages []string
	err      error
}

func (n *recordingNotifier) Send(_ context.Context, target, message string) error {
	if n.err != nil {
		return n.err
	}
	n.targets = append(n.targets, target)
	n.messages = append(n.messages, message)
	return nil
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

func newTestService(t *testing.T, notifier Notifier, events *recordingPublisher) (*InspectionService, *repository.InspectionRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Inspection{}))

	inspections := repository.NewInspectionRepository(db)
	users := repository.NewUserRepository(db)
	var pub mq.Publisher
	if events != nil {
		pub = events
	}
	svc := NewInspectionService(inspections, users, notifier, pub, "http://frontend", "081234567890")
	return svc, inspections
}

func readyAnswers() checklist.AnswerSet {
	return checklist.AnswerSet{
		"oli_mesin": checklist.ConditionAnswer(checklist.ConditionNormal, ""),
		"radiator":  checklist.ConditionAnswer(checklist.ConditionAdequate, ""),
		"shoe":      checklist.ConditionAnswer(checklist.ConditionDeficient, "sedikit aus"),
	}
}

func testMetadata() draft.Metadata {
	return draft.Metadata{
		OperatorName: "Budi",
		UnitCode:     "EX-201",
		Shift:        "Shift 1",
		HMStart:      "1250.5",
		Date:         "2026-08-30",
	}
}

func TestClassifyReadiness(t *testing.T) {
	assert.Equal(t, models.StatusReady, ClassifyReadiness(checklist.AnswerSet{}))
	assert.Equal(t, models.StatusReady, ClassifyReadiness(readyAnswers()))

	// K and B defects alone do not flip readiness
	defective := checklist.AnswerSet{
		"radiator": checklist.ConditionAnswer(checklist.ConditionLeaking, "rembes"),
		"shoe":     checklist.ConditionAnswer(checklist.ConditionDeficient, "aus"),
	}
	assert.Equal(t, models.StatusReady, ClassifyReadiness(defective))

	// a single R makes the whole unit NOT READY
	defective["boom"] = checklist.ConditionAnswer(checklist.ConditionBroken, "retak")
	assert.Equal(t, models.StatusNotReady, ClassifyReadiness(defective))
}

func TestSubmitPersistsRecord(t *testing.T) {
	notifier := &recordingNotifier{}
	events := &recordingPublisher{}
	svc, inspections := newTestService(t, notifier, events)

	res, err := svc.Submit(context.Background(), "OP-1", testMetadata(), readyAnswers())
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, models.StatusReady, res.Status)
	assert.True(t, res.Notified)

	rec, err := inspections.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "EX-201", rec.UnitCode)
	assert.Equal(t, "OP-1", rec.OperatorID)
	assert.Equal(t, 1250.5, rec.HMStart)
	assert.Len(t, rec.ApprovalToken, 24)
	assert.Nil(t, rec.ApprovedAt)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(rec.Answers, &flat))
	assert.Equal(t, "K", flat["shoe"])
	assert.Equal(t, "sedikit aus", flat["shoe_comment"])

	assert.Equal(t, []string{"inspection.submitted"}, events.keys)
	require.Len(t, notifier.targets, 1)
	assert.Equal(t, "6281234567890", notifier.targets[0])
	assert.Contains(t, notifier.messages[0], "EX-201")
	assert.Contains(t, notifier.messages[0], "http://frontend/approve/"+rec.ApprovalToken)
}

func TestSubmitTokensAreUnique(t *testing.T) {
	svc, inspections := newTestService(t, nil, nil)

	res1, err := svc.Submit(context.Background(), "OP-1", testMetadata(), readyAnswers())
	require.NoError(t, err)
	res2, err := svc.Submit(context.Background(), "OP-1", testMetadata(), readyAnswers())
	require.NoError(t, err)

	rec1, err := inspections.FindByID(context.Background(), res1.ID)
	require.NoError(t, err)
	rec2, err := inspections.FindByID(context.Background(), res2.ID)
	require.NoError(t, err)
	assert.NotEqual(t, rec1.ApprovalToken, rec2.ApprovalToken)
}

func TestSubmitSurvivesNotificationFailure(t *testing.T) {
	notifier := &recordingNotifier{err: assert.AnError}
	svc, inspections := newTestService(t, notifier, nil)

	res, err := svc.Submit(context.Background(), "OP-1", testMetadata(), readyAnswers())
	require.NoError(t, err)
	assert.False(t, res.Notified)

	_, err = inspections.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
}

func TestSubmitDefaultsOperatorID(t *testing.T) {
	svc, inspections := newTestService(t, nil, nil)

	res, err := svc.Submit(context.Background(), "", testMetadata(), readyAnswers())
	require.NoError(t, err)

	rec, err := inspections.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "unknown", rec.OperatorID)
}

func TestApproveTransition(t *testing.T) {
	events := &recordingPublisher{}
	svc, inspections := newTestService(t, nil, events)

	res, err := svc.Submit(context.Background(), "OP-1", testMetadata(), readyAnswers())
	require.NoError(t, err)
	rec, err := inspections.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	token := rec.ApprovalToken

	require.NoError(t, svc.Approve(context.Background(), token, "data:image/png;base64,SIGA"))

	approved, err := svc.FetchByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "data:image/png;base64,SIGA", approved.SupervisorSignature)
	require.NotNil(t, approved.ApprovedAt)
	firstApprovedAt := *approved.ApprovedAt

	assert.Contains(t, events.keys, "inspection.approved")

	// re-approval is rejected and the first signature survives
	err = svc.Approve(context.Background(), token, "data:image/png;base64,SIGB")
	assert.ErrorIs(t, err, ErrAlreadyApproved)

	again, err := svc.FetchByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,SIGA", again.SupervisorSignature)
	assert.Equal(t, firstApprovedAt, *again.ApprovedAt)
}

func TestApproveUnknownToken(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	err := svc.Approve(context.Background(), "deadbeefdeadbeefdeadbeef", "data:image/png;base64,SIG")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveRequiresSignature(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	err := svc.Approve(context.Background(), "whatever", "")
	assert.True(t, checklist.IsValidationError(err))
}

func TestFetchByTokenNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.FetchByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
