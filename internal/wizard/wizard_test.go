package wizard

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/draft"
	"github.com/example/p2h/backend/internal/identity"
	"github.com/example/p2h/backend/internal/models"
)

func testDefinition() checklist.Definition {
	return checklist.Definition{Sections: []checklist.Section{
		{
			ID:    "mesin",
			Title: "Mesin",
			Items: []checklist.Item{
				{ID: "oli_mesin", Label: "Oli Mesin", Kind: checklist.KindBoolean, Required: true},
				{ID: "radiator", Label: "Radiator", Kind: checklist.KindBoolean, Required: true},
			},
		},
		{
			ID:    checklist.ApprovalSectionID,
			Title: "Approval",
			Items: []checklist.Item{
				{ID: checklist.ItemGeneralNote, Label: "Catatan Umum", Kind: checklist.KindText, Required: false},
				{ID: checklist.ItemSupervisorName, Label: "Nama Pengawas", Kind: checklist.KindText, Required: true},
			},
		},
	}}
}

type fakeSubmitter struct {
	calls   int
	lastMD  draft.Metadata
	lastAns checklist.AnswerSet
	receipt Receipt
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, meta draft.Metadata, answers checklist.AnswerSet) (Receipt, error) {
	f.calls++
	f.lastMD = meta
	f.lastAns = answers
	if f.err != nil {
		return Receipt{}, f.err
	}
	return f.receipt, nil
}

func operator(name string) identity.Static {
	return identity.Static{Identity: identity.Identity{
		EmployeeID: "OP-1",
		Name:       name,
		Role:       models.RoleOperator,
	}}
}

func openStore(t *testing.T) *draft.Store {
	t.Helper()
	s, err := draft.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func completeMetadata() draft.Metadata {
	return draft.Metadata{
		UnitCode: "EX-201",
		Shift:    "Shift 1",
		HMStart:  "1200",
		Date:     "2026-08-30",
	}
}

func fillAnswers(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SetAnswer("oli_mesin", checklist.ConditionAnswer(checklist.ConditionNormal, "")))
	require.NoError(t, w.SetAnswer("radiator", checklist.ConditionAnswer(checklist.ConditionAdequate, "")))
	require.NoError(t, w.SetAnswer(checklist.ItemSupervisorName, checklist.TextAnswer("Pak Joko")))
}

func TestNewStartsAtMetadataStep(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)

	assert.Equal(t, draft.MetadataStep, w.Step())
	assert.Equal(t, "Budi", w.Metadata().OperatorName)
	assert.NotEmpty(t, w.Metadata().Date)

	_, ok := w.Section()
	assert.False(t, ok)
}

func TestNextRequiresCompleteMetadata(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)

	err = w.Next(context.Background())
	require.Error(t, err)
	var ve *checklist.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "unitCode", ve.Field)
	assert.Equal(t, draft.MetadataStep, w.Step())

	require.NoError(t, w.SetMetadata(completeMetadata()))
	require.NoError(t, w.Next(context.Background()))
	assert.Equal(t, 0, w.Step())
}

func TestOperatorNamePinnedToIdentity(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)

	meta := completeMetadata()
	meta.OperatorName = "Someone Else"
	require.NoError(t, w.SetMetadata(meta))
	assert.Equal(t, "Budi", w.Metadata().OperatorName)
}

func TestResumeOverwritesOperatorName(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetAnswer("oli_mesin", checklist.ConditionAnswer(checklist.ConditionNormal, "")))

	resumed, err := New(context.Background(), testDefinition(), store, operator("Siti"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resumed.Step())
	assert.Equal(t, "Siti", resumed.Metadata().OperatorName)
	assert.Equal(t, "EX-201", resumed.Metadata().UnitCode)
	code, ok := resumed.Answers().Condition("oli_mesin")
	require.True(t, ok)
	assert.Equal(t, checklist.ConditionNormal, code)
}

func TestBackAtMetadataInvokesAbandonAndKeepsDraft(t *testing.T) {
	store := openStore(t)
	abandoned := false
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, func() { abandoned = true })
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))

	require.NoError(t, w.Back())
	assert.True(t, abandoned)
	assert.Equal(t, draft.MetadataStep, w.Step())

	_, found, err := store.Load("d1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBackFromSectionDecrements(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	require.NoError(t, w.Next(context.Background()))
	require.Equal(t, 0, w.Step())

	require.NoError(t, w.Back())
	assert.Equal(t, draft.MetadataStep, w.Step())
}

func TestSubmitValidatesRequiredItems(t *testing.T) {
	store := openStore(t)
	sub := &fakeSubmitter{}
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", sub, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))

	err = w.Submit(context.Background())
	var ve *checklist.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "oli_mesin", ve.Field)
	assert.Zero(t, sub.calls)
}

func TestSubmitRequiresDefectComment(t *testing.T) {
	store := openStore(t)
	sub := &fakeSubmitter{}
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", sub, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	fillAnswers(t, w)
	require.NoError(t, w.SetAnswer("radiator", checklist.ConditionAnswer(checklist.ConditionBroken, "  ")))

	err = w.Submit(context.Background())
	var ve *checklist.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "radiator", ve.Field)

	require.NoError(t, w.SetAnswer("radiator", checklist.ConditionAnswer(checklist.ConditionBroken, "hose pecah")))
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, 1, sub.calls)
}

func TestNextOnLastSectionSubmitsAndClearsDraft(t *testing.T) {
	store := openStore(t)
	sub := &fakeSubmitter{receipt: Receipt{ID: 7, Status: models.StatusReady, Notified: true}}
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", sub, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	fillAnswers(t, w)

	require.NoError(t, w.Next(context.Background())) // metadata -> section 0
	require.NoError(t, w.Next(context.Background())) // section 0 -> section 1
	require.NoError(t, w.Next(context.Background())) // last section -> submit

	assert.True(t, w.Submitted())
	assert.Equal(t, Receipt{ID: 7, Status: models.StatusReady, Notified: true}, w.Receipt())
	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, "EX-201", sub.lastMD.UnitCode)

	_, found, err := store.Load("d1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubmitFailureRetainsDraft(t *testing.T) {
	store := openStore(t)
	sub := &fakeSubmitter{err: errors.New("db down")}
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", sub, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	fillAnswers(t, w)

	require.Error(t, w.Submit(context.Background()))
	assert.False(t, w.Submitted())

	_, found, err := store.Load("d1")
	require.NoError(t, err)
	assert.True(t, found)

	// retry after the backend recovers
	sub.err = nil
	require.NoError(t, w.Submit(context.Background()))
	assert.True(t, w.Submitted())
}

func TestFinishedWizardRejectsFurtherDriving(t *testing.T) {
	store := openStore(t)
	sub := &fakeSubmitter{}
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", sub, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetMetadata(completeMetadata()))
	fillAnswers(t, w)
	require.NoError(t, w.Submit(context.Background()))

	assert.ErrorIs(t, w.Next(context.Background()), ErrFinished)
	assert.ErrorIs(t, w.Back(), ErrFinished)
	assert.ErrorIs(t, w.SetMetadata(completeMetadata()), ErrFinished)
	assert.ErrorIs(t, w.SetAnswer("oli_mesin", checklist.TextAnswer("x")), ErrFinished)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrFinished)
	assert.Equal(t, 1, sub.calls)
}

func TestSignatureAffordance(t *testing.T) {
	store := openStore(t)
	w, err := New(context.Background(), testDefinition(), store, operator("Budi"), "d1", &fakeSubmitter{}, nil)
	require.NoError(t, err)
	op, sup := w.SignatureAffordance()
	assert.True(t, op)
	assert.False(t, sup)

	boss := identity.Static{Identity: identity.Identity{EmployeeID: "SPV-1", Name: "Joko", Role: models.RoleSupervisor}}
	w2, err := New(context.Background(), testDefinition(), store, boss, "d2", &fakeSubmitter{}, nil)
	require.NoError(t, err)
	op, sup = w2.SignatureAffordance()
	assert.False(t, op)
	assert.True(t, sup)
}
