package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/draft"
	"github.com/example/p2h/backend/internal/identity"
	"github.com/example/p2h/backend/internal/models"
)

// Receipt is what the submission collaborator returns for a finished run.
type Receipt struct {
	ID       uint                    `json:"id"`
	Status   models.InspectionStatus `json:"status"`
	Notified bool                    `json:"notified"`
}

// Submitter receives the finished payload exactly once per wizard run.
type Submitter interface {
	Submit(ctx context.Context, meta draft.Metadata, answers checklist.AnswerSet) (Receipt, error)
}

// ErrFinished is returned when a wizard that already submitted is driven
// further.
var ErrFinished = errors.New("wizard already submitted")

// Wizard walks an operator through metadata entry and each checklist
// section. Every mutation is written through to the draft store so a reload
// resumes exactly where the operator left off. The draft is cleared only on
// successful submission.
type Wizard struct {
	def       checklist.Definition
	drafts    *draft.Store
	draftID   string
	ident     identity.Identity
	submitter Submitter
	onAbandon func()
	state       draft.State
	submitted   bool
	lastReceipt Receipt
}

// New loads the draft under draftID or starts a fresh run at the metadata
// step. The operator name is always overwritten with the current identity so
// a draft left behind by another user cannot leak its name into this run.
func New(ctx context.Context, def checklist.Definition, drafts *draft.Store, provider identity.Provider, draftID string, submitter Submitter, onAbandon func()) (*Wizard, error) {
	ident, err := provider.Current(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve identity")
	}

	st, found, err := drafts.Load(draftID)
	if err != nil {
		return nil, err
	}
	if !found {
		st = draft.State{
			CurrentStep: draft.MetadataStep,
			Metadata: draft.Metadata{
				OperatorName: ident.Name,
				Date:         time.Now().Format("2006-01-02"),
			},
			Answers: checklist.AnswerSet{},
		}
	} else {
		st.Metadata.OperatorName = ident.Name
		if st.Answers == nil {
			st.Answers = checklist.AnswerSet{}
		}
	}

	w := &Wizard{
		def:       def,
		drafts:    drafts,
		draftID:   draftID,
		ident:     ident,
		submitter: submitter,
		onAbandon: onAbandon,
		state:     st,
	}
	if err := w.persist(); err != nil {
		return nil, err
	}
	return w, nil
}

// Step returns the current step: -1 for metadata entry, otherwise the
// section index.
func (w *Wizard) Step() int {
	return w.state.CurrentStep
}

// Section returns the section for the current step; ok is false on the
// metadata step.
func (w *Wizard) Section() (checklist.Section, bool) {
	return w.def.SectionAt(w.state.CurrentStep)
}

// Metadata returns the current metadata snapshot.
func (w *Wizard) Metadata() draft.Metadata {
	return w.state.Metadata
}

// Answers returns the current answer set. Callers must treat it as
// read-only and mutate through SetAnswer.
func (w *Wizard) Answers() checklist.AnswerSet {
	return w.state.Answers
}

// Submitted reports whether the run reached the terminal state.
func (w *Wizard) Submitted() bool {
	return w.submitted
}

// SignatureAffordance reports which signature pad is enabled on the approval
// section for the current identity. This is a UI affordance only; the server
// authorizes the actual approval.
func (w *Wizard) SignatureAffordance() (operatorPad, supervisorPad bool) {
	if w.ident.Supervisory() {
		return false, true
	}
	return true, false
}

// SetMetadata replaces the metadata, keeping the operator name pinned to the
// authenticated identity, and persists.
func (w *Wizard) SetMetadata(m draft.Metadata) error {
	if w.submitted {
		return ErrFinished
	}
	m.OperatorName = w.ident.Name
	w.state.Metadata = m
	return w.persist()
}

// SetAnswer records an answer for an item and persists.
func (w *Wizard) SetAnswer(itemID string, a checklist.Answer) error {
	if w.submitted {
		return ErrFinished
	}
	w.state.Answers[itemID] = a
	return w.persist()
}

// Next advances one step. Leaving the metadata step requires complete
// metadata; on the last section Next triggers Submit instead.
func (w *Wizard) Next(ctx context.Context) error {
	if w.submitted {
		return ErrFinished
	}
	if w.state.CurrentStep == draft.MetadataStep {
		if err := w.validateMetadata(); err != nil {
			return err
		}
	}
	if w.state.CurrentStep < w.def.SectionCount()-1 {
		w.state.CurrentStep++
		return w.persist()
	}
	return w.Submit(ctx)
}

// Back steps backwards. At the metadata step it invokes the abandon callback
// instead; the draft is deliberately kept so the run can be resumed.
func (w *Wizard) Back() error {
	if w.submitted {
		return ErrFinished
	}
	if w.state.CurrentStep > draft.MetadataStep {
		w.state.CurrentStep--
		return w.persist()
	}
	if w.onAbandon != nil {
		w.onAbandon()
	}
	return nil
}

// Submit validates the whole run, hands the payload to the submission
// collaborator, and clears the draft on success. On failure the draft is
// retained so the operator can retry without losing answers.
func (w *Wizard) Submit(ctx context.Context) (err error) {
	if w.submitted {
		return ErrFinished
	}
	if err := w.validateMetadata(); err != nil {
		return err
	}
	if err := w.validateAnswers(); err != nil {
		return err
	}

	receipt, err := w.submitter.Submit(ctx, w.state.Metadata, w.state.Answers)
	if err != nil {
		return errors.Wrap(err, "submit inspection")
	}

	if derr := w.drafts.Delete(w.draftID); derr != nil {
		// The record is durable; a stale draft is an annoyance, not a fault.
		logrus.WithError(derr).WithField("draft", w.draftID).Warn("clear draft after submit failed")
	}
	w.submitted = true
	w.lastReceipt = receipt
	return nil
}

// Receipt returns the submission receipt after a successful Submit.
func (w *Wizard) Receipt() Receipt {
	return w.lastReceipt
}

func (w *Wizard) validateMetadata() error {
	m := w.state.Metadata
	fields := []struct {
		name, value string
	}{
		{"operatorName", m.OperatorName},
		{"unitCode", m.UnitCode},
		{"shift", m.Shift},
		{"hmStart", m.HMStart},
		{"date", m.Date},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &checklist.ValidationError{Field: f.name, Reason: "required"}
		}
	}
	return nil
}

func (w *Wizard) validateAnswers() error {
	for _, sec := range w.def.Sections {
		for _, item := range sec.Items {
			a, ok := w.state.Answers[item.ID]
			if item.Required && (!ok || a.Empty()) {
				return &checklist.ValidationError{Field: item.ID, Reason: "required"}
			}
			if ok && a.Kind == checklist.AnswerCondition &&
				a.Code == checklist.ConditionBroken && strings.TrimSpace(a.Comment) == "" {
				return &checklist.ValidationError{Field: item.ID, Reason: "defect comment required for R"}
			}
		}
	}
	return nil
}

func (w *Wizard) persist() error {
	return w.drafts.Save(w.draftID, w.state)
}
