package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/p2h/backend/internal/chat"
	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/draft"
	"github.com/example/p2h/backend/internal/identity"
	"github.com/example/p2h/backend/internal/models"
	"github.com/example/p2h/backend/internal/report"
	"github.com/example/p2h/backend/internal/repository"
	"github.com/example/p2h/backend/internal/service"
	"github.com/example/p2h/backend/internal/wizard"
)

const identityKey = "identity"

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine      *gin.Engine
	tokens      *identity.TokenManager
	users       *repository.UserRepository
	inspections *repository.InspectionRepository
	service     *service.InspectionService
	drafts      *draft.Store
	assistant   *chat.Client
	def         checklist.Definition
}

// NewServer constructs a new API server and registers routes.
func NewServer(tokens *identity.TokenManager, users *repository.UserRepository, inspections *repository.InspectionRepository, svc *service.InspectionService, drafts *draft.Store, assistant *chat.Client, def checklist.Definition) *Server {
	router := gin.Default()
	srv := &Server{
		Engine:      router,
		tokens:      tokens,
		users:       users,
		inspections: inspections,
		service:     svc,
		drafts:      drafts,
		assistant:   assistant,
		def:         def,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	api := s.Engine.Group("/api")
	api.POST("/login", s.login)
	api.POST("/chat", s.chatProxy)

	// The unguessable approval token is the capability for this group.
	api.GET("/approve/:token", s.fetchApproval)
	api.POST("/approve/:token", s.approve)
	api.GET("/approve/:token/report", s.reportByToken)

	auth := api.Group("", s.authRequired)
	auth.POST("/inspections", s.createInspection)
	auth.GET("/inspections", s.listInspections)
	auth.GET("/inspections/summary", s.summary)
	auth.GET("/inspections/:id/report", s.reportByID)
	auth.GET("/profile/stats", s.profileStats)
	auth.PUT("/profile/photo", s.updatePhoto)

	wiz := auth.Group("/wizard/:draftId")
	wiz.GET("", s.wizardState)
	wiz.PUT("/metadata", s.wizardMetadata)
	wiz.PUT("/answers/:itemId", s.wizardAnswer)
	wiz.POST("/next", s.wizardNext)
	wiz.POST("/back", s.wizardBack)
	wiz.POST("/submit", s.wizardSubmit)
}

// ---- auth ----

func (s *Server) authRequired(c *gin.Context) {
	ident, err := s.bearerIdentity(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or missing token"})
		return
	}
	c.Set(identityKey, ident)
	c.Next()
}

func (s *Server) bearerIdentity(c *gin.Context) (identity.Identity, error) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return identity.Identity{}, identity.ErrInvalidToken
	}
	return s.tokens.Verify(parts[1])
}

func identityFrom(c *gin.Context) identity.Identity {
	return c.MustGet(identityKey).(identity.Identity)
}

func (s *Server) login(c *gin.Context) {
	var payload struct {
		EmployeeID string `json:"employeeId" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := s.users.FindByEmployeeID(c.Request.Context(), payload.EmployeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ID Pegawai tidak ditemukan"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	if payload.Password != user.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Kata sandi salah"})
		return
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// ---- submission & history ----

type submissionPayload struct {
	Metadata draft.Metadata      `json:"metadata"`
	Answers  checklist.AnswerSet `json:"answers"`
}

func (s *Server) createInspection(c *gin.Context) {
	ident := identityFrom(c)
	var payload submissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := s.service.Submit(c.Request.Context(), ident.EmployeeID, payload.Metadata, payload.Answers)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Inspeksi berhasil disimpan",
		"id":         result.ID,
		"status":     result.Status,
		"waNotified": result.Notified,
	})
}

func (s *Server) listInspections(c *gin.Context) {
	ident := identityFrom(c)
	operatorID := ""
	if ident.Role == models.RoleOperator {
		operatorID = ident.EmployeeID
	}
	recs, err := s.inspections.List(c.Request.Context(), operatorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) summary(c *gin.Context) {
	ident := identityFrom(c)
	if !ident.Supervisory() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied: Admin/Pengawas only"})
		return
	}
	summary, err := s.inspections.Summarize(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ---- approval ----

func (s *Server) fetchApproval(c *gin.Context) {
	rec, err := s.service.FetchByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) approve(c *gin.Context) {
	// The token link is the supervisory capability; an authenticated
	// operator session is still rejected here, not just hidden in the UI.
	if ident, err := s.bearerIdentity(c); err == nil && !ident.Supervisory() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Approval memerlukan akses pengawas"})
		return
	}

	var payload struct {
		SupervisorSignature string `json:"supervisorSignature"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := s.service.Approve(c.Request.Context(), c.Param("token"), payload.SupervisorSignature)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approval berhasil! Terima kasih."})
}

// ---- report export ----

func (s *Server) reportByToken(c *gin.Context) {
	rec, err := s.service.FetchByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeReport(c, rec)
}

func (s *Server) reportByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	rec, ferr := s.inspections.FindByID(c.Request.Context(), uint(id))
	if errors.Is(ferr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Inspeksi tidak ditemukan"})
		return
	}
	if ferr != nil {
		s.fail(c, ferr)
		return
	}

	ident := identityFrom(c)
	if ident.Role == models.RoleOperator && rec.OperatorID != ident.EmployeeID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return
	}
	s.writeReport(c, rec)
}

func (s *Server) writeReport(c *gin.Context, rec *models.Inspection) {
	view, err := report.BuildView(rec, s.def)
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.RenderPDF(report.Compose(view), &buf); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.FileName(rec.UnitCode, rec.Date)+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ---- wizard ----

type submissionAdapter struct {
	svc        *service.InspectionService
	operatorID string
}

func (a submissionAdapter) Submit(ctx context.Context, meta draft.Metadata, answers checklist.AnswerSet) (wizard.Receipt, error) {
	res, err := a.svc.Submit(ctx, a.operatorID, meta, answers)
	if err != nil {
		return wizard.Receipt{}, err
	}
	return wizard.Receipt{ID: res.ID, Status: res.Status, Notified: res.Notified}, nil
}

func (s *Server) wizardFor(c *gin.Context, onAbandon func()) (*wizard.Wizard, bool) {
	ident := identityFrom(c)
	w, err := wizard.New(
		c.Request.Context(),
		s.def,
		s.drafts,
		identity.Static{Identity: ident},
		c.Param("draftId"),
		submissionAdapter{svc: s.service, operatorID: ident.EmployeeID},
		onAbandon,
	)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return w, true
}

func (s *Server) wizardResponse(w *wizard.Wizard) gin.H {
	opPad, supPad := w.SignatureAffordance()
	resp := gin.H{
		"step":     w.Step(),
		"metadata": w.Metadata(),
		"answers":  w.Answers(),
		"signaturePads": gin.H{
			"operator":   opPad,
			"supervisor": supPad,
		},
	}
	if sec, ok := w.Section(); ok {
		resp["section"] = sec
	}
	return resp
}

func (s *Server) wizardState(c *gin.Context) {
	w, ok := s.wizardFor(c, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.wizardResponse(w))
}

func (s *Server) wizardMetadata(c *gin.Context) {
	w, ok := s.wizardFor(c, nil)
	if !ok {
		return
	}
	var meta draft.Metadata
	if err := c.ShouldBindJSON(&meta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := w.SetMetadata(meta); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.wizardResponse(w))
}

type answerPayload struct {
	Value   string `json:"value"`
	Comment string `json:"comment"`
}

func (s *Server) wizardAnswer(c *gin.Context) {
	w, ok := s.wizardFor(c, nil)
	if !ok {
		return
	}
	var payload answerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	itemID := c.Param("itemId")
	answer, err := s.answerFor(itemID, payload)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := w.SetAnswer(itemID, answer); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.wizardResponse(w))
}

// answerFor maps a raw value onto the item's answer variant. Signature slots
// live outside the catalogue and accept any encoded image.
func (s *Server) answerFor(itemID string, payload answerPayload) (checklist.Answer, error) {
	if itemID == checklist.KeySignatureOperator || itemID == checklist.KeySignatureSupervisor {
		return checklist.SignatureAnswer(payload.Value), nil
	}
	item, ok := s.def.Item(itemID)
	if !ok {
		return checklist.Answer{}, &checklist.ValidationError{Field: itemID, Reason: "unknown item"}
	}
	switch item.Kind {
	case checklist.KindBoolean:
		code := checklist.Condition(payload.Value)
		if !code.Valid() {
			return checklist.Answer{}, &checklist.ValidationError{Field: itemID, Reason: "invalid condition code"}
		}
		return checklist.ConditionAnswer(code, payload.Comment), nil
	case checklist.KindNumber:
		n, err := strconv.ParseFloat(payload.Value, 64)
		if err != nil {
			return checklist.Answer{}, &checklist.ValidationError{Field: itemID, Reason: "invalid number"}
		}
		return checklist.NumberAnswer(n), nil
	default:
		return checklist.TextAnswer(payload.Value), nil
	}
}

func (s *Server) wizardNext(c *gin.Context) {
	w, ok := s.wizardFor(c, nil)
	if !ok {
		return
	}
	if err := w.Next(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	if w.Submitted() {
		receipt := w.Receipt()
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Inspeksi berhasil disimpan",
			"id":         receipt.ID,
			"status":     receipt.Status,
			"waNotified": receipt.Notified,
		})
		return
	}
	c.JSON(http.StatusOK, s.wizardResponse(w))
}

func (s *Server) wizardBack(c *gin.Context) {
	abandoned := false
	w, ok := s.wizardFor(c, func() { abandoned = true })
	if !ok {
		return
	}
	if err := w.Back(); err != nil {
		s.fail(c, err)
		return
	}
	resp := s.wizardResponse(w)
	resp["abandoned"] = abandoned
	c.JSON(http.StatusOK, resp)
}

func (s *Server) wizardSubmit(c *gin.Context) {
	w, ok := s.wizardFor(c, nil)
	if !ok {
		return
	}
	if err := w.Submit(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	receipt := w.Receipt()
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Inspeksi berhasil disimpan",
		"id":         receipt.ID,
		"status":     receipt.Status,
		"waNotified": receipt.Notified,
	})
}

// ---- chat & profile ----

func (s *Server) chatProxy(c *gin.Context) {
	var payload struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	reply, err := s.assistant.Ask(c.Request.Context(), payload.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Gagal menghubungi AI: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (s *Server) profileStats(c *gin.Context) {
	ident := identityFrom(c)
	stats, err := s.inspections.StatsForOperator(c.Request.Context(), ident.EmployeeID)
	if err != nil {
		s.fail(c, err)
		return
	}

	hours := stats.MaxHM - stats.MinHM
	if hours == 0 && stats.Count > 0 {
		hours = float64(stats.Count) * 12
	}

	rank := "3.5"
	switch {
	case stats.Count > 50:
		rank = "5.0"
	case stats.Count > 20:
		rank = "4.8"
	case stats.Count > 10:
		rank = "4.5"
	case stats.Count > 0:
		rank = "4.0"
	}

	photoURL := ""
	if user, err := s.users.FindByEmployeeID(c.Request.Context(), ident.EmployeeID); err == nil {
		photoURL = user.PhotoURL
	}

	c.JSON(http.StatusOK, gin.H{
		"inspections": stats.Count,
		"hours":       int(hours + 0.5),
		"rank":        rank,
		"photoUrl":    photoURL,
	})
}

func (s *Server) updatePhoto(c *gin.Context) {
	ident := identityFrom(c)
	var payload struct {
		PhotoURL string `json:"photoUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := s.users.UpdatePhoto(c.Request.Context(), ident.EmployeeID, payload.PhotoURL); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Foto profil diperbarui", "photoUrl": payload.PhotoURL})
}

// ---- error mapping ----

func (s *Server) fail(c *gin.Context, err error) {
	var ve *checklist.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Inspeksi tidak ditemukan"})
	case errors.Is(err, service.ErrAlreadyApproved):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Inspeksi sudah diapprove sebelumnya"})
	case errors.Is(err, wizard.ErrFinished):
		c.JSON(http.StatusConflict, gin.H{"message": "wizard already submitted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
