package registrations

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/changelog"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/delegates"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/forms"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/payments"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/storage"
)

// Handler handles registration categories and submissions.
type Handler struct {
	repo      *Repository
	cache     *CategoryCache
	schemas   *forms.Repository
	payments  *payments.Service
	store     *storage.S3
	delegates *delegates.Repository
	audit     *changelog.Repository
	queue     *queue.Queue
	logger    *zap.Logger
}

func NewHandler(
	repo *Repository,
	cache *CategoryCache,
	schemas *forms.Repository,
	paymentSvc *payments.Service,
	store *storage.S3,
	delegateRepo *delegates.Repository,
	audit *changelog.Repository,
	q *queue.Queue,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:      repo,
		cache:     cache,
		schemas:   schemas,
		payments:  paymentSvc,
		store:     store,
		delegates: delegateRepo,
		audit:     audit,
		queue:     q,
		logger:    logger,
	}
}

// ListCategories handles GET /categories?attendence_type=. Served from
// Redis when warm.
func (h *Handler) ListCategories(c *gin.Context) {
	attendanceType := c.Query("attendence_type")
	if cats, ok := h.cache.Get(c.Request.Context(), attendanceType); ok {
		response.OK(c, gin.H{"categories": cats, "cached": true})
		return
	}

	cats, err := h.repo.ListCategories(c.Request.Context(), attendanceType)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.Internal(c, "failed to load categories")
		return
	}
	h.cache.Set(c.Request.Context(), attendanceType, cats)
	response.OK(c, gin.H{"categories": cats})
}

type categoryRequest struct {
	NameEnglish      string     `json:"name_english" binding:"required"`
	NameFrench       string     `json:"name_french"`
	Fee              string     `json:"fee" binding:"required"`
	AttendanceType   string     `json:"attendence_type" binding:"required"`
	EarlyPaymentDate *time.Time `json:"early_payment_date"`
	EndDate          time.Time  `json:"end_date" binding:"required"`
}

// CreateCategory handles POST /categories (staff).
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat := &models.RegistrationCategory{
		NameEnglish:      req.NameEnglish,
		NameFrench:       req.NameFrench,
		Fee:              req.Fee,
		AttendanceType:   req.AttendanceType,
		EarlyPaymentDate: req.EarlyPaymentDate,
		EndDate:          req.EndDate,
	}
	if err := h.repo.CreateCategory(c.Request.Context(), cat); err != nil {
		h.logger.Error("create category failed", zap.Error(err))
		response.Internal(c, "failed to create category")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.Created(c, cat)
}

// UpdateCategory handles PUT /categories/:id (staff).
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat := &models.RegistrationCategory{
		ID:               id,
		NameEnglish:      req.NameEnglish,
		NameFrench:       req.NameFrench,
		Fee:              req.Fee,
		AttendanceType:   req.AttendanceType,
		EarlyPaymentDate: req.EarlyPaymentDate,
		EndDate:          req.EndDate,
	}
	if err := h.repo.UpdateCategory(c.Request.Context(), cat); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to update category")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.OK(c, cat)
}

// DeleteCategory handles DELETE /categories/:id (staff).
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	if err := h.repo.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to delete category")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// Submit handles POST /registrations, the wizard's final submission. The
// multipart form carries delegate_data (the serialized answer array),
// ticket_id, attendence_type, user_language, accompanied, the four payment
// fields, and one file part per file input, named by its input code.
func (h *Handler) Submit(c *gin.Context) {
	ticketID, err := uuid.Parse(c.PostForm("ticket_id"))
	if err != nil {
		response.BadRequest(c, "ticket_id is required")
		return
	}
	attendanceType := c.PostForm("attendence_type")
	if attendanceType == "" {
		response.BadRequest(c, "attendence_type is required")
		return
	}

	var answers []forms.AnswerField
	if err := json.Unmarshal([]byte(c.PostForm("delegate_data")), &answers); err != nil {
		response.BadRequest(c, "delegate_data must be a JSON answer array")
		return
	}

	category, err := h.repo.GetCategory(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Internal(c, "failed to load category")
		return
	}
	if time.Now().After(category.EndDate) {
		response.BadRequest(c, "registration for this category has closed")
		return
	}

	schema, err := h.schemas.GetByAttendanceType(c.Request.Context(), attendanceType)
	if err != nil {
		response.BadRequest(c, "no registration form for attendance type "+attendanceType)
		return
	}
	groups, err := forms.DecodeGroups(schema.Groups)
	if err != nil {
		h.logger.Error("stored schema is corrupt", zap.String("attendence_type", attendanceType), zap.Error(err))
		response.Internal(c, "registration form unavailable")
		return
	}
	if missing := forms.ValidateAnswers(groups, answers); len(missing) > 0 {
		response.UnprocessableEntity(c, "registration is incomplete", missing)
		return
	}

	reg := &models.Registration{
		CategoryID:     ticketID,
		AttendanceType: attendanceType,
		UserLanguage:   c.DefaultPostForm("user_language", "en"),
		Accompanied:    c.PostForm("accompanied") == "true",
		OrderID:        c.PostForm("order_id"),
		PaymentToken:   c.PostForm("payment_token"),
		PaymentSession: c.PostForm("payment_session"),
		Acknowledgment: c.PostForm("acknowleadgment"),
	}
	if userID, ok := middleware.UserID(c); ok {
		reg.UserID = &userID
	}

	if payments.RequiresPayment(category.Fee) {
		if reg.OrderID == "" || reg.PaymentToken == "" || reg.PaymentSession == "" {
			response.BadRequest(c, "payment is required for this category")
			return
		}
		attempt, err := h.payments.Verify(c.Request.Context(), reg.OrderID, reg.PaymentToken, reg.PaymentSession)
		if err != nil {
			if errors.Is(err, payments.ErrPaymentNotVerified) {
				response.BadRequest(c, err.Error())
				return
			}
			response.Internal(c, "failed to verify payment")
			return
		}
		if reg.Acknowledgment == "" {
			reg.Acknowledgment = attempt.TransactionID
		}
	} else {
		// Free category: the four payment fields are stored empty.
		reg.OrderID, reg.PaymentToken, reg.PaymentSession, reg.Acknowledgment = "", "", "", ""
	}

	answers, err = h.storeFileAnswers(c, groups, answers, reg.OrderID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	reg.Answers, _ = json.Marshal(answers)

	if err := h.repo.CreateRegistration(c.Request.Context(), reg); err != nil {
		h.logger.Error("create registration failed", zap.Error(err))
		response.Internal(c, "failed to save registration")
		return
	}

	h.markInvitationUsed(c, reg)
	h.audit.Record(c.Request.Context(), "registration", reg.ID, "created", reg.UserID, gin.H{
		"ticket_id":       reg.CategoryID,
		"attendence_type": reg.AttendanceType,
		"paid":            reg.OrderID != "",
	})
	h.queueConfirmation(c, reg, answers)

	response.Created(c, reg)
}

// storeFileAnswers uploads any file-input parts to S3 and rewrites the
// matching answers to hold the object key.
func (h *Handler) storeFileAnswers(c *gin.Context, groups []forms.FormInputGroup, answers []forms.AnswerField, orderID string) ([]forms.AnswerField, error) {
	if h.store == nil {
		return answers, nil
	}
	prefix := orderID
	if prefix == "" {
		prefix = uuid.New().String()
	}

	for _, group := range groups {
		for _, entry := range group.Entries {
			kind := entry.Input.Type.Kind()
			if kind != forms.KindFilePDF && kind != forms.KindFileImage {
				continue
			}
			file, header, err := c.Request.FormFile(entry.Input.InputCode)
			if err != nil {
				continue // no file for this input
			}
			key, err := h.uploadOne(c, kind, prefix, entry.Input.InputCode, header, file)
			file.Close()
			if err != nil {
				return nil, err
			}
			answers = setAnswer(answers, entry.Input, key)
		}
	}
	return answers, nil
}

func (h *Handler) uploadOne(c *gin.Context, kind forms.Kind, prefix, inputCode string, header *multipart.FileHeader, file multipart.File) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(header.Filename)
	}
	switch kind {
	case forms.KindFilePDF:
		if !storage.ValidatePDF(contentType, header.Filename) {
			return "", errors.New(inputCode + " must be a PDF document")
		}
	case forms.KindFileImage:
		if !storage.ValidateImage(contentType, header.Filename) {
			return "", errors.New(inputCode + " must be an image")
		}
	}

	key := storage.FormUploadKey(prefix, inputCode, header.Filename)
	if _, err := h.store.Upload(c.Request.Context(), key, contentType, file, header.Size); err != nil {
		h.logger.Error("form upload failed", zap.String("input_code", inputCode), zap.Error(err))
		return "", errors.New("failed to store uploaded file")
	}
	return key, nil
}

func setAnswer(answers []forms.AnswerField, input forms.FormInput, value string) []forms.AnswerField {
	for i := range answers {
		if answers[i].InputCode == input.InputCode {
			answers[i].InputValue = value
			return answers
		}
	}
	return append(answers, forms.AnswerField{
		InputCode:  input.InputCode,
		InputType:  input.Type.ID,
		InputValue: value,
		InputName:  input.NameEnglish,
	})
}

// markInvitationUsed burns the invitation token, when the submission came
// through an invitation link.
func (h *Handler) markInvitationUsed(c *gin.Context, reg *models.Registration) {
	token := c.PostForm("invitation_token")
	if token == "" || h.delegates == nil {
		return
	}
	inv, err := h.delegates.GetInvitationByToken(c.Request.Context(), token)
	if err != nil {
		return
	}
	if err := h.delegates.MarkInvitationUsed(c.Request.Context(), inv.ID); err != nil {
		return
	}
	if err := h.delegates.MarkRegistered(c.Request.Context(), inv.DelegateID); err != nil {
		h.logger.Warn("failed to mark delegate registered",
			zap.String("delegate_id", inv.DelegateID.String()),
			zap.Error(err),
		)
	}
}

func (h *Handler) queueConfirmation(c *gin.Context, reg *models.Registration, answers []forms.AnswerField) {
	if h.queue == nil {
		return
	}
	email, name := contactFromAnswers(answers)
	if email == "" {
		return
	}
	err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      models.EmailTypeRegistrationConfirmation,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        "Registration received",
		BodyHTML: "<p>Dear " + name + ",</p><p>Your conference registration has been received." +
			" Your reference is " + reg.ID.String() + ".</p>",
	})
	if err != nil {
		h.logger.Warn("failed to queue confirmation email", zap.Error(err))
	}
}

// contactFromAnswers pulls the first email-typed answer and a best-effort
// name from the answer array.
func contactFromAnswers(answers []forms.AnswerField) (email, name string) {
	for _, a := range answers {
		if (forms.InputType{ID: a.InputType}).Kind() == forms.KindEmail && email == "" {
			email = a.InputValue
		}
	}
	for _, a := range answers {
		if a.InputType == 1 && name == "" {
			name = a.InputValue
		}
	}
	if name == "" {
		name = "delegate"
	}
	return email, name
}

// Get handles GET /registrations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.repo.GetRegistration(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to load registration")
		return
	}
	response.OK(c, reg)
}

// List handles GET /registrations?attendence_type=&limit=&offset= (staff).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	list, err := h.repo.ListRegistrations(c.Request.Context(), c.Query("attendence_type"), limit, offset)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, gin.H{"registrations": list, "count": len(list)})
}
