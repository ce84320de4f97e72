package delegates

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/bulkimport"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
)

// InvitationTTL is how long a registration link stays valid.
const InvitationTTL = 30 * 24 * time.Hour

// Inviter creates a delegate, issues their registration-link token and
// queues the invitation email. Both the single-invite endpoint and bulk
// import dispatch go through here, one row at a time.
type Inviter struct {
	repo      *Repository
	queue     *queue.Queue
	validate  *validator.Validate
	portalURL string
	invitedBy uuid.UUID
	logger    *zap.Logger
}

func NewInviter(repo *Repository, q *queue.Queue, portalURL string, logger *zap.Logger) *Inviter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inviter{
		repo:      repo,
		queue:     q,
		validate:  validator.New(),
		portalURL: portalURL,
		logger:    logger,
	}
}

// WithActor returns an Inviter attributing new delegates to the given user.
func (i *Inviter) WithActor(userID uuid.UUID) *Inviter {
	clone := *i
	clone.invitedBy = userID
	return &clone
}

// Invite satisfies bulkimport.Inviter. Delegates created during a bulk
// dispatch are attributed to the staff member who triggered it.
func (i *Inviter) Invite(ctx context.Context, actor uuid.UUID, row bulkimport.DelegateRow) (string, error) {
	delegate, err := i.WithActor(actor).InviteOne(ctx, row.Email, row.FirstName, row.LastName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("invitation sent to %s", delegate.Email), nil
}

// InviteOne runs the full invitation flow for a single delegate.
func (i *Inviter) InviteOne(ctx context.Context, email, firstName, lastName string) (*models.Delegate, error) {
	if err := i.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email address %q", email)
	}

	delegate := &models.Delegate{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		InvitedBy: i.invitedBy,
	}
	if err := i.repo.Create(ctx, delegate); err != nil {
		return nil, err
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	inv := &models.DelegateInvitation{
		DelegateID: delegate.ID,
		Token:      token,
		ExpiresAt:  time.Now().Add(InvitationTTL),
	}
	if err := i.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	link := i.portalURL + "/register?token=" + token
	err = i.queue.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      models.EmailTypeDelegateInvitation,
		DelegateID:     &delegate.ID,
		RecipientEmail: delegate.Email,
		RecipientName:  delegate.FirstName + " " + delegate.LastName,
		Subject:        "Your conference registration invitation",
		BodyHTML:       invitationBody(delegate.FirstName, link, inv.ExpiresAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue invitation email: %w", err)
	}

	i.logger.Info("delegate invited",
		zap.String("delegate_id", delegate.ID.String()),
		zap.String("email", delegate.Email),
	)
	return delegate, nil
}

func generateInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:43], nil
}

func invitationBody(firstName, link string, expiresAt time.Time) string {
	return fmt.Sprintf(
		`<p>Dear %s,</p>
<p>You have been invited to register for the conference. Use the link below to complete your registration:</p>
<p><a href="%s">%s</a></p>
<p>This link expires on %s.</p>`,
		firstName, link, link, expiresAt.Format("2 January 2006"),
	)
}
