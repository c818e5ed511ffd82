package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fintrackeasy/user-service/internal/apperror"
	"github.com/fintrackeasy/user-service/internal/mailer"
	"github.com/fintrackeasy/user-service/internal/metrics"
	"github.com/fintrackeasy/user-service/internal/model"
	"github.com/fintrackeasy/user-service/internal/token"
	"github.com/fintrackeasy/user-service/internal/utils"
)

// UserRepository is the record-store contract. The mongo implementation lives
// in internal/repository; tests supply in-memory fakes.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Insert(ctx context.Context, u *model.User) (string, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	ConsumeVerificationToken(ctx context.Context, id, token string) (*model.User, error)
	SoftDelete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]model.User, error)
}

// Mailer is the notification-dispatcher contract: it delivers a pre-rendered
// HTML body and reports success or failure.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type UserService struct {
	repo        UserRepository
	mail        Mailer
	tokens      *token.Generator
	baseURL     string
	redirectURL string
	logger      *zap.SugaredLogger
}

func NewUserService(repo UserRepository, mail Mailer, tokens *token.Generator, baseURL, redirectURL string, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		repo:        repo,
		mail:        mail,
		tokens:      tokens,
		baseURL:     strings.TrimRight(baseURL, "/"),
		redirectURL: redirectURL,
		logger:      logger,
	}
}

type RegisterInput struct {
	Name     string
	Nickname string
	Email    string
}

type RegisterResult struct {
	UserID string
	Resend bool
}

// Register creates a pending account or reissues the verification token for an
// existing unverified one, then dispatches the verification mail. A dispatch
// failure is surfaced to the caller but does not roll back the persisted
// record: re-registering with the same address is the retry path.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if errs := utils.ValidateRegister(in.Nickname, in.Email); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	email := utils.NormalizeEmail(in.Email)

	tok, expires, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	var userID string
	resend := false

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Verified {
			return nil, apperror.AlreadyRegistered("Email already registered")
		}
		// Reissue: a fresh token invalidates whatever link was mailed before.
		fields := map[string]any{
			"nickname":                   in.Nickname,
			"verification_token":         tok,
			"verification_token_expires": expires,
		}
		if in.Name != "" {
			fields["name"] = in.Name
		}
		if _, err := s.repo.UpdateFields(ctx, existing.ID.Hex(), fields); err != nil {
			return nil, err
		}
		userID = existing.ID.Hex()
		resend = true

	case errors.Is(err, apperror.ErrNotFound):
		u := &model.User{
			Name:                     in.Name,
			Nickname:                 in.Nickname,
			Email:                    email,
			PreferredLanguage:        model.LanguageEN,
			Status:                   model.StatusActive,
			Verified:                 false,
			VerificationToken:        tok,
			VerificationTokenExpires: &expires,
		}
		userID, err = s.repo.Insert(ctx, u)
		if err != nil {
			if errors.Is(err, apperror.ErrAlreadyRegistered) {
				// Lost an insert race for the same address.
				return nil, apperror.AlreadyRegistered("Email already registered")
			}
			return nil, err
		}

	default:
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()

	if err := s.sendVerification(ctx, email, userID, tok, resend); err != nil {
		metrics.EmailFailuresTotal.Inc()
		s.logger.Errorf("verification mail for user %s failed: %v", userID, err)
		return nil, apperror.DispatchFailure(err)
	}

	return &RegisterResult{UserID: userID, Resend: resend}, nil
}

func (s *UserService) sendVerification(ctx context.Context, email, userID, tok string, resend bool) error {
	verifyURL := fmt.Sprintf("%s/api/users/verify-email?token=%s&id=%s",
		s.baseURL, url.QueryEscape(tok), url.QueryEscape(userID))
	html, err := mailer.VerificationEmail(mailer.VerificationData{
		VerifyURL:  verifyURL,
		TTLMinutes: s.tokens.TTLMinutes(),
		Resend:     resend,
	})
	if err != nil {
		return err
	}
	subject := "Verify your email"
	if resend {
		subject = "New Verification Link"
	}
	return s.mail.Send(ctx, email, subject, html)
}

type VerifyResult struct {
	AlreadyVerified bool
	RedirectURL     string
}

// VerifyEmail consumes a verification token. Check order is deliberate:
// existence, already-verified idempotence, token mismatch, expiry, success.
// The consuming write is conditional on the presented token, so a token
// reissued between the read and the write matches nothing and the stale link
// fails instead of verifying the account.
func (s *UserService) VerifyEmail(ctx context.Context, tok, id string) (*VerifyResult, error) {
	if tok == "" || id == "" {
		return nil, apperror.BadRequest("token and id are required")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	if res, err := s.rejectVerification(u, tok); res != nil || err != nil {
		return res, err
	}

	_, err = s.repo.ConsumeVerificationToken(ctx, id, tok)
	if err == nil {
		metrics.VerificationsTotal.Inc()
		return &VerifyResult{RedirectURL: s.redirectURL}, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	// The conditional write matched nothing, so the document changed between
	// the read and the write. Re-read and report the current state.
	u, err = s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	if res, err := s.rejectVerification(u, tok); res != nil || err != nil {
		return res, err
	}
	return nil, apperror.InvalidToken("Invalid verification token")
}

// rejectVerification maps a document state that cannot consume tok to its
// outcome. nil, nil means the token looks consumable.
func (s *UserService) rejectVerification(u *model.User, tok string) (*VerifyResult, error) {
	if u.Verified {
		return &VerifyResult{AlreadyVerified: true, RedirectURL: s.redirectURL}, nil
	}
	if u.VerificationToken != tok {
		return nil, apperror.InvalidToken("Invalid verification token")
	}
	if u.VerificationTokenExpires == nil || u.VerificationTokenExpires.Before(time.Now()) {
		return nil, apperror.TokenExpired("Verification link expired")
	}
	return nil, nil
}

type ProfileUpdate struct {
	Nickname          *string
	Phone             *string
	PreferredLanguage *string
}

// UpdateProfile lets the owning caller patch the whitelisted profile fields.
// The ownership check runs before validation so a foreign caller always gets
// Forbidden, whatever the payload looks like.
func (s *UserService) UpdateProfile(ctx context.Context, targetID, callerID string, in ProfileUpdate) (*model.User, error) {
	if targetID != callerID {
		return nil, apperror.Forbidden("Forbidden")
	}
	if errs := utils.ValidateProfileUpdate(in.Nickname, in.Phone, in.PreferredLanguage); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	fields := map[string]any{}
	if in.Nickname != nil {
		fields["nickname"] = *in.Nickname
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.PreferredLanguage != nil {
		fields["preferred_language"] = *in.PreferredLanguage
	}

	u, err := s.repo.UpdateFields(ctx, targetID, fields)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

// Delete soft-deletes the caller's own account.
func (s *UserService) Delete(ctx context.Context, targetID, callerID string) error {
	if targetID != callerID {
		return apperror.Forbidden("Forbidden")
	}
	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return err
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
