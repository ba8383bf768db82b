package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Accounts handles registration, login, email verification and profiles.
type Accounts struct {
	store     store.Store
	jwtSecret string
	now       func() time.Time
}

func NewAccounts(s store.Store, jwtSecret string) *Accounts {
	return &Accounts{store: s, jwtSecret: jwtSecret, now: time.Now}
}

// Register creates the account and queues a verification email.
func (a *Accounts) Register(ctx context.Context, req schema.RegisterRequest, ip string) (*domain.User, Outcome, error) {
	if len(req.Password) > schema.MaxPasswordBytes {
		return nil, Outcome{}, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hash),
		Role:     domain.RoleUser,
		Profile:  domain.Profile{FullName: strings.TrimSpace(req.FullName)},
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Outcome{}, ErrEmailTaken
		}
		return nil, Outcome{}, fmt.Errorf("create user: %w", err)
	}

	fields := logrus.Fields{"user_id": user.ID, "op": "register"}
	out := bestEffort(ctx, fields,
		side("email_notification", func(ctx context.Context) error {
			token, err := utils.GenerateVerificationToken(user.ID, a.jwtSecret)
			if err != nil {
				return err
			}
			return a.store.CreateEmailNotification(ctx, &domain.EmailNotification{
				UserID:    user.ID,
				Recipient: user.Email,
				Type:      domain.NotifyVerifyEmail,
				Subject:   "Verify your email address",
				Body:      "Use this code to verify your account: " + token,
				Status:    domain.StatusPending,
			})
		}),
		side("audit_log", func(ctx context.Context) error {
			return a.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     user.ID,
				Action:     domain.AuditUserRegistered,
				Resource:   "user",
				ResourceID: fmt.Sprint(user.ID),
				IPAddress:  ip,
			})
		}),
	)
	logrus.WithFields(fields).Info("User registered")
	return user, out, nil
}

// Login checks the password and issues an access token.
func (a *Accounts) Login(ctx context.Context, req schema.LoginRequest) (string, error) {
	user, err := a.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return utils.GenerateJWT(user.ID, a.jwtSecret)
}

// VerifyEmail consumes a verification token. Verifying twice is harmless.
func (a *Accounts) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	claims, err := utils.ParseJWT(token, a.jwtSecret, utils.PurposeVerifyEmail)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := a.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified() {
		return user, nil
	}
	now := a.now()
	if err := a.store.MarkEmailVerified(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.EmailVerifiedAt = &now
	bestEffort(ctx, logrus.Fields{"user_id": user.ID, "op": "verify_email"},
		side("audit_log", func(ctx context.Context) error {
			return a.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     user.ID,
				Action:     domain.AuditEmailVerified,
				Resource:   "user",
				ResourceID: fmt.Sprint(user.ID),
			})
		}),
	)
	return user, nil
}

// Me loads the current identity. A token whose user has disappeared is
// treated like an invalid token.
func (a *Accounts) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := a.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID uint, req schema.ProfileRequest) (*domain.User, error) {
	user, err := a.store.UpdateProfile(ctx, userID, req.Profile())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
