package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/ErlanBelekov/account-recovery/internal/email"
	"github.com/ErlanBelekov/account-recovery/internal/metrics"
	"github.com/ErlanBelekov/account-recovery/internal/ratelimit"
	"github.com/ErlanBelekov/account-recovery/internal/repository"
	"github.com/ErlanBelekov/account-recovery/internal/requestid"
	"github.com/ErlanBelekov/account-recovery/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// TokenCodec is the subset of token.Codec the flow needs.
// Defined here (point of use) so tests can inject a fake.
type TokenCodec interface {
	Issue(email string) (string, error)
	Verify(raw string) (email, jti string, err error)
}

// Dispatcher is satisfied by *email.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg email.Message) <-chan error
}

// RecoveryUsecase orchestrates the two-step reset protocol. It is the only
// component that touches the account store.
type RecoveryUsecase struct {
	accounts   repository.AccountRepository
	events     repository.ResetEventRepository
	guard      ratelimit.Guard
	codec      TokenCodec
	denylist   token.Denylist
	dispatcher Dispatcher
	baseURL    string
	tokenTTL   time.Duration
	minPassLen int
	bcryptCost int
	logger     *slog.Logger
}

type RecoveryConfig struct {
	BaseURL           string
	TokenTTL          time.Duration
	MinPasswordLength int
	BcryptCost        int
}

func NewRecoveryUsecase(
	accounts repository.AccountRepository,
	events repository.ResetEventRepository,
	guard ratelimit.Guard,
	codec TokenCodec,
	denylist token.Denylist,
	dispatcher Dispatcher,
	cfg RecoveryConfig,
	logger *slog.Logger,
) *RecoveryUsecase {
	return &RecoveryUsecase{
		accounts:   accounts,
		events:     events,
		guard:      guard,
		codec:      codec,
		denylist:   denylist,
		dispatcher: dispatcher,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokenTTL:   cfg.TokenTTL,
		minPassLen: cfg.MinPasswordLength,
		bcryptCost: cfg.BcryptCost,
		logger:     logger.With("component", "recovery_usecase"),
	}
}

// RequestReset runs step one of the protocol: rate check, account lookup,
// token mint, mail dispatch — strictly in that order. A throttled client is
// rejected before the account store is touched.
func (u *RecoveryUsecase) RequestReset(ctx context.Context, rawEmail, clientIP string) error {
	if err := u.guard.Admit(ctx, clientIP); err != nil {
		if errors.Is(err, domain.ErrThrottled) {
			metrics.RateLimitedTotal.Inc()
			metrics.ResetRequestsTotal.WithLabelValues("throttled").Inc()
			return err
		}
		metrics.ResetRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("rate guard: %w", err)
	}

	addr := strings.ToLower(strings.TrimSpace(rawEmail))

	account, err := u.accounts.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.ResetRequestsTotal.WithLabelValues("not_found").Inc()
			return err
		}
		metrics.ResetRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("find account: %w", err)
	}

	u.recordEvent(ctx, account.Email, domain.ResetEventRequested, clientIP)

	resetToken, err := u.codec.Issue(account.Email)
	if err != nil {
		metrics.ResetRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("issue token: %w", err)
	}

	msg := u.buildResetMessage(account.Email, resetToken)

	select {
	case err = <-u.dispatcher.Dispatch(ctx, msg):
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		metrics.ResetRequestsTotal.WithLabelValues("delivery_failed").Inc()
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	metrics.ResetRequestsTotal.WithLabelValues("issued").Inc()
	return nil
}

// CheckToken reports whether a token is worth showing the password form
// for. Any failure is the uniform domain.ErrTokenInvalid.
func (u *RecoveryUsecase) CheckToken(ctx context.Context, rawToken string) error {
	_, jti, err := u.codec.Verify(rawToken)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	consumed, err := u.denylist.IsConsumed(ctx, jti)
	if err != nil {
		return fmt.Errorf("denylist lookup: %w", err)
	}
	if consumed {
		return domain.ErrTokenInvalid
	}
	return nil
}

// ConfirmReset runs step two: password policy, token verification, hash,
// account update, token consumption. The policy checks come first so a
// user with a good token is told exactly which rule they broke.
func (u *RecoveryUsecase) ConfirmReset(ctx context.Context, rawToken, password, confirm, clientIP string) error {
	if len(password) < u.minPassLen {
		metrics.ResetConfirmsTotal.WithLabelValues("policy_violation").Inc()
		return domain.ErrPasswordTooShort
	}
	if password != confirm {
		metrics.ResetConfirmsTotal.WithLabelValues("policy_violation").Inc()
		return domain.ErrPasswordMismatch
	}

	addr, jti, err := u.codec.Verify(rawToken)
	if err != nil {
		metrics.ResetConfirmsTotal.WithLabelValues("token_invalid").Inc()
		return domain.ErrTokenInvalid
	}

	consumed, err := u.denylist.IsConsumed(ctx, jti)
	if err != nil {
		metrics.ResetConfirmsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("denylist lookup: %w", err)
	}
	if consumed {
		metrics.ResetConfirmsTotal.WithLabelValues("token_replayed").Inc()
		return domain.ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		metrics.ResetConfirmsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.accounts.UpdatePasswordHash(ctx, addr, string(hash)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Account vanished between issue and consume. Indistinguishable
			// from a bad token as far as the client is concerned.
			metrics.ResetConfirmsTotal.WithLabelValues("token_invalid").Inc()
			return domain.ErrTokenInvalid
		}
		metrics.ResetConfirmsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("update password: %w", err)
	}

	// The update already happened; failing to denylist the jti only
	// reopens the replay window, so log and move on.
	if err := u.denylist.Consume(ctx, jti, u.tokenTTL); err != nil {
		u.logger.WarnContext(ctx, "denylist consume failed", "error", err)
	}

	u.recordEvent(ctx, addr, domain.ResetEventCompleted, clientIP)

	metrics.ResetConfirmsTotal.WithLabelValues("completed").Inc()
	return nil
}

func (u *RecoveryUsecase) buildResetMessage(addr, resetToken string) email.Message {
	link := u.baseURL + "/resetPassword/" + resetToken
	return email.Message{
		To:      addr,
		Subject: "Reset password",
		Text:    "Hey there!\n\nPlease click this link to reset your password!\n" + link,
		HTML: fmt.Sprintf(
			`<p>Hey there!</p><p>Please click this link to reset your password!</p><p><a href="%s">%s</a></p>`,
			link, link,
		),
	}
}

func (u *RecoveryUsecase) recordEvent(ctx context.Context, addr, event, clientIP string) {
	if u.events == nil {
		return
	}
	err := u.events.Record(ctx, &domain.ResetEvent{
		Email:     addr,
		Event:     event,
		ClientIP:  clientIP,
		RequestID: requestid.FromContext(ctx),
	})
	if err != nil {
		u.logger.WarnContext(ctx, "record reset event", "event", event, "error", err)
	}
}
