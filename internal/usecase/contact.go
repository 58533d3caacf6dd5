package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mariocromia/centroservice/config"
	"github.com/mariocromia/centroservice/internal/abuse"
	"github.com/mariocromia/centroservice/internal/domain"
	"github.com/mariocromia/centroservice/pkg/email"
	"github.com/mariocromia/centroservice/pkg/logger"
	"github.com/mariocromia/centroservice/pkg/sanitize"
	"github.com/mariocromia/centroservice/pkg/security"
	"github.com/mariocromia/centroservice/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// AuditWriter persists one accepted submission to the append-only log.
type AuditWriter interface {
	Append(sub *domain.ContactSubmission) error
}

// timestampLayout is the format echoed back to the browser and used in the
// success payload.
const timestampLayout = "2006-01-02 15:04:05"

type contactUsecase struct {
	cfg      *config.Config
	validate *validator.Validate
	mailer   email.Mailer
	renderer *email.Renderer
	limiter  abuse.Limiter
	tokens   abuse.TokenStore
	audit    AuditWriter
	seclog   *security.SecurityLogger
}

// NewContactUsecase wires the submission pipeline. All collaborators are
// injected; the usecase holds no ambient state.
func NewContactUsecase(
	cfg *config.Config,
	mailer email.Mailer,
	renderer *email.Renderer,
	limiter abuse.Limiter,
	tokens abuse.TokenStore,
	audit AuditWriter,
	seclog *security.SecurityLogger,
) domain.ContactUsecase {
	v := validator.New()
	validation.RegisterValidators(v)

	return &contactUsecase{
		cfg:      cfg,
		validate: v,
		mailer:   mailer,
		renderer: renderer,
		limiter:  limiter,
		tokens:   tokens,
		audit:    audit,
		seclog:   seclog,
	}
}

// Submit runs one submission through sanitization, validation, the abuse
// gates, rendering, dispatch and the audit log. Validation and abuse
// rejections short-circuit before any side effect; downstream failures
// degrade into false flags on the result instead of failing the request.
func (uc *contactUsecase) Submit(ctx context.Context, req *domain.ContactRequest, meta domain.RequestMeta) (*domain.SubmissionResult, error) {
	sub := domain.ContactSubmission{
		Name:    sanitize.Clean(req.Name),
		Phone:   sanitize.Clean(req.Phone),
		Email:   sanitize.Clean(req.Email),
		Service: sanitize.Clean(req.Service),
		Message: sanitize.Clean(req.Message),
	}

	if err := uc.validate.Struct(sub); err != nil {
		uc.seclog.LogValidationFailed(ctx, meta.SourceIP, meta.UserAgent, meta.RequestID, failingFields(err))
		return nil, &domain.ValidationError{Messages: validation.FormatValidationErrors(err)}
	}

	if err := uc.checkAbuseGates(ctx, req, meta); err != nil {
		if err == domain.ErrHoneypot && uc.cfg.HoneypotSilentSuccess {
			// Policy: suspected bots get a normal-looking success while the
			// submission is dropped with no side effects.
			return fakeSuccess(uc.cfg.Timezone), nil
		}
		return nil, err
	}

	// Record is complete from here on; nothing below mutates it.
	sub.SubmittedAt = time.Now().In(uc.cfg.Timezone)
	sub.SourceIP = meta.SourceIP
	sub.UserAgent = meta.UserAgent

	adminPayload := uc.renderer.RenderAdminNotification(&sub)
	clientPayload := uc.renderer.RenderClientConfirmation(&sub)

	// The two sends are independent: one failing never stops the other, and
	// neither stops the audit append.
	var adminSent, clientSent bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		adminSent = uc.send(ctx, "admin", meta.RequestID, email.Message{
			To:       adminPayload.To,
			Subject:  adminPayload.Subject,
			HTMLBody: adminPayload.HTML,
			FromName: uc.cfg.CompanyName,
			FromAddr: uc.cfg.NoReplyEmail,
			ReplyTo:  sub.Email,
		})
	}()
	go func() {
		defer wg.Done()
		clientSent = uc.send(ctx, "client", meta.RequestID, email.Message{
			To:       clientPayload.To,
			Subject:  clientPayload.Subject,
			HTMLBody: clientPayload.HTML,
			FromName: uc.cfg.CompanyName,
			FromAddr: uc.cfg.AdminEmail,
		})
	}()
	wg.Wait()

	saved := false
	if uc.cfg.LogContacts {
		if err := uc.audit.Append(&sub); err != nil {
			uc.seclog.LogPersistenceFailed(ctx, meta.RequestID, err)
		} else {
			saved = true
		}
	}

	result := &domain.SubmissionResult{
		AdminEmailSent:  adminSent,
		ClientEmailSent: clientSent,
		SavedToFile:     saved,
		Timestamp:       sub.SubmittedAt.Format(timestampLayout),
	}

	if uc.cfg.Debug {
		logger.Log.Debug("contact submission processed",
			"name", sub.Name, "service", sub.Service,
			"admin_email_sent", adminSent, "client_email_sent", clientSent, "saved_to_file", saved)
		result.Debug = map[string]interface{}{
			"admin_email": uc.cfg.AdminEmail,
			"record":      sub,
		}
	}

	return result, nil
}

// checkAbuseGates runs the three independent anti-abuse controls. They are
// evaluated only after field validation passed.
func (uc *contactUsecase) checkAbuseGates(ctx context.Context, req *domain.ContactRequest, meta domain.RequestMeta) error {
	if uc.cfg.EnableHoneypot && strings.TrimSpace(req.Honeypot) != "" {
		uc.seclog.LogHoneypotTriggered(ctx, meta.SourceIP, meta.UserAgent, meta.RequestID, uc.cfg.HoneypotSilentSuccess)
		return domain.ErrHoneypot
	}

	if uc.cfg.EnableRateLimit {
		allowed, err := uc.limiter.Allow(ctx, meta.SourceIP)
		if err != nil {
			// Fail open: a limiter backend outage must not drop real leads.
			logger.Log.Warn("rate limiter unavailable, allowing submission", "error", err)
		} else if !allowed {
			uc.seclog.LogRateLimitTriggered(ctx, meta.SourceIP, meta.UserAgent, meta.RequestID)
			return domain.ErrRateLimited
		}
	}

	if uc.cfg.EnableCSRF {
		stored, err := uc.tokens.Lookup(ctx, meta.SessionID)
		if err != nil || !abuse.VerifyToken(req.CSRFToken, stored) {
			// One generic failure for mismatch, absence and store errors so
			// the caller cannot probe which check fired.
			uc.seclog.LogCSRFFailed(ctx, meta.SourceIP, meta.UserAgent, meta.RequestID)
			return domain.ErrInvalidSession
		}
	}

	return nil
}

// send dispatches one rendered payload, bounded by the configured mail
// timeout. Transport failures are logged and converted to false, never
// propagated: an outage must not abort the audit-logging step.
func (uc *contactUsecase) send(ctx context.Context, recipient, requestID string, msg email.Message) bool {
	sendCtx, cancel := context.WithTimeout(ctx, uc.cfg.MailTimeout)
	defer cancel()

	if err := uc.mailer.Send(sendCtx, msg); err != nil {
		uc.seclog.LogDispatchFailed(ctx, recipient, requestID, err)
		return false
	}
	return true
}

// failingFields extracts the struct field names from a validator error for
// the security event log.
func failingFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// fakeSuccess mimics an accepted submission for silently dropped bot traffic.
func fakeSuccess(loc *time.Location) *domain.SubmissionResult {
	return &domain.SubmissionResult{
		AdminEmailSent:  true,
		ClientEmailSent: true,
		SavedToFile:     true,
		Timestamp:       time.Now().In(loc).Format(timestampLayout),
	}
}
