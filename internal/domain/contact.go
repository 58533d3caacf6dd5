package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service keys accepted by the quote-request form. Anything else is rejected.
const (
	ServiceEletrica       = "eletrica"
	ServiceHidraulica     = "hidraulica"
	ServicePintura        = "pintura"
	ServiceArCondicionado = "ar-condicionado"
	ServiceManutencao     = "manutencao"
	ServiceEmergencia     = "emergencia"
)

// ServiceNames maps service keys to display names used in emails.
var ServiceNames = map[string]string{
	ServiceEletrica:       "Serviços Elétricos",
	ServiceHidraulica:     "Serviços Hidráulicos",
	ServicePintura:        "Pintura Profissional",
	ServiceArCondicionado: "Ar Condicionado",
	ServiceManutencao:     "Manutenção Geral",
	ServiceEmergencia:     "Emergência 24h",
}

// ContactRequest is the raw form submission as received. Untrusted.
type ContactRequest struct {
	Name    string `form:"name"`
	Phone   string `form:"phone"`
	Email   string `form:"email"`
	Service string `form:"service"`
	Message string `form:"message"`
	// Honeypot must stay empty; bots fill it.
	Honeypot  string `form:"honeypot"`
	CSRFToken string `form:"csrf_token"`
}

// RequestMeta carries the request-scoped metadata the orchestrator attaches
// to an accepted submission. Never supplied by the caller's form fields.
type RequestMeta struct {
	SourceIP  string
	UserAgent string
	SessionID string
	RequestID string
}

// ContactSubmission is the validated, canonical record. It exists only after
// every field passed validation and is never mutated afterwards.
type ContactSubmission struct {
	Name        string    `json:"name" validate:"required"`
	Phone       string    `json:"phone" validate:"required,br_phone"`
	Email       string    `json:"email" validate:"required,email"`
	Service     string    `json:"service" validate:"required,oneof=eletrica hidraulica pintura ar-condicionado manutencao emergencia"`
	Message     string    `json:"message" validate:"required"`
	SubmittedAt time.Time `json:"timestamp"`
	SourceIP    string    `json:"ip"`
	UserAgent   string    `json:"user_agent"`
}

// IsEmergency reports whether the submission asked for the 24h emergency service.
func (s *ContactSubmission) IsEmergency() bool {
	return s.Service == ServiceEmergencia
}

// SubmissionResult is the data block returned on an accepted submission.
// Partial downstream failures surface here as false flags, never as an
// overall error: the lead was captured even if a channel failed.
type SubmissionResult struct {
	AdminEmailSent  bool   `json:"admin_email_sent"`
	ClientEmailSent bool   `json:"client_email_sent"`
	SavedToFile     bool   `json:"saved_to_file"`
	Timestamp       string `json:"timestamp"`
	// Debug is only populated when DEBUG_MODE is on. Never in production.
	Debug map[string]interface{} `json:"debug,omitempty"`
}

// ValidationError carries the ordered, human-readable field errors of a
// rejected submission. All field problems are reported at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Abuse-gate rejections. Both surface to the caller as generic messages so an
// attacker cannot probe which control fired.
var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrInvalidSession = errors.New("invalid session")
	// ErrHoneypot marks a suspected bot submission. Depending on policy it
	// is either answered with a fake success or a generic rejection.
	ErrHoneypot = errors.New("honeypot triggered")
)

// ContactUsecase processes quote-request submissions end to end.
type ContactUsecase interface {
	// Submit validates, renders, dispatches and persists one submission.
	// On validation failure it returns *ValidationError; abuse rejections
	// return ErrRateLimited, ErrInvalidSession or ErrHoneypot.
	Submit(ctx context.Context, req *ContactRequest, meta RequestMeta) (*SubmissionResult, error)
}
