package v1

import (
	"errors"
	"net/http"

	"github.com/mariocromia/centroservice/config"
	"github.com/mariocromia/centroservice/internal/abuse"
	"github.com/mariocromia/centroservice/internal/delivery/http/response"
	"github.com/mariocromia/centroservice/internal/domain"
	"github.com/mariocromia/centroservice/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the anonymous session the CSRF token is bound to.
	SessionCookieName = "contact_session"

	acceptedMessage       = "Solicitação enviada com sucesso! Entraremos em contato em breve."
	genericAbuseMessage   = "Não foi possível processar sua solicitação. Tente novamente mais tarde."
	invalidSessionMessage = "Sessão inválida. Recarregue a página e tente novamente."
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
	tokens    abuse.TokenStore
	cfg       *config.Config
}

// NewContactHandler registers the public contact form routes.
func NewContactHandler(r *gin.Engine, contactUC domain.ContactUsecase, tokens abuse.TokenStore, cfg *config.Config) {
	handler := &ContactHandler{
		contactUC: contactUC,
		tokens:    tokens,
		cfg:       cfg,
	}

	r.POST("/submit-contact", handler.SubmitContact)
	r.GET("/csrf-token", handler.IssueToken)
}

// SubmitContact godoc
// @Summary      Submit quote request
// @Description  Validates and processes the contact/quote-request form: sends the admin and client notifications and appends the audit record. Public endpoint.
// @Tags         contact
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        name       formData  string  true   "Full name"
// @Param        phone      formData  string  true   "Phone, format (XX) XXXXX-XXXX"
// @Param        email      formData  string  true   "Email address"
// @Param        service    formData  string  true   "Service key"  Enums(eletrica, hidraulica, pintura, ar-condicionado, manutencao, emergencia)
// @Param        message    formData  string  true   "Message"
// @Param        csrf_token formData  string  false  "Session-bound CSRF token"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      405  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /submit-contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest("Requisição inválida"))
		return
	}

	sessionID, _ := c.Cookie(SessionCookieName)
	requestID, _ := c.Get("RequestID")
	reqIDStr, _ := requestID.(string)

	meta := domain.RequestMeta{
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: sessionID,
		RequestID: reqIDStr,
	}

	result, err := h.contactUC.Submit(c.Request.Context(), &req, meta)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			response.Error(c, http.StatusBadRequest, ve.Error(), nil)
		case errors.Is(err, domain.ErrInvalidSession):
			response.Error(c, http.StatusBadRequest, invalidSessionMessage, nil)
		case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrHoneypot):
			// Deliberately indistinguishable rejections
			response.Error(c, http.StatusBadRequest, genericAbuseMessage, nil)
		default:
			c.Error(apperror.Internal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, acceptedMessage, result)
}

// IssueToken godoc
// @Summary      Issue CSRF token
// @Description  Sets the anonymous session cookie and returns the session-bound CSRF token the form must round-trip.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /csrf-token [get]
func (h *ContactHandler) IssueToken(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			SessionCookieName,
			sessionID,
			int(abuse.TokenTTL.Seconds()),
			"/",
			"",
			h.cfg.Environment == "production",
			true,
		)
	}

	token, err := h.tokens.Issue(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Token gerado", gin.H{"csrf_token": token})
}
