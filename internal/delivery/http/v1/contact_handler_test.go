package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mariocromia/centroservice/config"
	"github.com/mariocromia/centroservice/internal/abuse"
	"github.com/mariocromia/centroservice/internal/delivery/http/response"
	"github.com/mariocromia/centroservice/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactUsecase struct {
	mock.Mock
}

func (m *MockContactUsecase) Submit(ctx context.Context, req *domain.ContactRequest, meta domain.RequestMeta) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionResult), args.Error(1)
}

func testRouter(uc domain.ContactUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		ContactUC:  uc,
		TokenStore: abuse.NewMemoryTokenStore(),
		Config: &config.Config{
			Environment: "test",
			FrontendURL: "http://localhost:3000",
		},
	})
}

func validForm() url.Values {
	form := url.Values{}
	form.Set("name", "Ana Lima")
	form.Set("phone", "(21) 98877-6655")
	form.Set("email", "ana@example.com")
	form.Set("service", "eletrica")
	form.Set("message", "Preciso trocar o quadro de luz.")
	return form
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit-contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSubmitContact_Accepted(t *testing.T) {
	uc := new(MockContactUsecase)
	uc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(&domain.SubmissionResult{
		AdminEmailSent:  true,
		ClientEmailSent: true,
		SavedToFile:     true,
		Timestamp:       "2025-03-10 14:22:05",
	}, nil)

	w := postForm(testRouter(uc), validForm())

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "Solicitação enviada com sucesso! Entraremos em contato em breve.", body.Message)
	assert.NotEmpty(t, body.RequestID)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["admin_email_sent"])
	assert.Equal(t, true, data["client_email_sent"])
	assert.Equal(t, true, data["saved_to_file"])
	assert.Equal(t, "2025-03-10 14:22:05", data["timestamp"])

	uc.AssertExpectations(t)
}

func TestSubmitContact_PassesRequestMeta(t *testing.T) {
	uc := new(MockContactUsecase)
	uc.On("Submit", mock.Anything, mock.Anything, mock.MatchedBy(func(meta domain.RequestMeta) bool {
		return meta.SessionID == "sess-abc" && meta.UserAgent == "form-test/1.0" && meta.RequestID != ""
	})).Return(&domain.SubmissionResult{}, nil)

	r := testRouter(uc)
	req := httptest.NewRequest(http.MethodPost, "/submit-contact", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "form-test/1.0")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestSubmitContact_ValidationErrors(t *testing.T) {
	uc := new(MockContactUsecase)
	uc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, &domain.ValidationError{
		Messages: []string{
			"Telefone deve estar no formato (XX) XXXXX-XXXX",
			"E-mail inválido",
		},
	})

	w := postForm(testRouter(uc), validForm())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "Telefone deve estar no formato (XX) XXXXX-XXXX, E-mail inválido", body.Message)
}

func TestSubmitContact_AbuseRejectionsAreGeneric(t *testing.T) {
	for name, err := range map[string]error{
		"rate limited": domain.ErrRateLimited,
		"honeypot":     domain.ErrHoneypot,
	} {
		t.Run(name, func(t *testing.T) {
			uc := new(MockContactUsecase)
			uc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, err)

			w := postForm(testRouter(uc), validForm())

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, "Não foi possível processar sua solicitação. Tente novamente mais tarde.", body.Message)
		})
	}
}

func TestSubmitContact_InvalidSession(t *testing.T) {
	uc := new(MockContactUsecase)
	uc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidSession)

	w := postForm(testRouter(uc), validForm())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Sessão inválida. Recarregue a página e tente novamente.", body.Message)
}

func TestSubmitContact_InternalError(t *testing.T) {
	uc := new(MockContactUsecase)
	uc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	w := postForm(testRouter(uc), validForm())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "Erro interno do servidor. Tente novamente ou entre em contato via WhatsApp.", body.Message)
}

func TestSubmitContact_MethodNotAllowed(t *testing.T) {
	uc := new(MockContactUsecase)
	r := testRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/submit-contact", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Método não permitido", body.Message)
	uc.AssertNotCalled(t, "Submit")
}

func TestIssueToken_SetsSessionAndReturnsToken(t *testing.T) {
	r := testRouter(new(MockContactUsecase))

	req := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["csrf_token"].(string)
	assert.Len(t, token, 64)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Value)
	assert.True(t, session.HttpOnly)
}

func TestIssueToken_ReusesExistingSession(t *testing.T) {
	r := testRouter(new(MockContactUsecase))

	first := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	first.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-keep"})
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, first)

	second := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	second.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-keep"})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, second)

	token1 := decodeBody(t, w1).Data.(map[string]interface{})["csrf_token"]
	token2 := decodeBody(t, w2).Data.(map[string]interface{})["csrf_token"]
	assert.Equal(t, token1, token2)

	// No fresh cookie when one already exists.
	assert.Empty(t, w2.Result().Cookies())
}

func TestHealth(t *testing.T) {
	r := testRouter(new(MockContactUsecase))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody(t, w).Success)
}
