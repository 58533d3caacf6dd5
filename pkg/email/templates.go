package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/mariocromia/centroservice/config"
	"github.com/mariocromia/centroservice/internal/domain"
	"github.com/mariocromia/centroservice/pkg/sanitize"
)

// Payload is one rendered notification: body, subject and target address.
type Payload struct {
	To      string
	Subject string
	HTML    string
}

// Branding carries the static company identity interpolated into both templates.
type Branding struct {
	CompanyName     string
	CompanyPhone    string
	CompanyWhatsApp string
	CompanyAddress  string
	AdminEmail      string
}

// Renderer produces the admin and client notification bodies. Rendering never
// fails for a validated submission: every interpolated value has already been
// escaped by the sanitizer, so fields are injected as trusted HTML.
type Renderer struct {
	branding Branding
}

// NewRenderer builds the renderer from config.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{branding: Branding{
		CompanyName:     cfg.CompanyName,
		CompanyPhone:    cfg.CompanyPhone,
		CompanyWhatsApp: cfg.CompanyWhatsApp,
		CompanyAddress:  cfg.CompanyAddress,
		AdminEmail:      cfg.AdminEmail,
	}}
}

type templateData struct {
	Name        template.HTML
	Phone       template.HTML
	Email       template.HTML
	ServiceName string
	Message     template.HTML
	PhoneDigits string
	WhatsAppMsg string
	Timestamp   string
	SourceIP    string
	UserAgent   string
	Emergency   bool
	Company     Branding
}

// RenderAdminNotification renders the internal lead notification. It carries
// every field plus the request metadata and one-click call/WhatsApp actions.
func (r *Renderer) RenderAdminNotification(sub *domain.ContactSubmission) Payload {
	data := r.newTemplateData(sub)

	subject := fmt.Sprintf("[%s] Nova Solicitação de Orçamento", r.branding.CompanyName)
	if sub.IsEmergency() {
		subject += " - EMERGÊNCIA"
	}

	return Payload{
		To:      r.branding.AdminEmail,
		Subject: subject,
		HTML:    render(adminTemplate, data),
	}
}

// RenderClientConfirmation renders the receipt confirmation sent back to the
// customer. It never exposes request metadata.
func (r *Renderer) RenderClientConfirmation(sub *domain.ContactSubmission) Payload {
	return Payload{
		To:      sub.Email,
		Subject: fmt.Sprintf("Confirmação de Solicitação - %s", r.branding.CompanyName),
		HTML:    render(clientTemplate, r.newTemplateData(sub)),
	}
}

func (r *Renderer) newTemplateData(sub *domain.ContactSubmission) templateData {
	serviceName, ok := domain.ServiceNames[sub.Service]
	if !ok {
		serviceName = sub.Service
	}

	waText := fmt.Sprintf("Olá %s! Aqui é da %s. Recebemos sua solicitação de orçamento para %s. Vamos entrar em contato em breve!",
		sub.Name, r.branding.CompanyName, serviceName)

	return templateData{
		Name:        template.HTML(sub.Name),
		Phone:       template.HTML(sub.Phone),
		Email:       template.HTML(sub.Email),
		ServiceName: serviceName,
		Message:     nl2br(sub.Message),
		PhoneDigits: sanitize.Digits(sub.Phone),
		// Query-position interpolation; html/template percent-encodes it.
		WhatsAppMsg: waText,
		Timestamp:   sub.SubmittedAt.Format("02/01/2006 15:04:05"),
		SourceIP:    sub.SourceIP,
		UserAgent:   sub.UserAgent,
		Emergency:   sub.IsEmergency(),
		Company:     r.branding,
	}
}

// nl2br turns the sanitizer-preserved newlines into line breaks.
func nl2br(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(s, "\n", "<br>"))
}

func render(t *template.Template, data templateData) string {
	var body bytes.Buffer
	// Templates are parsed at init and data carries no user-controlled
	// structure, so execution cannot fail for a validated submission.
	_ = t.Execute(&body, data)
	return body.String()
}

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <title>Novo Contato - {{.Company.CompanyName}}</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background: #f8f9fa; }
        .email-container { background: white; border-radius: 12px; padding: 30px; }
        .header { text-align: center; margin-bottom: 30px; padding-bottom: 20px; border-bottom: 2px solid #1e40af; }
        .logo { font-size: 24px; font-weight: bold; color: #1e40af; }
        .field { margin-bottom: 20px; padding: 15px; background: #f8f9fa; border-radius: 8px; border-left: 4px solid #1e40af; }
        .field-label { font-weight: bold; color: #1e40af; display: block; font-size: 14px; text-transform: uppercase; }
        .service-badge { display: inline-block; background: #1e40af; color: white; padding: 8px 16px; border-radius: 20px; font-weight: 600; }
        .priority { background: #dc2626; color: white; padding: 15px; border-radius: 8px; margin-bottom: 20px; text-align: center; font-weight: bold; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; text-align: center; color: #6b7280; font-size: 14px; }
        .btn { display: inline-block; background: #25D366; color: white; padding: 12px 24px; border-radius: 25px; text-decoration: none; font-weight: bold; margin: 5px; }
    </style>
</head>
<body>
    <div class="email-container">
        <div class="header">
            <div class="logo">🔧 {{.Company.CompanyName}}</div>
            <h1>Nova Solicitação de Orçamento</h1>
        </div>
        {{if .Emergency}}<div class="priority">⚠️ ATENDIMENTO EMERGENCIAL - PRIORIDADE ALTA</div>{{end}}
        <div class="field">
            <span class="field-label">Nome Completo</span>
            <div>{{.Name}}</div>
        </div>
        <div class="field">
            <span class="field-label">Telefone</span>
            <div><a href="tel:{{.PhoneDigits}}" style="color: #1e40af;">{{.Phone}}</a></div>
        </div>
        <div class="field">
            <span class="field-label">E-mail</span>
            <div><a href="mailto:{{.Email}}" style="color: #1e40af;">{{.Email}}</a></div>
        </div>
        <div class="field">
            <span class="field-label">Serviço Solicitado</span>
            <div><span class="service-badge">{{.ServiceName}}</span></div>
        </div>
        <div class="field">
            <span class="field-label">Mensagem</span>
            <div>{{.Message}}</div>
        </div>
        <div class="footer">
            <p><strong>Data/Hora:</strong> {{.Timestamp}}</p>
            <p><strong>IP:</strong> {{.SourceIP}}</p>
            <p><strong>Navegador:</strong> {{.UserAgent}}</p>
            <p>Este e-mail foi enviado automaticamente pelo sistema do site {{.Company.CompanyName}}.</p>
            <div style="margin-top: 20px;">
                <a href="tel:{{.PhoneDigits}}" class="btn">📞 Ligar para Cliente</a>
                <a href="https://wa.me/{{.PhoneDigits}}?text={{.WhatsAppMsg}}" class="btn">💬 WhatsApp</a>
            </div>
        </div>
    </div>
</body>
</html>`))

var clientTemplate = template.Must(template.New("client").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <title>Confirmação de Solicitação - {{.Company.CompanyName}}</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background: #f8f9fa; }
        .email-container { background: white; border-radius: 12px; padding: 30px; }
        .header { text-align: center; margin-bottom: 30px; padding: 30px; background: #1e40af; border-radius: 12px; color: white; }
        .logo { font-size: 28px; font-weight: bold; }
        .service-info { background: #f8f9fa; padding: 20px; border-radius: 8px; border-left: 4px solid #1e40af; margin: 20px 0; }
        .service-badge { display: inline-block; background: #1e40af; color: white; padding: 8px 16px; border-radius: 20px; font-weight: 600; }
        .next-steps { background: #e0f2fe; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .emergency { background: #fecaca; padding: 20px; border-radius: 8px; margin: 20px 0; text-align: center; color: #991b1b; }
        .contact-info { background: #f0f9ff; padding: 20px; border-radius: 8px; margin: 20px 0; text-align: center; }
        .btn { display: inline-block; background: #25D366; color: white; padding: 12px 24px; border-radius: 25px; text-decoration: none; font-weight: bold; margin: 5px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; text-align: center; color: #6b7280; font-size: 14px; }
    </style>
</head>
<body>
    <div class="email-container">
        <div class="header">
            <div class="logo">🔧 {{.Company.CompanyName}}</div>
            <h1>Obrigado pelo seu contato!</h1>
        </div>
        <p>Olá, <strong>{{.Name}}</strong>!</p>
        <p>Recebemos sua solicitação de orçamento e agradecemos pela confiança em nossos serviços.</p>
        <div class="service-info">
            <span class="service-badge">{{.ServiceName}}</span>
            <p><strong>Sua mensagem:</strong></p>
            <p style="font-style: italic;">"{{.Message}}"</p>
        </div>
        {{if .Emergency}}
        <div class="emergency">
            <h3>🚨 ATENDIMENTO EMERGENCIAL</h3>
            <p>Sua solicitação foi marcada como <strong>URGENTE</strong>.</p>
            <p>Nossa equipe entrará em contato em <strong>máximo 30 minutos</strong>.</p>
            <p>Para contato imediato: <strong>{{.Company.CompanyPhone}}</strong></p>
        </div>
        {{else}}
        <div class="next-steps">
            <h3 style="margin-top: 0; color: #0369a1;">📋 Próximos Passos</h3>
            <ul style="margin: 0; padding-left: 20px;">
                <li>Nossa equipe analisará sua solicitação</li>
                <li>Entraremos em contato em <strong>até 2 horas</strong></li>
                <li>Agendaremos uma visita técnica gratuita</li>
                <li>Apresentaremos um orçamento detalhado</li>
            </ul>
        </div>
        {{end}}
        <div class="contact-info">
            <h3 style="margin-top: 0; color: #1e40af;">📞 Precisa de Atendimento Imediato?</h3>
            <p><strong>Seg-Sex:</strong> 8h às 18h | <strong>Sáb:</strong> 8h às 16h</p>
            <p><strong>Emergências:</strong> 24h</p>
            <a href="tel:+{{.Company.CompanyWhatsApp}}" class="btn">📞 Ligar Agora</a>
            <a href="https://wa.me/{{.Company.CompanyWhatsApp}}" class="btn">💬 WhatsApp</a>
        </div>
        <p>Atenciosamente,<br><strong>Equipe {{.Company.CompanyName}}</strong></p>
        <div class="footer">
            <p><strong>{{.Company.CompanyName}} - Sua casa em boas mãos</strong></p>
            <p>📍 {{.Company.CompanyAddress}} | 📞 {{.Company.CompanyPhone}} | ✉️ {{.Company.AdminEmail}}</p>
            <p style="font-size: 12px;">Este é um e-mail automático de confirmação. Por favor, não responda diretamente a este e-mail.</p>
        </div>
    </div>
</body>
</html>`))
