package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"go.uber.org/zap"
)

// PostfixFilter implements a Postfix content filter that stamps risk headers
// on each message and hands it back to Postfix
type PostfixFilter struct {
	service       *core.RiskService
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	cfg           config.ServerConfig
	server        *smtp.Server

	// forward delivers the stamped message; defaults to sendToPostfix
	forward func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.RiskService,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	cfg config.ServerConfig,
) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[**SPAM**] "
	}

	f := &PostfixFilter{
		service:       service,
		textProcessor: textProcessor,
		logger:        logger,
		cfg:           cfg,
	}
	f.forward = f.sendToPostfix
	return f
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail scores an email without touching the SMTP path
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// sendToPostfix re-injects the processed message on the configured port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.cfg.PostfixAddress, fmt.Sprint(f.cfg.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// The message is already accepted at this point
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// handleMessage scores one raw message and returns the rewritten message, or
// an SMTP error when the message is rejected
func (f *PostfixFilter) handleMessage(ctx context.Context, sender string, recipients []string, raw []byte) ([]byte, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	email := &core.Email{
		Headers: make(map[string][]string, len(msg.Header)),
		Body:    f.textProcessor.ProcessText(body, f.cfg.MaxBodySize),
		From:    sender,
		To:      recipients,
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
	}
	email.Subject = decodeEncodedHeader(msg.Header.Get("Subject"))

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	result, analysisErr := f.service.AnalyzeEmail(ctx, email)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))
	}

	highRisk := analysisErr == nil && f.service.IsHighRisk(result)
	if highRisk && f.cfg.BlockHighRisk {
		f.logger.Info("Rejecting high risk email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("spam_probability", result.Verdict.Probability))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as high risk (score: %.2f)", result.Verdict.Probability),
		}
	}

	var out bytes.Buffer
	if analysisErr != nil {
		fmt.Fprintf(&out, "X-Risk-Analysis-Error: %s\r\n", headerValue(analysisErr.Error()))
	} else {
		fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.RiskHeader, result.Verdict.Tier)
		fmt.Fprintf(&out, "%s: %.2f\r\n", f.cfg.ScoreHeader, result.Verdict.Probability)
		if f.cfg.CleanedHeader != "" {
			fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.CleanedHeader, headerValue(f.textProcessor.TruncateText(result.Verdict.CleanedText, 200)))
		}
	}

	rewriteSubject := highRisk && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" &&
		!strings.HasPrefix(email.Subject, f.cfg.SubjectPrefix)
	if rewriteSubject {
		fmt.Fprintf(&out, "Subject: %s\r\n", encodeHeader(f.cfg.SubjectPrefix+email.Subject))
	}
	stamped := []string{f.cfg.RiskHeader, f.cfg.ScoreHeader, f.cfg.CleanedHeader, "X-Risk-Analysis-Error"}
	if rewriteSubject {
		stamped = append(stamped, "Subject")
	}
	header, rawBody := splitMessage(raw)
	for _, field := range headerFields(header) {
		if matchesAny(field.name, stamped) {
			continue
		}
		for _, line := range field.lines {
			out.Write(line)
			out.WriteString("\r\n")
		}
	}
	out.WriteString("\r\n")
	out.Write(rawBody)

	logFields := []zap.Field{
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
	}
	if result != nil {
		logFields = append(logFields,
			zap.String("risk", result.Verdict.Tier.String()),
			zap.Float64("spam_probability", result.Verdict.Probability),
			zap.String("source", result.Source))
	}
	f.logger.Info("Processed email", logFields...)

	return out.Bytes(), nil
}

// splitMessage splits a raw message at the first blank line. The body keeps
// its MIME parts untouched.
func splitMessage(raw []byte) (header, body []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i != -1 {
		return raw[:i+2], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i != -1 {
		return raw[:i+1], raw[i+2:]
	}
	return raw, nil
}

// headerField is one header as it appeared on the wire, folded lines included
type headerField struct {
	name  string
	lines [][]byte
}

// headerFields splits a header block into fields in their original order
func headerFields(header []byte) []headerField {
	var fields []headerField
	for _, line := range bytes.Split(header, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) == 0 {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(fields) > 0 {
			last := &fields[len(fields)-1]
			last.lines = append(last.lines, line)
			continue
		}
		name, _, _ := bytes.Cut(line, []byte(":"))
		fields = append(fields, headerField{
			name:  string(bytes.TrimSpace(name)),
			lines: [][]byte{line},
		})
	}
	return fields
}

func matchesAny(name string, names []string) bool {
	for _, n := range names {
		if n != "" && strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// headerValue keeps a value on a single header line
func headerValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scores the message and forwards it to Postfix
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := s.filter.handleMessage(ctx, s.sender, s.recipients, raw)
	if err != nil {
		var smtpErr *smtp.SMTPError
		if !errors.As(err, &smtpErr) {
			s.filter.logger.Error("Failed to process message", zap.Error(err))
		}
		return err
	}

	if !s.filter.cfg.PostfixEnabled {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}
	if err := s.filter.forward(s.sender, s.recipients, out); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
