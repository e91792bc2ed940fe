package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/lib/smtp"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// SenderService читает сообщения мониторинга из очереди и отправляет
// пользователю письмо о найденных утечках.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendAlert разбирает сообщение очереди и отправляет письмо-уведомление.
func (s *SenderService) SendAlert(body []byte) error {
	var alert models.AlertMessage
	if err := json.Unmarshal(body, &alert); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Обнаружены утечки данных: %d", alert.Count)
	bodyText := fmt.Sprintf(
		"Здравствуйте!\n\nПри очередной проверке адреса %s найдено утечек: %d, из них высокого риска: %d.\n\nЗайдите в личный кабинет, чтобы посмотреть подробности и рекомендации.",
		alert.Email, alert.Count, alert.HighRisk)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.transport.GetSMTPUser()),
		fmt.Sprintf("To: %s", alert.Email),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Error("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err = client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(alert.Email); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", alert.Email, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("alert email sent", slog.String("to", alert.Email))
	return nil
}
