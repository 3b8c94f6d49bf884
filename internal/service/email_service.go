package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"shg-service/configs"
	"shg-service/internal/models"
	"shg-service/internal/repository"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSvc is an implementation of the service.EmailService interface
type EmailSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
	sender Sender
}

// NewEmailService creates a new EmailSvc. Without Config.Email.Enabled every
// send is a no-op.
func NewEmailService(deps Dependencies) *EmailSvc {
	svc := &EmailSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
		sender: deps.Mailer,
	}

	if svc.sender == nil && deps.Config.Email.Enabled {
		svc.sender = gomail.NewDialer(
			deps.Config.Email.SMTPHost,
			deps.Config.Email.SMTPPort,
			deps.Config.Email.SMTPUser,
			deps.Config.Email.SMTPPassword,
		)
	}

	return svc
}

func (s *EmailSvc) enabled() bool {
	return s.config.Email.Enabled && s.sender != nil
}

// SendPeriodClosed mails the close summary to the group leader
func (s *EmailSvc) SendPeriodClosed(ctx context.Context, groupID int, result *models.PeriodCloseResult) error {
	if !s.enabled() {
		return nil
	}

	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	leader, err := s.repos.User.GetByID(ctx, group.LeaderID)
	if err != nil {
		return fmt.Errorf("failed to get group leader: %w", err)
	}

	if leader.Email == "" {
		return nil
	}

	closed := result.ClosedPeriod
	currency := s.config.Finance.Currency
	subject := fmt.Sprintf("%s: period #%d closed", group.Name, closed.SequenceNumber)

	body := fmt.Sprintf(`
	<h2>Period Closed</h2>
	<p>Dear %s,</p>

	<p>Period #%d of <strong>%s</strong> has been closed.</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Total Collected:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Interest Earned:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Late Fines:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Cash in Hand:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Cash in Bank:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Total Standing:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Members Present:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
		</tr>
	</table>

	<p>Period #%d starts on %s.</p>
	`,
		leader.FirstName,
		closed.SequenceNumber, group.Name,
		closed.TotalCollection, currency,
		closed.InterestEarned, currency,
		closed.LateFinesCollected, currency,
		closed.CashInHandAtEnd, currency,
		closed.CashInBankAtEnd, currency,
		closed.TotalStandingAtEnd, currency,
		closed.MembersPresent,
		result.NextPeriod.SequenceNumber, result.NextPeriod.StartDate.Format("2006-01-02"),
	)

	if err := s.sendEmail(leader.Email, subject, body); err != nil {
		return err
	}

	s.logger.Infof("Period close summary sent to %s for period %d", leader.Email, closed.ID)

	return nil
}

// SendPaymentReceipt mails a receipt to a member whose contribution is paid
func (s *EmailSvc) SendPaymentReceipt(ctx context.Context, contribution *models.Contribution) error {
	if !s.enabled() {
		return nil
	}

	member, err := s.repos.Member.GetByID(ctx, contribution.MemberID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	if member.Email == "" {
		return nil
	}

	group, err := s.repos.Group.GetByID(ctx, member.GroupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	currency := s.config.Finance.Currency
	subject := fmt.Sprintf("%s: payment received", group.Name)

	body := fmt.Sprintf(`
	<h2>Payment Receipt</h2>
	<p>Dear %s,</p>

	<p>Your contribution to <strong>%s</strong> is fully paid.</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Minimum Due:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Total Paid:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Late Fine:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Credit Balance:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
		</tr>
	</table>
	`,
		member.Name,
		group.Name,
		contribution.MinimumDueAmount, currency,
		contribution.TotalPaid, currency,
		contribution.LateFineAmount, currency,
		contribution.CreditBalance, currency,
	)

	if err := s.sendEmail(member.Email, subject, body); err != nil {
		return err
	}

	s.logger.Infof("Payment receipt sent to %s for contribution %d", member.Email, contribution.ID)

	return nil
}

func (s *EmailSvc) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
