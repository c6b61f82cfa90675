package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/services"
)

const emailInterval = 3 * time.Second

// SendAssignmentNotices emails each sevadar their new assignment. Sending is
// best effort: the first failure aborts the batch and is reported to the
// caller, who logs it without unwinding anything.
func (c *Client) SendAssignmentNotices(ctx context.Context, notices []services.AssignmentNotice) error {
	for _, notice := range notices {
		subject := fmt.Sprintf("Seva assignment: %s on %s", notice.ProgramName, notice.Start.Format("Mon Jan 2 2006"))
		body := fmt.Sprintf(
			"Waheguru Ji Ka Khalsa,\n\nYou have been assigned to %s.\n\nWhen: %s to %s\nWhere: %s\n\nPlease contact the office if you are unable to attend.\n",
			notice.ProgramName,
			notice.Start.Format("Mon Jan 2 2006 15:04"),
			notice.End.Format("15:04"),
			notice.Location,
		)
		if err := c.sendEmail(notice.Email, subject, body); err != nil {
			return fmt.Errorf("failed to notify %s: %w", notice.Email, err)
		}
	}
	return nil
}

// sendEmail sends one email, throttled to respect Gmail API rate limits.
func (c *Client) sendEmail(to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if elapsed := time.Since(c.lastSendTime); elapsed < emailInterval {
			time.Sleep(emailInterval - elapsed)
		}
	}

	header := fmt.Sprintf("To: %s\r\n", to)
	if c.sender != "" {
		header = fmt.Sprintf("From: %s\r\n%s", c.sender, header)
	}
	message := fmt.Sprintf("%sSubject: %s\r\n\r\n%s", header, subject, body)

	gmailMessage := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(message)),
	}

	if _, err := c.service.Users.Messages.Send("me", gmailMessage).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}
