package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/palaver-im/palaver/pkg/internal/models"
)

// NotifyMessageOffline hands a new message to the mail capability for every
// member without a live connection, honoring their notify level. The send
// is fire-and-forget; the message flow never blocks on it.
func NotifyMessageOffline(channel models.Channel, message models.Message) {
	members, err := ListChannelMember(channel.ID, 0, 0)
	if err != nil {
		return
	}

	for _, member := range members {
		if member.AccountID == message.SenderID {
			continue
		}
		if member.Notify == models.NotifyLevelNone {
			continue
		}
		if CheckOnline(member.AccountID) || CheckFocused(member.AccountID, channel.ID) {
			continue
		}
		if len(member.Account.Email) == 0 {
			continue
		}

		subject := fmt.Sprintf("New message in %s", channel.DisplayText())
		body := message.Content
		if len(body) == 0 {
			body = fmt.Sprintf("%d attachment(s)", len(message.Attachments))
		}

		go sendMail(member.Account.Email, subject, body)
	}
}

func sendMail(to, subject, body string) {
	addr := viper.GetString("mailer.addr")
	if len(addr) == 0 {
		return
	}

	from := viper.GetString("mailer.from")
	auth := smtp.PlainAuth(
		"",
		viper.GetString("mailer.username"),
		viper.GetString("mailer.password"),
		strings.Split(addr, ":")[0],
	)

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(payload)); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("An error occurred when sending notification mail...")
	}
}
