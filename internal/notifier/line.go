package notifier

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/Erm2130/buu-api/internal/models"
)

// LineNotifier pushes digest messages through the LINE Messaging API.
type LineNotifier struct {
	bot *messaging_api.MessagingApiAPI
}

// NewLineNotifier creates a notifier from a channel access token.
func NewLineNotifier(channelToken string) (*LineNotifier, error) {
	bot, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("สร้าง LINE client ไม่สำเร็จ (failed to create LINE client): %w", err)
	}
	return &LineNotifier{bot: bot}, nil
}

// PushDigest sends the rendered digest to its LINE user.
func (n *LineNotifier) PushDigest(d models.DailyDigest) error {
	_, err := n.bot.PushMessage(&messaging_api.PushMessageRequest{
		To: d.LineUserID,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{
				Text: DigestMessage(d),
			},
		},
	}, "")
	if err != nil {
		return fmt.Errorf("ส่งข้อความ LINE ไม่สำเร็จ (failed to push LINE message): %w", err)
	}
	return nil
}
