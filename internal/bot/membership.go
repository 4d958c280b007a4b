package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ChannelGate checks whether a user belongs to the required channel through
// the platform client. A failed check counts as "not a member" so that a
// platform outage cannot open the gate.
type ChannelGate struct {
	client    chatMemberClient
	channelID string
	logger    *zap.Logger
}

type chatMemberClient interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

func NewChannelGate(client chatMemberClient, channelID string, logger *zap.Logger) *ChannelGate {
	return &ChannelGate{client: client, channelID: channelID, logger: logger}
}

func (g *ChannelGate) IsMember(userID int64) bool {
	member, err := g.client.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: g.channelID,
			UserID:             userID,
		},
	})
	if err != nil {
		g.logger.Warn("Failed to check channel membership",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return false
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	default:
		return false
	}
}
