package notification

import (
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"

	"github.com/psapy/dv-backend/pkg/logger"
)

// SendTelMsg posts an operational message to the configured Telegram group.
// Missing configuration is an error for the caller but never fatal for the
// service.
func SendTelMsg(msg string) error {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	group := os.Getenv("TELEGRAM_BOT_MESSAGE_GROUP")
	if botToken == "" || group == "" {
		return errors.New("TELEGRAM_BOT_TOKEN or TELEGRAM_BOT_MESSAGE_GROUP is not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid chat id")
	}

	_, err = bot.Send(tgbotapi.NewMessage(chatID, msg))
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to send telegram message")
		return err
	}
	return nil
}
