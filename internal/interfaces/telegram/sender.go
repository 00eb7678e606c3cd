package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the slice of the Telegram client the handlers use. *tgbotapi.BotAPI
// satisfies it; tests substitute a recording fake.
type Sender interface {
	// Send delivers a message, photo or edit and returns the sent message
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)

	// Request performs a raw API call; used to answer callback queries
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
