package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler is the conversation core the adapter feeds events into.
type Handler interface {
	HandleStart(userID int64)
	HandleText(ctx context.Context, userID int64, text string)
	HandleChoice(userID int64, choiceID string)
}

// Adapter bridges Telegram long polling to the conversation controller and
// implements the controller's Replier over plain messages and inline
// keyboards. The controller stays unaware of the wire protocol.
type Adapter struct {
	api *tgbotapi.BotAPI
}

// New authenticates against the Bot API with the given token.
func New(token string) (*Adapter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authentication failed: %w", err)
	}
	log.Printf("INFO: authorized on account %s", api.Self.UserName)
	return &Adapter{api: api}, nil
}

// ReplyText sends a plain text message to the user.
func (a *Adapter) ReplyText(userID int64, text string) error {
	_, err := a.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// ReplyWithChoices sends a message with one inline button per choice id, in
// the given order. The callback data is the choice id itself.
func (a *Adapter) ReplyWithChoices(userID int64, text string, choiceIDs []string) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choiceIDs))
	for _, id := range choiceIDs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(id, id),
		))
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := a.api.Send(msg)
	return err
}

// Run consumes updates until ctx is cancelled. Each update is handled in its
// own goroutine so one slow fetch never blocks other users.
func (a *Adapter) Run(ctx context.Context, h Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go a.handleUpdate(ctx, h, update)
		}
	}
}

func (a *Adapter) handleUpdate(ctx context.Context, h Handler, update tgbotapi.Update) {
	userID, ok := updateUserID(update)
	if !ok {
		return
	}

	// An unexpected failure in one update must not take down the loop or
	// affect other users; report it to the sender and move on.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: update handler panicked for user %d: %v", userID, r)
			if err := a.ReplyText(userID, fmt.Sprintf("Error fetching WBGT data: %v", r)); err != nil {
				log.Printf("reply to user %d failed: %v", userID, err)
			}
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		// Acknowledge the button press so the client stops its spinner.
		if _, err := a.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("callback ack for user %d failed: %v", userID, err)
		}
		h.HandleChoice(userID, cb.Data)

	case update.Message != nil:
		msg := update.Message
		if msg.IsCommand() {
			if msg.Command() == "start" {
				h.HandleStart(userID)
			}
			return
		}
		if msg.Text == "" {
			return
		}
		h.HandleText(ctx, userID, msg.Text)
	}
}

func updateUserID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.Message != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}
