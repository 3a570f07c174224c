package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"alumni-check/internal/gatekeeper"
)

// Bot wires Telegram updates into the verification service and executes
// the actions it returns. All decisions live in the service; the bot only
// translates between tgbotapi types and service calls.
type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	svc       *gatekeeper.Service
	parseMode string
}

func New(botToken string, svc *gatekeeper.Service, parseMode string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Authorized on account @%s", api.Self.UserName)
	return &Bot{
		api:       api,
		s:         botAPISender{api: api},
		svc:       svc,
		parseMode: parseMode,
	}, nil
}

// Start consumes long-polling updates until ctx is cancelled or the
// updates channel closes.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.ChatJoinRequest != nil:
		req := update.ChatJoinRequest
		b.execute(b.svc.OnJoinRequest(ctx, gatekeeper.JoinRequest{
			Profile: profileOf(&req.From),
			ChatID:  req.Chat.ID,
			Bio:     req.Bio,
		}))

	case update.Message != nil && update.Message.Chat.IsPrivate() && update.Message.From != nil:
		msg := update.Message
		b.execute(b.svc.OnDirectMessage(ctx, profileOf(msg.From), msg.Text))

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		b.answerCallback(cb.ID)
		b.execute(b.svc.OnCallback(ctx, profileOf(cb.From), cb.Data))
	}
}

// execute performs the service's actions in order. A failed send is
// logged and skipped; join approvals and declines going to a user who
// blocked the bot must not stall the rest of the batch.
func (b *Bot) execute(acts []gatekeeper.Action) {
	for _, a := range acts {
		switch a.Kind {
		case gatekeeper.ActionSendMessage:
			b.sendAction(a)
		case gatekeeper.ActionApproveJoin:
			cfg := tgbotapi.ApproveChatJoinRequestConfig{
				ChatConfig: tgbotapi.ChatConfig{ChatID: a.ChatID},
				UserID:     a.UserID,
			}
			if _, err := b.s.Request(cfg); err != nil {
				log.Printf("❌ failed to approve join request for %d: %v", a.UserID, err)
			}
		case gatekeeper.ActionDeclineJoin:
			// the library names this one asymmetrically, no Config suffix
			cfg := tgbotapi.DeclineChatJoinRequest{
				ChatConfig: tgbotapi.ChatConfig{ChatID: a.ChatID},
				UserID:     a.UserID,
			}
			if _, err := b.s.Request(cfg); err != nil {
				log.Printf("❌ failed to decline join request for %d: %v", a.UserID, err)
			}
		}
	}
}

func (b *Bot) sendAction(a gatekeeper.Action) {
	msg := tgbotapi.NewMessage(a.ChatID, a.Text)
	if a.ParseMode != "" {
		msg.ParseMode = a.ParseMode
	}
	if len(a.Buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(a.Buttons))
		for _, btn := range a.Buttons {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message to %d: %v", a.ChatID, err)
	}
}

// SendMessage sends plain text outside the update loop; the scheduler
// uses it for the daily report.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if b.parseMode != "" {
		msg.ParseMode = b.parseMode
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(id, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
}

func profileOf(u *tgbotapi.User) gatekeeper.Profile {
	return gatekeeper.Profile{
		UserID:    u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
