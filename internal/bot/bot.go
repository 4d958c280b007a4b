package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/simorghai/simorgh-bot/internal/ai"
	"github.com/simorghai/simorgh-bot/internal/models"
	"github.com/simorghai/simorgh-bot/internal/quota"
	"go.uber.org/zap"
)

// Telegram caps a single message at 4096 characters; longer replies are
// split into answer and footer.
const (
	maxMessageLength  = 4096
	fallbackMaxLength = 4000
)

// telegramClient is the slice of the platform API the bot actually uses.
// *tgbotapi.BotAPI satisfies it.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Answerer produces an AI answer for a user question.
type Answerer interface {
	Ask(ctx context.Context, question, displayName string) ai.Result
}

// SiteAPI exposes the site search and stats endpoints.
type SiteAPI interface {
	Search(ctx context.Context, query string) string
	Stats(ctx context.Context) (*models.SiteStats, bool)
}

type Settings struct {
	ChannelID         string
	DailyLimit        int
	MaxQuestionLength int
}

type Bot struct {
	api      *tgbotapi.BotAPI
	client   telegramClient
	answers  Answerer
	site     SiteAPI
	quota    quota.Store
	gate     *ChannelGate
	logger   *zap.Logger
	settings Settings

	mu             sync.Mutex
	awaitingSearch map[int64]bool
	userLocks      map[int64]*sync.Mutex
}

func New(token string, store quota.Store, answers Answerer, site SiteAPI, settings Settings, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:            api,
		client:         api,
		answers:        answers,
		site:           site,
		quota:          store,
		gate:           NewChannelGate(api, settings.ChannelID, logger),
		logger:         logger,
		settings:       settings,
		awaitingSearch: make(map[int64]bool),
		userLocks:      make(map[int64]*sync.Mutex),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	// A pending search prompt captures the next text message, whatever it is.
	if b.takeAwaitingSearch(message.Chat.ID) {
		b.handleSearchQuery(ctx, message, text)
		return
	}

	b.handleQuestion(ctx, message, text)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.sendMessage(message.Chat.ID, helpText)
	default:
		b.sendMessage(message.Chat.ID, unknownCommandText)
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	name := displayName(message.From)
	greeting := fmt.Sprintf("سلام %s!\n\n%s", name, welcomeText(b.settings.DailyLimit))

	msg := tgbotapi.NewMessage(message.Chat.ID, greeting)
	msg.ReplyMarkup = mainKeyboard(b.settings.ChannelID)
	if _, err := b.client.Send(msg); err != nil {
		b.logger.Error("Failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.client.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback query", zap.Error(err))
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	switch query.Data {
	case "help":
		b.editMessage(chatID, messageID, helpText)
	case "stats":
		b.handleStatsCallback(ctx, query, chatID, messageID)
	case "search_model", "ai_search":
		b.setAwaitingSearch(chatID)
		b.editMessage(chatID, messageID, searchPromptText)
	default:
		b.logger.Debug("Ignoring unknown callback", zap.String("data", query.Data))
	}
}

func (b *Bot) handleStatsCallback(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int) {
	if stats, ok := b.site.Stats(ctx); ok {
		text := fmt.Sprintf("📊 آمار سایت:\n\nبازدید امروز: %d\nبازدید کل: %d", stats.Today, stats.Total)
		b.editMessage(chatID, messageID, text)
		return
	}

	// No site stats available: show the user's own quota usage instead.
	_, remaining, err := b.quota.CheckLimit(ctx, query.From.ID)
	if err != nil {
		b.logger.Error("Failed to check usage for stats",
			zap.Error(err),
			zap.Int64("user_id", query.From.ID))
		b.editMessage(chatID, messageID, "⚠️ "+internalErrorText)
		return
	}

	used := b.settings.DailyLimit - remaining
	text := fmt.Sprintf("📊 آمار استفاده شما\n\n"+
		"تاریخ: %s\n"+
		"✅ استفاده شده: %d/%d\n"+
		"⏰ باقی‌مانده: %d سوال\n\n"+
		"🔄 آمار فردا ریست می‌شود",
		time.Now().UTC().Format("2006/01/02"), used, b.settings.DailyLimit, remaining)
	b.editMessage(chatID, messageID, text)
}

func (b *Bot) handleSearchQuery(ctx context.Context, message *tgbotapi.Message, query string) {
	b.sendMessage(message.Chat.ID, searchingText)
	b.sendMessage(message.Chat.ID, b.site.Search(ctx, query))
}

// handleQuestion runs the question pipeline: membership, length and quota
// checks first, then the AI call. Only a successful answer consumes quota.
func (b *Bot) handleQuestion(ctx context.Context, message *tgbotapi.Message, text string) {
	user := message.From
	chatID := message.Chat.ID
	logger := b.logger.With(
		zap.String("question_id", uuid.New().String()),
		zap.Int64("user_id", user.ID))

	if !b.gate.IsMember(user.ID) {
		msg := tgbotapi.NewMessage(chatID, joinPromptText)
		msg.ReplyMarkup = joinKeyboard(b.settings.ChannelID)
		if _, err := b.client.Send(msg); err != nil {
			logger.Error("Failed to send join prompt", zap.Error(err))
		}
		return
	}

	if utf8.RuneCountInString(text) > b.settings.MaxQuestionLength {
		b.sendMessage(chatID, tooLongText(b.settings.MaxQuestionLength))
		return
	}

	// Updates run on their own goroutines, so two in-flight messages from
	// the same user must not interleave between the quota check and the
	// increment; the per-user lock keeps the read-modify-write exclusive.
	unlock := b.lockUser(user.ID)
	defer unlock()

	canAsk, remaining, err := b.quota.CheckLimit(ctx, user.ID)
	if err != nil {
		logger.Error("Failed to check usage limit", zap.Error(err))
		b.sendErrorMessage(chatID, internalErrorText)
		return
	}
	if !canAsk {
		b.sendMessage(chatID, limitReachedText)
		return
	}

	// Best-effort typing indicator
	if _, err := b.client.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logger.Debug("Failed to send typing action", zap.Error(err))
	}

	b.sendMessage(chatID, processingText)

	result := b.answers.Ask(ctx, text, displayName(user))
	if !result.Failed() {
		if err := b.quota.IncrementUsage(ctx, user.ID); err != nil {
			logger.Error("Failed to increment usage", zap.Error(err))
		}
		remaining--
	}

	b.deliverAnswer(chatID, result.Message(), remaining, logger)
}

func (b *Bot) deliverAnswer(chatID int64, answer string, remaining int, logger *zap.Logger) {
	footer := quotaFooter(remaining, b.settings.DailyLimit, b.settings.ChannelID)
	full := answer + footer

	var err error
	if utf8.RuneCountInString(full) <= maxMessageLength {
		err = b.send(chatID, full)
	} else {
		err = b.send(chatID, answer)
		if err == nil {
			err = b.send(chatID, footer)
		}
	}

	if err != nil {
		logger.Error("Failed to send answer message", zap.Error(err))
		if err := b.send(chatID, truncateRunes(answer, fallbackMaxLength)); err != nil {
			logger.Error("Failed to send truncated answer", zap.Error(err))
		}
	}
}

func (b *Bot) send(chatID int64, text string) error {
	_, err := b.client.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendMessage(chatID, "⚠️ "+text)
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	if _, err := b.client.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// lockUser acquires the caller's per-user mutex and returns its release
// function. Locks are created lazily and live for the process lifetime,
// like the usage records they guard.
func (b *Bot) lockUser(userID int64) func() {
	b.mu.Lock()
	mu, ok := b.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		b.userLocks[userID] = mu
	}
	b.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (b *Bot) setAwaitingSearch(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.awaitingSearch[chatID] = true
}

// takeAwaitingSearch reports and clears the pending-search flag in one step.
func (b *Bot) takeAwaitingSearch(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.awaitingSearch[chatID] {
		delete(b.awaitingSearch, chatID)
		return true
	}
	return false
}

func displayName(user *tgbotapi.User) string {
	if user != nil && user.FirstName != "" {
		return user.FirstName
	}
	return "کاربر"
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
