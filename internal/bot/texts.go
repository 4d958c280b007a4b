package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "📖 راهنمای استفاده:\n" +
	"• یک سوال مرتبط با هوش مصنوعی بنویسید و ارسال کنید.\n" +
	"• یا از دکمه '🔍 جستجو با کد مدل' برای جستجوی داخل سایت استفاده کنید.\n" +
	"• برای استفاده از قابلیت پاسخ‌هوش‌مصنوعی، GEMINI_API_KEY باید تنظیم شده باشد.\n" +
	"❓ پشتیبانی: @SimorghAI"

const (
	searchPromptText   = "🔍 لطفاً کد مدل را ارسال کنید (مثال: M12345) — یا عبارت مورد نظر را تایپ کنید."
	searchingText      = "⌛ در حال جستجو..."
	processingText     = "⌛ در حال پردازش سوال شما، لطفاً منتظر بمانید..."
	joinPromptText     = "❌ برای استفاده از ربات، لطفاً ابتدا عضو کانال سیمرغ شوید."
	limitReachedText   = "❌ شما امروز تعداد مجاز سوالات را استفاده کرده‌اید. فردا دوباره تلاش کنید."
	internalErrorText  = "خطای داخلی رخ داد. لطفاً بعداً تلاش کنید."
	unknownCommandText = "دستور ناشناخته است. برای راهنما /help را بزنید."
)

func welcomeText(dailyLimit int) string {
	return fmt.Sprintf("🤖 سلام! به ربات هوش مصنوعی سیمرغ خوش آمدید.\n\n"+
		"قابلیت‌ها:\n"+
		"• پاسخ به سوالات AI (اگر پیکربندی شده باشد)\n"+
		"• جستجو در سایت با «کد مدل» (در صورت فعال بودن API)\n"+
		"• محدودیت روزانه: %d سوال\n\n"+
		"برای شروع /start را بزنید یا از دکمه‌ها استفاده کنید.", dailyLimit)
}

func tooLongText(maxLength int) string {
	return fmt.Sprintf("❌ سوال شما خیلی طولانی است؛ لطفاً کمتر از %d کاراکتر بنویسید.", maxLength)
}

func quotaFooter(remaining, dailyLimit int, channelID string) string {
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("\n\n━━━━━━━━━━━━━━\n💡 سوالات باقی‌مانده: %d/%d\n🔗 کانال: %s",
		remaining, dailyLimit, channelID)
}

func channelURL(channelID string) string {
	return "https://t.me/" + strings.TrimPrefix(channelID, "@")
}

func mainKeyboard(channelID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 عضویت در کانال سیمرغ", channelURL(channelID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ راهنما", "help"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 آمار بازدید", "stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 جستجو با کد مدل", "search_model"),
		),
	)
}

func joinKeyboard(channelID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 عضویت در کانال", channelURL(channelID)),
		),
	)
}
