package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"pdd-quiz-service/internal/app"
	"pdd-quiz-service/internal/domain"
)

// ImageSource resolves question image references to bytes.
type ImageSource interface {
	LoadImage(ctx context.Context, name string) ([]byte, error)
}

// Bot renders the quiz engine as a Telegram chat with inline keyboards.
type Bot struct {
	api         *tgbotapi.BotAPI
	service     *app.QuizService
	images      ImageSource
	pollTimeout int
}

// NewBot wires a Bot. images may be nil, in which case questions are sent as text only.
func NewBot(api *tgbotapi.BotAPI, service *app.QuizService, images ImageSource, pollTimeout int) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Bot{api: api, service: service, images: images, pollTimeout: pollTimeout}
}

// Run long-polls for updates until ctx is done. Updates are handled one at a time.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("authorised on account: %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func userKey(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := userKey(msg.From)

	switch cmd := msg.Command(); cmd {
	case "start", "help":
		b.sendMainMenu(chatID)
	case "ticket":
		b.sendTicketMenu(chatID, 0)
	case "stats":
		b.send(tgbotapi.NewMessage(chatID, statsText(b.service.Stats(ctx, userID))), true)
	case domain.ModeExam, domain.ModeExpress, domain.ModeMarathon:
		b.runCommand(ctx, chatID, userID, domain.CommandMode, cmd)
	default:
		b.sendText(chatID, "Неизвестная команда")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	userID := userKey(cb.From)
	data := cb.Data

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("error answering callback: %v", err)
	}

	switch {
	case data == "main_menu":
		b.sendMainMenu(chatID)
	case data == "select_mode":
		b.sendModeMenu(chatID, messageID)
	case data == "select_ticket":
		b.sendTicketMenu(chatID, messageID)
	case data == "skip_question":
		b.handleSkip(ctx, chatID, userID)
	case data == "cancel_exam":
		b.handleCancel(ctx, chatID, userID)
	case strings.HasPrefix(data, "mode_"):
		mode := strings.TrimPrefix(data, "mode_")
		b.runCommand(ctx, chatID, userID, domain.CommandMode, mode)
	case strings.HasPrefix(data, "ticket_"):
		b.runCommand(ctx, chatID, userID, domain.CommandTicket, strings.TrimPrefix(data, "ticket_"))
	case strings.HasPrefix(data, "answer_"):
		b.handleAnswer(ctx, chatID, userID, data)
	default:
		b.sendText(chatID, "Неизвестная команда")
	}
}

func (b *Bot) runCommand(ctx context.Context, chatID int64, userID string, kind domain.CommandKind, arg string) {
	res, err := b.service.HandleCommand(ctx, userID, kind, []string{arg})
	switch {
	case errors.Is(err, domain.ErrUnknownTicket):
		b.sendText(chatID, "Такого билета нет, выберите другой.")
		b.sendTicketMenu(chatID, 0)
		return
	case err != nil:
		log.Printf("command %s %s for %s failed: %v", kind, arg, userID, err)
		b.sendText(chatID, "Произошла ошибка. Пожалуйста, попробуйте еще раз или /start")
		return
	}

	switch kind {
	case domain.CommandMode:
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Выбран режим: <b>%s</b>\n%s", res.Mode.Name, res.Mode.Description)), true)
	case domain.CommandTicket:
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Выбран билет №%d. Начинаем тестирование!", res.Ticket)), true)
	}
	b.renderStep(ctx, chatID, *res.Step)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, userID, data string) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 {
		return
	}
	index, err1 := strconv.Atoi(parts[1])
	ordinal, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return
	}

	res, err := b.service.SubmitAnswer(ctx, userID, domain.AnswerSubmission{Ordinal: ordinal, Index: index})
	switch {
	case errors.Is(err, domain.ErrStaleAnswer):
		// Double tap or a button from an old message.
		return
	case err != nil:
		b.sendText(chatID, "Этот вопрос уже недоступен. Начните тест заново: /start")
		return
	}

	b.send(tgbotapi.NewMessage(chatID, feedbackText(res)), true)
	b.next(ctx, chatID, userID)
}

func (b *Bot) handleSkip(ctx context.Context, chatID int64, userID string) {
	if err := b.service.Skip(ctx, userID); err != nil {
		b.sendText(chatID, "Нет активного вопроса. Начните тест: /start")
		return
	}
	b.send(tgbotapi.NewMessage(chatID, "⏭ <b>Вопрос пропущен</b>"), true)
	b.next(ctx, chatID, userID)
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64, userID string) {
	summary, err := b.service.Cancel(ctx, userID)
	if err != nil {
		b.sendMainMenu(chatID)
		return
	}
	b.sendText(chatID, cancelledText(summary))
	b.sendMainMenu(chatID)
}

func (b *Bot) next(ctx context.Context, chatID int64, userID string) {
	step, err := b.service.Next(ctx, userID)
	if err != nil {
		log.Printf("next question for %s failed: %v", userID, err)
		return
	}
	b.renderStep(ctx, chatID, step)
}

func (b *Bot) renderStep(ctx context.Context, chatID int64, step domain.Step) {
	switch {
	case step.Display != nil:
		b.sendQuestion(ctx, chatID, *step.Display)
	case step.Summary != nil:
		b.sendSummary(chatID, *step.Summary)
	}
}

// captionLimit is Telegram's maximum photo caption length.
const captionLimit = 1024

func (b *Bot) sendQuestion(ctx context.Context, chatID int64, d domain.Display) {
	text := questionText(d)
	keyboard := questionKeyboard(d)

	if d.Question.Image != "" && b.images != nil {
		data, err := b.images.LoadImage(ctx, d.Question.Image)
		if err != nil {
			log.Printf("image %s unavailable: %v", d.Question.Image, err)
		} else {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: d.Question.Image, Bytes: data})
			if utf8.RuneCountInString(text) <= captionLimit {
				photo.Caption = text
				photo.ParseMode = tgbotapi.ModeHTML
				photo.ReplyMarkup = keyboard
				if b.send(photo, false) {
					return
				}
			} else if !b.send(photo, false) {
				log.Printf("image %s not delivered, sending text only", d.Question.Image)
			}
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	b.send(msg, true)
}

func questionKeyboard(d domain.Display) tgbotapi.InlineKeyboardMarkup {
	answers := make([]tgbotapi.InlineKeyboardButton, 0, d.ChoiceCount)
	for i := 0; i < d.ChoiceCount; i++ {
		answers = append(answers, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i+1), fmt.Sprintf("answer_%d_%d", i, d.Position)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		answers,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Пропустить", "skip_question"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить тест", "cancel_exam"),
		),
	)
}

func (b *Bot) sendSummary(chatID int64, s domain.Summary) {
	msg := tgbotapi.NewMessage(chatID, summaryText(s))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Повторить", "mode_"+s.Mode.Key),
			tgbotapi.NewInlineKeyboardButtonData("📚 Главное меню", "main_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ Выбрать другой режим", "select_mode"),
			tgbotapi.NewInlineKeyboardButtonData("🔎 Выбрать билет", "select_ticket"),
		),
	)
	b.send(msg, true)
}

func (b *Bot) sendMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, helpText(b.service.Modes()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📚 Начать экзамен", "mode_"+domain.ModeExam)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚡ Экспресс-тест", "mode_"+domain.ModeExpress)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏁 Марафон", "mode_"+domain.ModeMarathon)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔎 Выбрать билет", "select_ticket")),
	)
	b.send(msg, true)
}

func (b *Bot) sendModeMenu(chatID int64, messageID int) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range b.service.Modes() {
		label := fmt.Sprintf("%s (%d вопросов)", m.Name, m.Questions)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, "mode_"+m.Key)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "main_menu")))
	b.sendMenu(chatID, messageID, "Выберите режим тестирования:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// ticketsPerRow keeps the picker readable on phones.
const ticketsPerRow = 5

func (b *Bot) sendTicketMenu(chatID int64, messageID int) {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)
	for _, n := range b.service.Tickets() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Билет %d", n), fmt.Sprintf("ticket_%d", n)))
		if len(row) == ticketsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "main_menu")))
	b.sendMenu(chatID, messageID, "📚 Выберите билет для решения:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// sendMenu edits the message the button was pressed on, or sends a new one when there is none.
func (b *Bot) sendMenu(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup), false)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg, false)
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text), false)
}

// send delivers c, switching text messages to HTML parse mode when html is set.
func (b *Bot) send(c tgbotapi.Chattable, html bool) bool {
	if msg, ok := c.(tgbotapi.MessageConfig); ok && html {
		msg.ParseMode = tgbotapi.ModeHTML
		c = msg
	}
	if _, err := b.api.Send(c); err != nil {
		log.Printf("error sending message: %v", err)
		return false
	}
	return true
}
