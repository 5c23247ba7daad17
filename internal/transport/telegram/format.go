package telegram

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"pdd-quiz-service/internal/app"
	"pdd-quiz-service/internal/domain"
)

var (
	tagRe          = regexp.MustCompile(`<[^>]+>`)
	dupNumberRe    = regexp.MustCompile(`(\d+)\.\s*(\d+)\.?`)
	ruleRefRe      = regexp.MustCompile(`(Пункт)(\d+\.\d+)`)
	answerKeyRe    = regexp.MustCompile(`(?m)(Правильный ответ|Вопрос №).*$`)
	numberWordRe   = regexp.MustCompile(`(\d+\.\d+)(\p{Cyrillic})`)
	wordNumberRe   = regexp.MustCompile(`(\p{Cyrillic})(\d+\.\d+)`)
	signDashRe     = regexp.MustCompile(`(\p{Cyrillic})-(\d+\.\d+)`)
	openQuoteRe    = regexp.MustCompile(`(\p{Cyrillic})(«)`)
	closeQuoteRe   = regexp.MustCompile(`(»)(\p{Cyrillic})`)
	sentenceEndRe  = regexp.MustCompile(`([.!?])\s+`)
	ruleHeadlineRe = regexp.MustCompile(`(Пункт \d+\.\d+ ПДД)`)
)

// cleanText strips markup and collapses whitespace in question and answer prose.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, "")
	// "1. 1. Text" -> "1. Text"
	text = dupNumberRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := dupNumberRe.FindStringSubmatch(m)
		if parts[1] == parts[2] {
			return parts[1] + "."
		}
		return m
	})
	text = strings.Join(strings.Fields(text), " ")
	return ruleRefRe.ReplaceAllString(text, "$1 $2")
}

// cleanExplanation keeps the explanation prose and traffic-rule references, one sentence
// per paragraph.
func cleanExplanation(text string) string {
	if text == "" {
		return ""
	}
	text = answerKeyRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = numberWordRe.ReplaceAllString(text, "$1 $2")
	text = wordNumberRe.ReplaceAllString(text, "$1 $2")
	text = signDashRe.ReplaceAllString(text, "$1 - $2")
	text = openQuoteRe.ReplaceAllString(text, "$1 $2")
	text = closeQuoteRe.ReplaceAllString(text, "$1 $2")

	var sentences []string
	for _, s := range strings.Split(sentenceEndRe.ReplaceAllString(text, "$1\n"), "\n") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	text = strings.Join(sentences, "\n\n")
	return ruleHeadlineRe.ReplaceAllString(text, "\n🔹 $1\n")
}

// answerLabel drops the leading "N." the source data puts in front of answers.
func answerLabel(i int, text string) string {
	text = cleanText(text)
	text = strings.TrimSpace(strings.TrimPrefix(text, strconv.Itoa(i)+"."))
	return fmt.Sprintf("%d. %s", i, html.EscapeString(text))
}

const divider = "────────────────────"

func questionText(d domain.Display) string {
	difficulty := d.Question.ErrorRate
	if difficulty == "" {
		difficulty = "неизвестно"
	}

	var answers []string
	for i, a := range d.Question.Answers {
		answers = append(answers, answerLabel(i+1, a.Text))
	}

	return fmt.Sprintf("📌 Вопрос %d/%d\n%s\n%s\n\n🔹 Сложность: %s\n\n<b>Варианты ответов:</b>\n%s",
		d.Position, d.Target, divider,
		html.EscapeString(cleanText(d.Question.Text)),
		html.EscapeString(difficulty),
		strings.Join(answers, "\n"))
}

func feedbackText(res domain.AnswerResult) string {
	if res.Correct {
		return "✅ <b>Правильно!</b>"
	}
	text := "❌ <b>Ошибка!</b>"
	if explanation := cleanExplanation(res.Explanation); explanation != "" {
		text += "\n\n📘 <b>Объяснение:</b>\n" + html.EscapeString(explanation)
	}
	return text
}

func summaryText(s domain.Summary) string {
	text := fmt.Sprintf("📊 <b>Результаты %s:</b>\n%s\n✅ <b>Правильных:</b> %d/%d\n📈 <b>Процент:</b> %.1f%%\n\n",
		html.EscapeString(s.Mode.Name), divider, s.Scored, s.Target, s.Percentage)
	if s.Passed {
		return text + "🔹 <b>Отличный результат!</b>"
	}
	return text + "🔻 <b>Нужно повторить материал!</b>"
}

func cancelledText(s domain.Summary) string {
	return fmt.Sprintf("Тест прерван. Ваш результат: %d/%d правильных ответов", s.Scored, s.Attempted)
}

func statsText(s domain.Stats) string {
	text := fmt.Sprintf("📊 <b>Ваша статистика:</b>\n%s\n🔹 Текущий режим: %s\n🔹 Правильных ответов: %d\n🔹 Всего вопросов: %d\n",
		divider, html.EscapeString(s.Mode.Name), s.Score, s.Attempted)
	if s.Attempted > 0 {
		text += fmt.Sprintf("🔹 Процент правильных: %.1f%%\n", s.Percentage)
	}
	return text
}

func helpText(modes []domain.Mode) string {
	var b strings.Builder
	b.WriteString("🚗 <b>Добро пожаловать в бота для подготовки к ПДД!</b>\n\n")
	b.WriteString("📝 <b>Доступные команды:</b>\n")
	for _, m := range modes {
		fmt.Fprintf(&b, "/%s - %s (%d вопросов)\n", m.Key, html.EscapeString(m.Name), m.Questions)
	}
	b.WriteString("/ticket - Выбрать конкретный билет\n/stats - Ваша статистика\n/help - Помощь\n\n")
	b.WriteString("📌 <b>Режимы тестирования:</b>\n")
	for _, m := range modes {
		fmt.Fprintf(&b, "- <i>%s</i>: %s\n", html.EscapeString(m.Name), html.EscapeString(m.Description))
	}
	fmt.Fprintf(&b, "\nДля сдачи нужно не менее %.0f%% правильных ответов.", app.PassThreshold)
	return b.String()
}
