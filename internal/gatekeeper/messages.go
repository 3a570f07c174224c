package gatekeeper

import (
	"fmt"
	"strconv"
	"strings"

	"alumni-check/internal/claim"
)

// callbackHelpPrefix marks the "contact admin" escalation button.
const callbackHelpPrefix = "admin_help_"

const msgInstruction = "К сожалению, я тебя не понял, давай попробуем еще раз. " +
	"Напиши мне ФИ год класс, или /start.\n\n"

const msgIncompleteData = "Неполные данные!\n\n" +
	"Ты можешь отправить данные в любом из форматов:\n\n" +
	"1️⃣ Одной строкой: Федоров Сергей 2010 2\n\n" +
	"2️⃣ С двоеточиями:\n" +
	"ФИО: Ваше Имя Фамилия\n" +
	"Год: 2015\n" +
	"Класс: 3\n\n" +
	"3️⃣ Или отправь /start для пошагового ввода"

const msgDeclinedIncompleteBio = "Заявка отклонена, так как указаны неполные данные. " +
	"Пожалуйста, напиши боту в личные сообщения для подтверждения."

const msgDeclinedNoBio = "Заявка отклонена: в профиле нет информации о себе. " +
	"Пожалуйста, напиши боту в личные сообщения для подтверждения, или отправь /start."

const msgAdminGreeting = "Привет, я проверяю заявки в чате выпускников 30ки. " +
	"Сюда будут приходить одобренные и отклонённые заявки."

const msgEscalationAck = "Администратор чата в скором времени с Вами свяжется."

func successMessage(adminUsername string) string {
	return "✅ Рады знакомству! Скоро твою заявку одобрят.\n\n" +
		"Рекомендуем опубликовать в чате инфо о себе (год выпуска, чем занимаешься и т.п.) с тегом #ктоя\n\n" +
		fmt.Sprintf("Админ чата Сергей Федоров, 1983-2, @%s. ", adminUsername) +
		"Если будут вопросы по Клубу, Фонду30, сайту <a href=\"https://30ka.ru\">30ka.ru</a>, чату, школе - не стесняйся их задавать!"
}

func storeErrorMessage(adminUsername string) string {
	return fmt.Sprintf("Произошла ошибка при проверке. Пожалуйста, попробуй позже или напиши администратору @%s.", adminUsername)
}

func forbiddenProfileMessage(found []string) string {
	return "❌ Заявка отклонена!\n\n" +
		"В вашем имени, фамилии или никнейме обнаружены некорректные слова:\n" +
		strings.Join(found, ", ") + "\n\n" +
		"Пожалуйста, измените свои данные в настройках Telegram и попробуйте снова."
}

func notFoundMessage(c claim.Claim) string {
	return "К сожалению, мы не нашли тебя в базе данных.\n\n" +
		"Проверь правильность введенных данных:\n" +
		fmt.Sprintf("ФИО: %s\nГод: %d\nКласс: %d\n", c.FullName, c.Year, c.Klass) +
		"Для исправления данных снова нажми /start\n\n" +
		"Если данные верные нажми кнопку — мы обязательно разберёмся!"
}

// Telegram rejects callback_data over 64 bytes.
const maxCallbackData = 64

func helpCallbackData(userID int64, c claim.Claim, teacher string) string {
	data := fmt.Sprintf("%s%d_%s_%d_%d", callbackHelpPrefix, userID, c.FullName, c.Year, c.Klass)
	if teacher != "" && len(data)+1+len(teacher) <= maxCallbackData {
		data += "_" + teacher
	}
	if len(data) <= maxCallbackData {
		return data
	}
	// Long Cyrillic names overflow the limit; drop name runes until the
	// payload fits. The admin notice still carries the user id.
	name := []rune(c.FullName)
	for len(name) > 0 {
		name = name[:len(name)-1]
		data = fmt.Sprintf("%s%d_%s_%d_%d",
			callbackHelpPrefix, userID, strings.TrimSpace(string(name)), c.Year, c.Klass)
		if len(data) <= maxCallbackData {
			break
		}
	}
	return data
}

// parseHelpCallback unpacks the escalation payload. The name may contain
// spaces but no underscores; everything after the class number is the
// teacher, if present.
func parseHelpCallback(data string) (userID int64, c claim.Claim, teacher string, ok bool) {
	rest, found := strings.CutPrefix(data, callbackHelpPrefix)
	if !found {
		return 0, claim.Claim{}, "", false
	}
	parts := strings.SplitN(rest, "_", 5)
	if len(parts) < 4 {
		return 0, claim.Claim{}, "", false
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, claim.Claim{}, "", false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, claim.Claim{}, "", false
	}
	klass, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, claim.Claim{}, "", false
	}
	if len(parts) == 5 {
		teacher = parts[4]
	}
	return userID, claim.Claim{FullName: parts[1], Year: year, Klass: klass}, teacher, true
}

func displayName(p Profile) string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		name = strconv.FormatInt(p.UserID, 10)
	}
	return name
}

func displayUsername(p Profile) string {
	if p.Username == "" {
		return "(нет username)"
	}
	return "@" + p.Username
}

func newRequestNotice(req JoinRequest, forbidden []string) string {
	bio := req.Bio
	if bio == "" {
		bio = "(нет bio)"
	}
	warn := ""
	if len(forbidden) > 0 {
		warn = "\n⚠️ ВНИМАНИЕ: Обнаружены запрещенные слова в профиле пользователя: " + strings.Join(forbidden, ", ")
	}
	return fmt.Sprintf("🆕 НОВАЯ ЗАЯВКА НА ВСТУПЛЕНИЕ В ЧАТ\n\n"+
		"👤 Пользователь: %s\n"+
		"📧 Никнейм: %s\n"+
		"🆔 ID: %d\n"+
		"📝 Bio: %s%s\n\n"+
		"🔗 Для ответа перейдите в чат: tg://user?id=%d",
		displayName(req.Profile), displayUsername(req.Profile), req.UserID, bio, warn, req.UserID)
}

func positiveNotice(p Profile, c claim.Claim, teacher string) string {
	teacherInfo := ""
	if teacher != "" {
		teacherInfo = "\nКл.рук.: " + teacher
	}
	return fmt.Sprintf("✅ ПОЛЬЗОВАТЕЛЬ ПРОШЕЛ ПРОВЕРКУ\n\n"+
		"👤 Пользователь: %s\n"+
		"📧 Никнейм: %s\n"+
		"🆔 ID: %d\n"+
		"📝 Данные из базы:\nФИО: %s\nГод: %d\nКласс: %d%s\n\n"+
		"🔗 Для ответа перейдите в чат: tg://user?id=%d",
		displayName(p), displayUsername(p), p.UserID, c.FullName, c.Year, c.Klass, teacherInfo, p.UserID)
}

func negativeNotice(p Profile, c claim.Claim, teacher string) string {
	teacherInfo := ""
	if teacher != "" {
		teacherInfo = "\nКл.рук.: " + teacher
	}
	return fmt.Sprintf("❌ ПОЛЬЗОВАТЕЛЬ НЕ НАЙДЕН В БАЗЕ\n\n"+
		"👤 Пользователь ID: %d\n"+
		"📝 Введенные данные:\nФИО: %s\nГод: %d\nКласс: %d%s\n\n"+
		"🔗 Для ответа перейдите в чат: tg://user?id=%d",
		p.UserID, c.FullName, c.Year, c.Klass, teacherInfo, p.UserID)
}

func escalationNotice(p Profile, c claim.Claim, teacher string) string {
	teacherInfo := ""
	if teacher != "" {
		teacherInfo = "\nКл.рук.: " + teacher
	}
	return fmt.Sprintf("🆘 ЗАПРОС НА ПОМОЩЬ ОТ ПОЛЬЗОВАТЕЛЯ\n\n"+
		"👤 Пользователь: %s\n"+
		"📧 Username: %s\n"+
		"🆔 ID: %d\n\n"+
		"📝 Введенные данные:\nФИО: %s\nГод: %d\nКласс: %d%s\n\n"+
		"💬 Сообщение: Пользователь утверждает, что является выпускником, но не найден в базе данных.\n\n"+
		"🔗 Для ответа перейдите в чат: tg://user?id=%d",
		displayName(p), displayUsername(p), p.UserID, c.FullName, c.Year, c.Klass, teacherInfo, p.UserID)
}
