package moderation

import "strings"

// Filter flags profile fields that contain blocklisted words. This is a
// plain lowercase substring scan over first name, last name and username,
// used before any verification flow starts.
type Filter struct {
	words []string
}

// NewDefault returns a filter with the stock blocklist: profanity and
// slurs in Russian and English that have shown up in spam-account names.
func NewDefault() *Filter {
	return New(defaultWords)
}

func New(words []string) *Filter {
	out := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return &Filter{words: out}
}

// Check returns the blocklisted words found in text, or nil.
func (f *Filter) Check(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	var found []string
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			found = append(found, w)
		}
	}
	return found
}

// CheckProfile scans the visible profile fields and labels every hit with
// the field it came from ("имя: …"). An empty result means the profile is
// clean.
func (f *Filter) CheckProfile(firstName, lastName, username string) []string {
	fields := []struct {
		label, value string
	}{
		{"имя", firstName},
		{"фамилия", lastName},
		{"никнейм", username},
	}
	var found []string
	for _, fl := range fields {
		for _, w := range f.Check(fl.value) {
			found = append(found, fl.label+": "+w)
		}
	}
	return found
}

var defaultWords = []string{
	"penis", "dick", "cock", "pussy", "vagina", "fuck", "shit", "bitch", "whore", "slut",
	"хуй", "пизда", "блять", "ебать", "сука", "блядь", "хуя", "пиздец", "еблан", "ебало",
	"faggot", "nigger", "nigga", "kike", "spic", "chink", "gook", "wop", "kraut",
	"пидор", "пидорас", "гомик", "лесбиянка", "педик", "гей", "лесби", "транс",
	"asshole", "cunt", "twat", "bastard", "motherfucker", "fucker", "dumbass",
	"мудак", "мудила", "говнюк", "говно", "дерьмо", "идиот",
	"retard", "idiot", "moron", "stupid", "dumb", "retarded",
	"дебил", "тупой", "дурак", "придурок", "кретин", "дегенерат",
}
