package claim

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Фёдоров Сергей", []string{"федоров", "сергей"}},
		{"ФЕДОРОВ СЕРГЕЙ", []string{"федоров", "сергей"}},
		{"  Иванов   Иван  ", []string{"иванов", "иван"}},
		// patronymic is dropped
		{"Иванов Иван Иванович", []string{"иванов", "иван"}},
		{"Petrov", []string{"petrov"}},
		{"", nil},
		{"   ", nil},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Normalize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"Фёдоров Сергей", "Иванов Иван Иванович", "ПЕТРОВ пётр"} {
		once := Normalize(in)
		twice := Normalize(strings.Join(once, " "))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q: %v vs %v", in, once, twice)
		}
	}
}

func TestTokensContain(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		// word order irrelevant
		{"Федоров Сергей", "Сергей Федоров", true},
		// ё and е are the same letter here
		{"Фёдоров Сергей", "Федоров Сергей", true},
		// single token contained in a pair
		{"Федоров", "Сергей Федоров", true},
		{"Сергей Федоров", "Федоров", true},
		{"Иванов Иван", "Петров Иван", false},
		{"Иванов Иван", "Сидоров Пётр", false},
	}
	for _, tc := range cases {
		got := TokensContain(Normalize(tc.a), Normalize(tc.b))
		if got != tc.want {
			t.Errorf("TokensContain(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
