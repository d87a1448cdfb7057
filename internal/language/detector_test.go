package language

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "привет, как дела", want: "ru", ok: true},
		{text: "ПРИВЕТ", want: "ru", ok: true},
		{text: "the cat and the dog ran", want: "en", ok: true},
		{text: "The Weather", want: "en", ok: true},
		{text: "mañana", want: "es", ok: true},
		{text: "ça va", want: "fr", ok: true},
		{text: "straße", want: "de", ok: true},
		{text: "1234", ok: false},
		{text: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := Detect(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Detect(%q): expected (%q, %v), got (%q, %v)", tc.text, tc.want, tc.ok, got, ok)
		}
	}
}

func TestDetectFirstRuleWins(t *testing.T) {
	// "the" is an English stop word, so the accented Spanish characters are never consulted.
	got, ok := Detect("¿qué es the?")
	if !ok || got != "en" {
		t.Fatalf("expected en, got %q (%v)", got, ok)
	}
	// "é" is both Spanish and French; Spanish is checked first.
	got, _ = Detect("café")
	if got != "es" {
		t.Fatalf("expected es for overlapping accent, got %q", got)
	}
}

func TestDetectGreeting(t *testing.T) {
	if got, ok := Detect("Hello"); !ok || got != "en" {
		t.Fatalf("expected en, got %q (%v)", got, ok)
	}
}
