package domain

import "testing"

func TestMatchesKeywords(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{"case insensitive substring", "I want FREE stuff", []string{"free"}, true},
		{"no keyword present", "nice video", []string{"free", "info"}, false},
		{"empty keyword list matches everything", "anything", nil, true},
		{"any single keyword suffices", "send me the info please", []string{"free", "info"}, true},
		{"substring inside word", "freedom", []string{"free"}, true},
		{"empty text", "", []string{"free"}, false},
		{"blank keyword ignored", "nice video", []string{""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesKeywords(tc.text, tc.keywords); got != tc.want {
				t.Fatalf("MatchesKeywords(%q, %v) = %v, want %v", tc.text, tc.keywords, got, tc.want)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	if got := RenderTemplate("Hi {username}!", "alice"); got != "Hi alice!" {
		t.Fatalf("RenderTemplate() = %q, want %q", got, "Hi alice!")
	}
	// No other substitution token is altered.
	if got := RenderTemplate("Hey {username}, use code {code}", "bob"); got != "Hey bob, use code {code}" {
		t.Fatalf("RenderTemplate() = %q", got)
	}
	if got := RenderTemplate("no placeholder", "alice"); got != "no placeholder" {
		t.Fatalf("RenderTemplate() = %q", got)
	}
}

func TestExtractPostID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://shortvid.example/reel/ABC123xyz", "ABC123xyz"},
		{"https://shortvid.example/reels/ABC123xyz/", "ABC123xyz"},
		{"https://shortvid.example/p/Xy-9_q", "Xy-9_q"},
		{"https://shortvid.example/video/12345", "12345"},
		{"https://shortvid.example/creator/clips/777", "777"},
	}
	for _, tc := range cases {
		got, err := ExtractPostID(tc.url)
		if err != nil {
			t.Fatalf("ExtractPostID(%q) error = %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("ExtractPostID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}

	if _, err := ExtractPostID("https://shortvid.example"); err == nil {
		t.Fatal("expected error for URL without a path")
	}
}
