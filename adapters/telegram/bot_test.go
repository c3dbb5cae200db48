package telegram

import "testing"

func TestParseClearCallback(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		wantID int64
		wantOK bool
	}{
		{"valid payload", "clear_dialogue_42", 42, true},
		{"negative id", "clear_dialogue_-7", -7, true},
		{"large id", "clear_dialogue_5000000000", 5000000000, true},
		{"wrong prefix", "stop_dialogue_42", 0, false},
		{"missing id", "clear_dialogue_", 0, false},
		{"non-numeric id", "clear_dialogue_abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := parseClearCallback(tt.data)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("parseClearCallback(%q) = (%d, %v), want (%d, %v)",
					tt.data, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestClearKeyboardPayloadRoundTrips(t *testing.T) {
	markup := clearKeyboard(42)

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("expected a single-button keyboard, got %+v", markup.InlineKeyboard)
	}
	button := markup.InlineKeyboard[0][0]
	if button.CallbackData == nil {
		t.Fatal("clear button has no callback data")
	}

	id, ok := parseClearCallback(*button.CallbackData)
	if !ok || id != 42 {
		t.Errorf("callback data %q does not round-trip to user 42", *button.CallbackData)
	}
}

func TestTokenKeyboardLinksToSettings(t *testing.T) {
	markup := tokenKeyboard()

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("expected a single-button keyboard, got %+v", markup.InlineKeyboard)
	}
	button := markup.InlineKeyboard[0][0]
	if button.URL == nil || *button.URL != tokenSettingsURL {
		t.Errorf("token button URL = %v, want %q", button.URL, tokenSettingsURL)
	}
}
