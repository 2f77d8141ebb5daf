package tokenize

import "testing"

func TestTokenIteratorEmitsTextAndSeparators(t *testing.T) {
	tokens := All([]byte("a/b"))
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %+v", len(tokens), tokens)
	}
	if text, err := tokens[0].ExpectText(""); err != nil || string(text) != "a" {
		t.Fatalf("expected text 'a', got %q err=%v", text, err)
	}
	if sep, err := tokens[1].ExpectSeparator(nil); err != nil || sep != ForwardSlash {
		t.Fatalf("expected ForwardSlash, got %v err=%v", sep, err)
	}
	if text, err := tokens[2].ExpectText(""); err != nil || string(text) != "b" {
		t.Fatalf("expected text 'b', got %q err=%v", text, err)
	}
}

func TestTokenIteratorHandlesConsecutiveSeparators(t *testing.T) {
	tokens := All([]byte("a=:b"))
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %+v", len(tokens), tokens)
	}
	if !tokens[1].IsSeparator() || !tokens[2].IsSeparator() {
		t.Fatalf("expected two consecutive separator tokens, got %+v", tokens)
	}
}

func TestExpectSeparatorMismatch(t *testing.T) {
	tokens := All([]byte("/"))
	expect := Colon
	_, err := tokens[0].ExpectSeparator(&expect)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestExpectTextOnSeparatorErrors(t *testing.T) {
	tokens := All([]byte(":"))
	if _, err := tokens[0].ExpectText("header name"); err == nil {
		t.Fatal("expected error requesting text from a separator token")
	}
}
