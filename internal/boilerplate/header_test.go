package boilerplate

import (
	"strings"
	"testing"
)

func TestDetectLeadingHeader_ShareButtonRow(t *testing.T) {
	text := "Facebook Twitter WhatsApp SMS Email\n\nBy John Doe\nThe article content starts here."

	n := DetectLeadingHeader(text)
	if n == 0 {
		t.Fatal("DetectLeadingHeader() = 0, want stripped prefix")
	}
	if !strings.HasPrefix(text[n:], "By John Doe") {
		t.Errorf("remaining text starts with %q, want %q", text[n:n+20], "By John Doe")
	}
}

func TestDetectLeadingHeader_ProseMentioningPlatforms(t *testing.T) {
	text := "Facebook announced new policies today, according to Twitter officials.\nMore details are expected soon."

	if n := DetectLeadingHeader(text); n != 0 {
		t.Errorf("DetectLeadingHeader() = %d, want 0 for editorial prose", n)
	}
}

func TestDetectLeadingHeader_LeadingNavigationMenu(t *testing.T) {
	text := "News Sports Obituaries\nOpinion Contact Weather\n\nSPRINGFIELD — The school board met Tuesday."

	n := DetectLeadingHeader(text)
	if n == 0 {
		t.Fatal("DetectLeadingHeader() = 0, want stripped navigation prefix")
	}
	if !strings.HasPrefix(text[n:], "SPRINGFIELD") {
		t.Errorf("remaining text starts with %q", text[n:])
	}
}

func TestDetectLeadingHeader_StopsAtEditorialLine(t *testing.T) {
	text := "Share Print Email\nThe mayor announced a new infrastructure plan for the county.\nShare Print Email"

	n := DetectLeadingHeader(text)
	if !strings.HasPrefix(text[n:], "The mayor") {
		t.Errorf("header strip crossed into editorial content: remaining %q", text[n:])
	}
}

func TestDetectLeadingHeader_EmptyAndPlainText(t *testing.T) {
	if n := DetectLeadingHeader(""); n != 0 {
		t.Errorf("DetectLeadingHeader(empty) = %d, want 0", n)
	}
	if n := DetectLeadingHeader("Just a normal opening sentence about the local budget."); n != 0 {
		t.Errorf("DetectLeadingHeader(plain) = %d, want 0", n)
	}
}
