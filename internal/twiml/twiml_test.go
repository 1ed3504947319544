package twiml

import (
	"strings"
	"testing"
)

func TestEncodePlayRecord(t *testing.T) {
	resp := (&Response{}).Add(
		Play{URL: "https://media.example.com/bartender/intro.mp3"},
		Record{
			Action:      "https://api.example.com/webhook/recording?assessment_id=a1&question=intro",
			Method:      "POST",
			MaxLength:   120,
			Timeout:     5,
			FinishOnKey: "#*",
		},
	)

	out, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	doc := string(out)
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("missing XML declaration: %s", doc)
	}
	for _, want := range []string{
		"<Play>https://media.example.com/bartender/intro.mp3</Play>",
		`maxLength="120"`,
		`timeout="5"`,
		`finishOnKey="#*"`,
		"</Response>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected %q in document:\n%s", want, doc)
		}
	}
}

func TestEncodeEscapesQueryParams(t *testing.T) {
	resp := (&Response{}).Add(Record{
		Action:    "https://api.example.com/webhook/recording?assessment_id=a1&question=q2",
		MaxLength: 120,
		Timeout:   5,
	})

	out, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), "assessment_id=a1&amp;question=q2") {
		t.Fatalf("expected escaped ampersand in action URL:\n%s", out)
	}
}

func TestEncodeSayHangup(t *testing.T) {
	resp := (&Response{}).Add(
		Say{Text: "Thank you for completing the assessment. Goodbye."},
		Hangup{},
	)

	out, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "<Say>Thank you for completing the assessment. Goodbye.</Say>") {
		t.Fatalf("missing Say verb:\n%s", doc)
	}
	if !strings.Contains(doc, "<Hangup") {
		t.Fatalf("missing Hangup verb:\n%s", doc)
	}
}
