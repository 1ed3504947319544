// Package twiml renders the XML call instruction documents the telephony
// provider executes: play audio, speak text, record an answer, hang up.
package twiml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// ContentType is the media type of an encoded document.
const ContentType = "application/xml"

type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type Record struct {
	XMLName     xml.Name `xml:"Record"`
	Action      string   `xml:"action,attr"`
	Method      string   `xml:"method,attr,omitempty"`
	MaxLength   int      `xml:"maxLength,attr"`
	Timeout     int      `xml:"timeout,attr"`
	FinishOnKey string   `xml:"finishOnKey,attr,omitempty"`
	PlayBeep    bool     `xml:"playBeep,attr"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func (r *Response) Add(verbs ...any) *Response {
	r.Verbs = append(r.Verbs, verbs...)
	return r
}

// Encode serializes the document with the XML declaration the provider expects.
func (r *Response) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode call markup: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush call markup: %w", err)
	}
	buf.WriteString("\n")

	return buf.Bytes(), nil
}
