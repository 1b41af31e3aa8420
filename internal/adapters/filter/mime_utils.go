package filter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

var headerDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader converts text in any charset known to the WHATWG index into UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded words, returning the input
// unchanged when it cannot be decoded
func decodeEncodedHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// encodeHeader encodes a header value as UTF-8 Q encoding when it is not ASCII
func encodeHeader(value string) string {
	return mime.QEncoding.Encode("utf-8", value)
}

// bodyText collects the text/plain and text/html content of a message
type bodyText struct {
	plain bytes.Buffer
	html  bytes.Buffer
}

// String returns the plain text, or the HTML text when no plain part exists
func (b *bodyText) String() string {
	if b.plain.Len() > 0 {
		return b.plain.String()
	}
	return b.html.String()
}

// extractTextFromMessage extracts the readable text of an email message.
// text/plain parts are preferred; HTML parts are used with their markup
// stripped when the message has no plain text.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	var text bodyText
	if err := extractPart(textproto.MIMEHeader(msg.Header), msg.Body, &text); err != nil {
		if s := text.String(); s != "" {
			return s, nil
		}
		return "", err
	}
	return text.String(), nil
}

// extractPart appends the text content of one MIME entity, descending
// into nested multipart entities
func extractPart(header textproto.MIMEHeader, body io.Reader, out *bodyText) error {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content type, treat the body as plain text
		mediaType, params = "text/plain", nil
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			return readText(header, params, body, &out.plain)
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if err := extractPart(part.Header, part, out); err != nil {
				return err
			}
		}
	case mediaType == "text/plain":
		return readText(header, params, body, &out.plain)
	case mediaType == "text/html":
		var markup bytes.Buffer
		if err := readText(header, params, body, &markup); err != nil {
			return err
		}
		appendText(&out.html, stripHTML(markup.String()))
		return nil
	default:
		// Attachments are not scored
		return nil
	}
}

// stripHTML returns the visible text of an HTML document with entities
// decoded. Script and style contents are dropped.
func stripHTML(markup string) string {
	var text strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(text.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
			text.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			text.WriteByte(' ')
		case html.SelfClosingTagToken:
			text.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				text.Write(z.Text())
			}
		}
	}
}

func appendText(out *bytes.Buffer, text string) {
	if text == "" {
		return
	}
	if out.Len() > 0 {
		out.WriteString("\n")
	}
	out.WriteString(text)
}

func readText(header textproto.MIMEHeader, params map[string]string, body io.Reader, out *bytes.Buffer) error {
	switch strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding"))) {
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	}

	if charset := params["charset"]; charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		if r, err := charsetReader(charset, body); err == nil {
			body = r
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	appendText(out, string(data))
	return nil
}
