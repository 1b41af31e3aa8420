package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodedHeader(t *testing.T) {
	assert.Equal(t, "café", decodeEncodedHeader("=?ISO-8859-1?Q?caf=E9?="))
	assert.Equal(t, "hello world", decodeEncodedHeader("=?UTF-8?B?aGVsbG8gd29ybGQ=?="))
	assert.Equal(t, "plain subject", decodeEncodedHeader("plain subject"))
}

func TestEncodeHeader(t *testing.T) {
	assert.Equal(t, "ascii only", encodeHeader("ascii only"))
	assert.Equal(t, "café", decodeEncodedHeader(encodeHeader("café")))
}

func parse(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractText_Plain(t *testing.T) {
	text, err := extractTextFromMessage(parse(t, "Subject: x\r\n\r\nhello there\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello there\r\n", text)
}

func TestExtractText_Multipart(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=outer\r\n" +
		"\r\n" +
		"--outer\r\n" +
		"Content-Type: multipart/alternative; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"first part\r\n" +
		"--inner\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>ignored</p>\r\n" +
		"--inner--\r\n" +
		"--outer\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"Y2Fm6Q==\r\n" +
		"--outer\r\n" +
		"Content-Type: application/pdf\r\n" +
		"\r\n" +
		"%PDF\r\n" +
		"--outer--\r\n"

	text, err := extractTextFromMessage(parse(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "first part\ncafé", text)
}

func TestExtractText_QuotedPrintable(t *testing.T) {
	raw := "Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"win =3D money"

	text, err := extractTextFromMessage(parse(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "win = money", text)
}

func TestExtractText_HTMLOnly(t *testing.T) {
	raw := "Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p { color: red }</style></head>" +
		"<body><p>win&nbsp;free <b>money</b></p><script>var x = 1;</script></body></html>"

	text, err := extractTextFromMessage(parse(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "win free money", text)
}

func TestExtractText_HTMLAlternativeWithoutPlain(t *testing.T) {
	raw := "Content-Type: multipart/alternative; boundary=b\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: text/html\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"<p>click=20<a href=3D\"http://x.biz\">here</a></p>\r\n" +
		"--b--\r\n"

	text, err := extractTextFromMessage(parse(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "click here", text)
}
