package bigbuy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Response is the raw material the classifier works on.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

var (
	// BigBuy sometimes answers 200 with a whole second response, status
	// line included, as the body.
	statusLinePattern = regexp.MustCompile(`^HTTP/\d(?:\.\d)?\s+(\d{3})\b`)
	htmlBodyPattern   = regexp.MustCompile(`(?is)<body[^>]*>(.*?)(?:</body>|$)`)
)

// errorEnvelope is the JSON shape BigBuy uses for errors.
type errorEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// productsMessage is the double-encoded payload of a 409 products error.
type productsMessage struct {
	Info string           `json:"info"`
	Data []ProductFailure `json:"data"`
}

// Classify turns a raw response into either its JSON payload or exactly one
// of ValidationError, ProductError, RateLimitError, ResponseError or
// ServerError. A successful response with an empty or null body yields a
// nil payload and no error.
func Classify(resp *Response) (json.RawMessage, error) {
	return classify(resp.StatusCode, resp.Header, resp.Body, true)
}

func classify(status int, header http.Header, body []byte, outer bool) (json.RawMessage, error) {
	success := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(body)

	if success && JSONOrNone(trimmed) == nil {
		return nil, nil
	}

	var embedded *Response
	if outer && statusLinePattern.Match(trimmed) {
		embedded, _ = parseEmbeddedResponse(trimmed)
	}

	// The outer status and headers decide rate limiting whatever the body holds.
	if reset := header.Get(RateLimitResetHeader); status == http.StatusTooManyRequests || (!success && reset != "") {
		msgBody := trimmed
		if embedded != nil {
			msgBody = bytes.TrimSpace(embedded.Body)
		}
		return nil, &RateLimitError{
			StatusCode: status,
			Message:    bodyMessage(msgBody),
			Reset:      reset,
		}
	}

	if embedded != nil {
		return classify(embedded.StatusCode, embedded.Header, embedded.Body, false)
	}

	env, isObject := decodeEnvelope(trimmed)
	if isObject {
		if code, ok := envelopeCode(env); ok && (!success || code >= 400) {
			return nil, structuredError(status, code, env)
		}
	}

	if success {
		if !json.Valid(trimmed) {
			return nil, &ServerError{StatusCode: status, Message: "invalid JSON response: " + truncate(string(trimmed), 256)}
		}
		return json.RawMessage(trimmed), nil
	}

	var msg string
	switch {
	case isObject:
		msg = envelopeMessage(env, trimmed)
	case looksLikeHTML(trimmed):
		msg = htmlFragment(string(trimmed))
	default:
		msg = string(trimmed)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		return nil, &ServerError{StatusCode: status, Message: msg}
	}
	return nil, &ResponseError{StatusCode: status, Code: status, Message: msg}
}

func structuredError(status, code int, env errorEnvelope) error {
	msg := envelopeMessage(env, nil)

	if code == http.StatusConflict {
		if products, ok := parseProductsMessage(msg); ok {
			return &ProductError{
				StatusCode: status,
				Info:       products.Info,
				Products:   products.Data,
			}
		}
	}

	if status >= 400 && status < 500 && hasValue(env.Errors) {
		if tree, err := ParseErrorTree(env.Errors); err == nil {
			return &ValidationError{
				StatusCode: status,
				Code:       code,
				Message:    strings.TrimSpace(unescapeNewlines(msg)),
				Fields:     FlattenErrors(tree),
			}
		}
	}

	return &ResponseError{StatusCode: status, Code: code, Message: msg}
}

// JSONOrNone returns nil for a body that carries nothing: empty, the null
// literal, or an empty JSON string. Otherwise it returns the body unchanged.
func JSONOrNone(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// parseEmbeddedResponse splits "HTTP/1.0 500 ...\r\nHeaders\r\n\r\npayload".
func parseEmbeddedResponse(body []byte) (*Response, bool) {
	text := string(body)
	match := statusLinePattern.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	status, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, false
	}

	head, payload := text, ""
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if i := strings.Index(text, sep); i >= 0 {
			head, payload = text[:i], text[i+len(sep):]
			break
		}
	}

	header := make(http.Header)
	lines := strings.Split(strings.ReplaceAll(head, "\r\n", "\n"), "\n")
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	return &Response{StatusCode: status, Header: header, Body: []byte(payload)}, true
}

func decodeEnvelope(body []byte) (errorEnvelope, bool) {
	var env errorEnvelope
	if len(body) == 0 || body[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, false
	}
	return env, true
}

func envelopeCode(env errorEnvelope) (int, bool) {
	if !hasValue(env.Code) {
		return 0, false
	}
	var code float64
	if err := json.Unmarshal(env.Code, &code); err != nil {
		return 0, false
	}
	return int(code), true
}

// envelopeMessage prefers "message", then "error", then the raw body.
func envelopeMessage(env errorEnvelope, raw []byte) string {
	for _, field := range []json.RawMessage{env.Message, env.Error} {
		if !hasValue(field) {
			continue
		}
		var s string
		if err := json.Unmarshal(field, &s); err == nil {
			return s
		}
		return string(bytes.TrimSpace(field))
	}
	return string(raw)
}

func bodyMessage(body []byte) string {
	if env, ok := decodeEnvelope(body); ok {
		return envelopeMessage(env, body)
	}
	if looksLikeHTML(body) {
		return htmlFragment(string(body))
	}
	return string(body)
}

func parseProductsMessage(msg string) (productsMessage, bool) {
	var products productsMessage
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, "{") {
		return products, false
	}
	if err := json.Unmarshal([]byte(msg), &products); err != nil {
		return products, false
	}
	return products, len(products.Data) > 0
}

func looksLikeHTML(body []byte) bool {
	prefix := strings.ToLower(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(prefix, "<!doctype html") || strings.HasPrefix(prefix, "<html")
}

// htmlFragment returns the content of <body>. Upstream bodies can be
// truncated, so a missing closing tag is accepted.
func htmlFragment(page string) string {
	if match := htmlBodyPattern.FindStringSubmatch(page); match != nil {
		if fragment := strings.TrimSpace(match[1]); fragment != "" {
			return fragment
		}
	}
	return strings.TrimSpace(page)
}

func hasValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// unescapeNewlines undoes the literal "\n" sequences BigBuy leaves in
// validation messages.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
