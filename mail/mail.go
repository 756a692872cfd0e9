// Package mail decodes raw mailing-list messages: threading identity on one
// side, a fully decoded body and sender on the other.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"slices"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"

	"github.com/SyntevoAlex/gitgitgadget/model"
)

var ErrNoMessageID = errors.New("message has no Message-Id header")

// ParseIdentity extracts just the threading identity of a raw message: its
// own message id and the ids it references, in header order. The In-Reply-To
// id is appended when the References header does not already carry it.
func ParseIdentity(raw []byte) (messageID string, references []string, err error) {
	entity, err := read(raw)
	if err != nil {
		return "", nil, err
	}
	header := gomail.Header{Header: entity.Header}
	return identity(&header)
}

// ParseMessage decodes a raw message into its mirrorable form: identity,
// headers, sender display name and the first text part with all
// content-transfer encodings and charsets resolved.
func ParseMessage(raw []byte) (model.ParsedMessage, error) {
	entity, err := read(raw)
	if err != nil {
		return model.ParsedMessage{}, err
	}
	header := gomail.Header{Header: entity.Header}

	messageID, references, err := identity(&header)
	if err != nil {
		return model.ParsedMessage{}, err
	}

	return model.ParsedMessage{
		MessageID:       messageID,
		References:      references,
		Headers:         headerMap(entity.Header),
		DecodedBody:     textBody(entity),
		FromDisplayName: displayName(&header),
	}, nil
}

func read(raw []byte) (*message.Entity, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return entity, nil
}

func identity(header *gomail.Header) (string, []string, error) {
	messageID, err := header.MessageID()
	if err != nil || messageID == "" {
		return "", nil, ErrNoMessageID
	}

	references, err := header.MsgIDList("References")
	if err != nil {
		references = nil
	}
	inReplyTo, err := header.MsgIDList("In-Reply-To")
	if err != nil {
		inReplyTo = nil
	}
	for _, id := range inReplyTo {
		if !slices.Contains(references, id) {
			references = append(references, id)
		}
	}

	return messageID, references, nil
}

func displayName(header *gomail.Header) string {
	addresses, err := header.AddressList("From")
	if err != nil || len(addresses) == 0 {
		return ""
	}
	return strings.TrimSpace(addresses[0].Name)
}

// textBody returns the first text/plain part, decoded. Multipart messages
// are walked in order; a message without a text part renders no body.
func textBody(entity *message.Entity) string {
	reader := gomail.NewReader(entity)
	defer reader.Close()

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return ""
		}

		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || contentType != "text/plain" {
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			return ""
		}
		return string(body)
	}
}

func headerMap(header message.Header) map[string][]string {
	out := make(map[string][]string)
	fields := header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		key := textproto.CanonicalMIMEHeaderKey(fields.Key())
		out[key] = append(out[key], value)
	}
	return out
}
