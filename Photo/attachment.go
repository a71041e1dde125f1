package Photo

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Intent says what a submission does with the stored photo.
type Intent string

const (
	IntentKeep  Intent = "keep"
	IntentSet   Intent = "set"
	IntentClear Intent = "clear"
)

const previewPrefix = "data:image/jpeg;base64,"

var (
	errBadStored = errors.New("formato de foto desconocido")
	base64Re     = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
)

// Attachment is the photo slot of an editor session.
type Attachment struct {
	Intent Intent `json:"intent"`
	// Base64 is the JPEG payload without the data: prefix
	Base64 string `json:"base64,omitempty"`
}

// NewAttachment starts in keep mode with no image.
func NewAttachment() Attachment {
	return Attachment{Intent: IntentKeep}
}

func (a *Attachment) Set(enc *Encoded) {
	a.Base64 = base64.StdEncoding.EncodeToString(enc.Data)
	a.Intent = IntentSet
}

func (a *Attachment) Clear() {
	a.Base64 = ""
	a.Intent = IntentClear
}

// Hydrate loads the photo already stored on a record for preview. It does not
// touch the intent and is ignored once the user picked or cleared a photo.
// An undecodable stored value leaves the slot without a preview.
func (a *Attachment) Hydrate(stored string) {
	if a.Intent != IntentKeep || a.Base64 != "" || stored == "" {
		return
	}
	raw, err := DecodeStored(stored)
	if err != nil {
		log.Warn().Err(err).Int("length", len(stored)).Msg("stored photo could not be decoded")
		return
	}
	a.Base64 = base64.StdEncoding.EncodeToString(raw)
}

// Preview is a data URL for <img src>, empty when there is nothing to show.
func (a Attachment) Preview() string {
	if a.Base64 == "" {
		return ""
	}
	return previewPrefix + a.Base64
}

// StoredValue converts the attachment into the column update it implies.
// changed is false for keep; value is nil for clear.
func (a Attachment) StoredValue() (value *string, changed bool, err error) {
	switch a.Intent {
	case IntentSet:
		raw, err := base64.StdEncoding.DecodeString(a.Base64)
		if err != nil {
			return nil, false, ErrUnprocessable
		}
		encoded := EncodeStored(raw)
		return &encoded, true, nil
	case IntentClear:
		return nil, true, nil
	}
	return nil, false, nil
}

// EncodeStored renders bytes as the escaped hex text kept in the photo column.
func EncodeStored(raw []byte) string {
	return `\x` + hex.EncodeToString(raw)
}

// DecodeStored reverses EncodeStored. Plain base64 is accepted as well.
func DecodeStored(stored string) ([]byte, error) {
	if strings.HasPrefix(stored, `\x`) {
		digits := stored[2:]
		if len(digits)%2 != 0 {
			return nil, errBadStored
		}
		return hex.DecodeString(digits)
	}
	if base64Re.MatchString(stored) {
		return base64.StdEncoding.DecodeString(stored)
	}
	return nil, errBadStored
}
