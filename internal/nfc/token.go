package nfc

import (
	"encoding/hex"
	"strings"
)

// textRecordPrefix is the status byte and "en" language code that open an
// NDEF text record written by the card issuer.
const textRecordPrefix = "\x02en"

// ExtractToken returns the card token: the first NDEF record's payload when
// present, otherwise the tag identifier as uppercase hex.
func ExtractToken(tag Tag) (string, bool) {
	if len(tag.NdefMessage) > 0 {
		if payload := tag.NdefMessage[0].Payload; len(payload) > 0 {
			if token := strings.TrimPrefix(string(payload), textRecordPrefix); token != "" {
				return token, true
			}
		}
	}
	if len(tag.ID) > 0 {
		return strings.ToUpper(hex.EncodeToString(tag.ID)), true
	}
	return "", false
}
