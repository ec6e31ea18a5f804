package nfc

import "context"

// NdefRecord is one record of an NDEF message as delivered by the reader.
type NdefRecord struct {
	TNF     uint8
	Type    []byte
	ID      []byte
	Payload []byte
}

type Tag struct {
	ID          []byte
	NdefMessage []NdefRecord
}

// Reader is the native NFC capability. Implementations report a user
// cancellation as a KindCancelled *ScanError or context.Canceled.
type Reader interface {
	IsSupported(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
	RequestTag(ctx context.Context) (Tag, error)
	CancelRequest() error
}

// Unavailable is the Reader of a host without NFC hardware.
type Unavailable struct{}

func (Unavailable) IsSupported(context.Context) (bool, error) { return false, nil }
func (Unavailable) IsEnabled(context.Context) (bool, error)   { return false, nil }
func (Unavailable) Start(context.Context) error               { return nil }
func (Unavailable) CancelRequest() error                      { return nil }

func (Unavailable) RequestTag(context.Context) (Tag, error) {
	return Tag{}, NewError(KindUnsupported, nil)
}
