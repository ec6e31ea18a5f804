package nfc

import (
	"context"
	"errors"
)

type Kind int

const (
	KindReadFailure Kind = iota
	KindCancelled
	KindUnsupported
	KindDisabled
	KindNoToken
)

func (k Kind) String() string {
	switch k {
	case KindCancelled:
		return "cancelled"
	case KindUnsupported:
		return "unsupported"
	case KindDisabled:
		return "disabled"
	case KindNoToken:
		return "no_token"
	default:
		return "read_failure"
	}
}

func (k Kind) message() string {
	switch k {
	case KindCancelled:
		return "Lecture de carte annulée"
	case KindUnsupported:
		return "NFC n'est pas supporté sur cet appareil"
	case KindDisabled:
		return "Veuillez activer NFC dans les paramètres"
	case KindNoToken:
		return "Impossible de lire le token de la carte"
	default:
		return "Impossible de lire la carte étudiante"
	}
}

// ScanError is the single error type surfaced by card scans. Callers branch
// on Kind; Error() is the message shown to the student.
type ScanError struct {
	Kind Kind
	Err  error
}

func (e *ScanError) Error() string {
	return e.Kind.message()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, err error) *ScanError {
	return &ScanError{Kind: kind, Err: err}
}

// KindOf reports the scan error kind carried by err. Context cancellation
// counts as a cancelled scan.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return 0, false
	}
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind, true
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled, true
	}
	return 0, false
}

func classify(err error) *ScanError {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr
	}
	if kind, ok := KindOf(err); ok {
		return NewError(kind, err)
	}
	return NewError(KindReadFailure, err)
}
