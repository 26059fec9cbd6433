package models

import (
	"fmt"
	"strings"
)

// Calibration keys rewritten by the spectral operations
const (
	KeyCRPIX3  = "CRPIX3"
	KeyCDELT3  = "CDELT3"
	KeyC3_3    = "C3_3"
	KeyPHMSAMP = "PHMSAMP"
	KeyHistory = "HISTORY"
	KeyComment = "COMMENT"
)

// Integrity keys, invalid once the data or header change
const (
	KeyChecksum = "CHECKSUM"
	KeyDatasum  = "DATASUM"
)

// Card is a single header record
type Card struct {
	Name    string
	Value   interface{}
	Comment string
}

// Header is an ordered list of calibration cards. Commentary cards
// (HISTORY, COMMENT, blank) may repeat; all other names are unique.
type Header struct {
	cards []Card
}

// NewHeader builds a header from cards in order
func NewHeader(cards ...Card) *Header {
	h := &Header{}
	for _, c := range cards {
		h.Append(c)
	}
	return h
}

func isCommentary(name string) bool {
	return name == KeyHistory || name == KeyComment || name == ""
}

func normalizeKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Append adds a card at the end. A non-commentary card whose name already
// exists replaces the previous value in place.
func (h *Header) Append(c Card) {
	c.Name = normalizeKey(c.Name)
	if !isCommentary(c.Name) {
		if i := h.Index(c.Name); i >= 0 {
			h.cards[i] = c
			return
		}
	}
	h.cards = append(h.cards, c)
}

// Index returns the position of the first card named name, or -1
func (h *Header) Index(name string) int {
	name = normalizeKey(name)
	for i, c := range h.cards {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether a card named name exists
func (h *Header) Has(name string) bool {
	return h.Index(name) >= 0
}

// Get returns the first card named name
func (h *Header) Get(name string) (Card, bool) {
	i := h.Index(name)
	if i < 0 {
		return Card{}, false
	}
	return h.cards[i], true
}

// Float returns the numeric value of name
func (h *Header) Float(name string) (float64, error) {
	c, ok := h.Get(name)
	if !ok {
		return 0, &MissingKeyError{Key: normalizeKey(name)}
	}
	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("header key %s is not numeric (%T)", c.Name, c.Value)
	}
}

// Set updates the value of name keeping its comment and position, or
// appends a new card when absent.
func (h *Header) Set(name string, value interface{}) {
	if i := h.Index(name); i >= 0 {
		h.cards[i].Value = value
		return
	}
	h.Append(Card{Name: name, Value: value})
}

// Delete removes every card named name
func (h *Header) Delete(name string) {
	name = normalizeKey(name)
	kept := h.cards[:0]
	for _, c := range h.cards {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	h.cards = kept
}

// AddHistory appends a HISTORY card
func (h *Header) AddHistory(format string, args ...interface{}) {
	h.cards = append(h.cards, Card{Name: KeyHistory, Comment: fmt.Sprintf(format, args...)})
}

// History returns the text of all HISTORY cards in order
func (h *Header) History() []string {
	var out []string
	for _, c := range h.cards {
		if c.Name == KeyHistory {
			out = append(out, c.Comment)
		}
	}
	return out
}

// Cards returns a copy of the cards in order
func (h *Header) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len is the number of cards
func (h *Header) Len() int {
	return len(h.cards)
}

// Clone returns an independent copy
func (h *Header) Clone() *Header {
	return &Header{cards: h.Cards()}
}

// MissingKeyError reports a calibration key absent from a header
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s key is not present in the header", e.Key)
}
