package analysis

import (
	"errors"
	"unicode/utf8"
)

var ErrInvalidChunkSize = errors.New("chunk size must be a positive integer")

// Document is the full text under analysis. Length counts runes.
type Document struct {
	Text   string
	Length int
}

func NewDocument(text string) Document {
	return Document{Text: text, Length: utf8.RuneCountInString(text)}
}

// Chunk is a contiguous slice of a Document. Start and Length are in runes.
type Chunk struct {
	Index  int
	Start  int
	Length int
	Text   string
}

// Chunks partitions the document into consecutive pieces of size runes.
// Every chunk is full-sized except possibly the last.
func (d Document) Chunks(size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if d.Length == 0 {
		return nil, nil
	}

	chunks := make([]Chunk, 0, (d.Length+size-1)/size)
	text := d.Text
	for start := 0; start < d.Length; start += size {
		n := min(size, d.Length-start)
		cut := byteIndexAtRunePos(text, n)
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Start:  start,
			Length: n,
			Text:   text[:cut],
		})
		text = text[cut:]
	}
	return chunks, nil
}

// ChunkText is a convenience wrapper around NewDocument(text).Chunks(size).
func ChunkText(text string, size int) ([]Chunk, error) {
	return NewDocument(text).Chunks(size)
}

func byteIndexAtRunePos(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	i := 0
	for pos > 0 && i < len(s) {
		_, sz := utf8.DecodeRuneInString(s[i:])
		i += sz
		pos--
	}
	return i
}
