package corpus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/faqbot/core"
)

// Category mirrors one element of the FAQ JSON file: a named group of
// question/answer pairs.
type Category struct {
	Name      string `json:"category"`
	Questions []QA   `json:"questions"`
}

// QA is a single question/answer pair as stored in the FAQ file.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Corpus holds the FAQ content, flattened into index-aligned entries.
// A Corpus is immutable after load and safe for concurrent reads.
type Corpus struct {
	categories []Category
	entries    []core.Entry
	hash       uint64
}

// Load reads and parses the FAQ JSON file at path.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FAQ file: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse FAQ file %s: %w", path, err)
	}
	return c, nil
}

// Parse reads FAQ content from r. The expected format is an ordered JSON
// array of categories, each with a name and an ordered list of pairs.
func Parse(r io.Reader) (*Corpus, error) {
	var categories []Category
	if err := json.NewDecoder(r).Decode(&categories); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCorpus, err)
	}
	return FromCategories(categories)
}

// FromCategories builds a Corpus from already-decoded categories.
// Every entry is validated; the flattening preserves file order so entry
// positions stay aligned with any vector table built from the corpus.
func FromCategories(categories []Category) (*Corpus, error) {
	var entries []core.Entry
	for _, cat := range categories {
		for _, qa := range cat.Questions {
			entry := core.Entry{
				Category: cat.Name,
				Question: qa.Question,
				Answer:   qa.Answer,
			}
			if err := core.ValidateEntry(&entry); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}

	return &Corpus{
		categories: categories,
		entries:    entries,
		hash:       contentHash(entries),
	}, nil
}

// Len returns the number of FAQ entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Categories returns the number of categories.
func (c *Corpus) Categories() int {
	return len(c.categories)
}

// Entry returns the entry at position pos. Positions are stable for the
// lifetime of the corpus.
func (c *Corpus) Entry(pos int) core.Entry {
	return c.entries[pos]
}

// Entries returns all entries in corpus order.
func (c *Corpus) Entries() []core.Entry {
	return c.entries
}

// Questions returns all questions in corpus order.
func (c *Corpus) Questions() []string {
	questions := make([]string, len(c.entries))
	for i, entry := range c.entries {
		questions[i] = entry.Question
	}
	return questions
}

// Hash returns a BLAKE2b content hash over all entries. Two corpora with
// identical content in identical order produce the same hash. The vector
// cache stores this value to detect a corpus edited after embedding.
func (c *Corpus) Hash() uint64 {
	return c.hash
}

// Field and record separators keep the hash unambiguous when questions or
// answers contain each other as substrings.
const (
	hashFieldSep  = 0x1f
	hashRecordSep = 0x1e
)

func contentHash(entries []core.Entry) uint64 {
	h, _ := blake2b.New(8, nil)
	for _, entry := range entries {
		h.Write([]byte(entry.Category))
		h.Write([]byte{hashFieldSep})
		h.Write([]byte(entry.Question))
		h.Write([]byte{hashFieldSep})
		h.Write([]byte(entry.Answer))
		h.Write([]byte{hashRecordSep})
	}
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
