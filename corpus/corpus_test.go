package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const faqJSON = `[
  {
    "category": "Admissions",
    "questions": [
      {"question": "What is the admission process?", "answer": "Admissions happen through KCET and COMEDK counselling."},
      {"question": "What documents are required?", "answer": "Rank card, marks cards and ID proof are required."}
    ]
  },
  {
    "category": "Hostel",
    "questions": [
      {"question": "What are the hostel fees?", "answer": "Hostel fees are approximately INR 80,000 per year."}
    ]
  }
]`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(faqJSON))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Categories())

	// Flattening preserves file order
	assert.Equal(t, "What is the admission process?", c.Entry(0).Question)
	assert.Equal(t, "What documents are required?", c.Entry(1).Question)
	assert.Equal(t, "What are the hostel fees?", c.Entry(2).Question)
	assert.Equal(t, "Hostel", c.Entry(2).Category)

	questions := c.Questions()
	require.Len(t, questions, 3)
	for i, entry := range c.Entries() {
		assert.Equal(t, entry.Question, questions[i])
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, ErrMalformedCorpus)
}

func TestParse_EmptyCorpus(t *testing.T) {
	_, err := Parse(strings.NewReader("[]"))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Parse(strings.NewReader(`[{"category":"Empty","questions":[]}]`))
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestParse_InvalidEntry(t *testing.T) {
	missing := `[{"category":"Admissions","questions":[{"question":"","answer":"something"}]}]`
	_, err := Parse(strings.NewReader(missing))
	assert.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faq_data.json")
	require.NoError(t, os.WriteFile(path, []byte(faqJSON), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	a, err := Parse(strings.NewReader(faqJSON))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(faqJSON))
	require.NoError(t, err)

	// Same content, same hash
	assert.Equal(t, a.Hash(), b.Hash())

	// Any content edit changes the hash
	edited := strings.Replace(faqJSON, "INR 80,000", "INR 85,000", 1)
	c, err := Parse(strings.NewReader(edited))
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), c.Hash())
}
