package pdfload

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/docstack/ragqa/pkg/chunker"
)

// Chunk is one piece of page text ready for embedding.
type Chunk struct {
	Content string
	Page    int
}

// FileLoader reads PDFs from the local filesystem.
type FileLoader struct{}

// LoadAndSplit extracts every page of the PDF at path and splits each page's
// text with the given chunk options.
func (FileLoader) LoadAndSplit(path string, opts chunker.ChunkOptions) ([]Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", path, err)
	}

	c := chunker.New()
	var chunks []Chunk

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", pageNum, path, err)
		}

		for _, tc := range c.Chunk(text, opts) {
			chunks = append(chunks, Chunk{Content: tc.Content, Page: pageNum})
		}
	}

	return chunks, nil
}
