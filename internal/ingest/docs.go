package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// docChunkChars bounds one documentation fragment. Pages are split on
// paragraph boundaries and greedily packed up to this size.
const docChunkChars = 1200

var docExtensions = map[string]bool{
	".md":  true,
	".txt": true,
	".sql": true,
}

// LoadDocsDir walks a documentation directory and returns one fragment per
// chunk. Source ids are the file path relative to dir, with a "#chunk-N"
// suffix for files that split into more than one chunk.
func LoadDocsDir(dir string) ([]Fragment, error) {
	var frags []Fragment
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !docExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		chunks := chunkText(string(data))
		for i, chunk := range chunks {
			id := rel
			if len(chunks) > 1 {
				id = fmt.Sprintf("%s#chunk-%d", rel, i)
			}
			frags = append(frags, Fragment{SourceID: id, Content: chunk})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs dir %s: %w", dir, err)
	}
	return frags, nil
}

// chunkText splits text on blank lines and packs paragraphs greedily into
// chunks of at most docChunkChars. A single oversized paragraph becomes its
// own chunk rather than being cut mid-sentence.
func chunkText(text string) []string {
	paras := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	var cur strings.Builder
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(p)+2 > docChunkChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
