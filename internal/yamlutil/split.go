// Package yamlutil splits multi-document YAML, which serialized assets use
// to carry several object documents in one file.
package yamlutil

import "strings"

// SplitDocuments splits data at "---" separator lines and returns the
// non-empty documents, without their separators.
func SplitDocuments(data []byte) [][]byte {
	parts := splitAtSeparators(string(data))

	var docs [][]byte

	for _, part := range parts {
		docs = append(docs, []byte(part))
	}

	return docs
}

// SplitDocumentsString is SplitDocuments returning strings.
func SplitDocumentsString(data []byte) []string {
	return splitAtSeparators(string(data))
}

// splitAtSeparators walks the input line by line. A separator is a line
// that is exactly "---" after trailing whitespace is stripped; it may not
// be indented. Whitespace-only documents are dropped.
func splitAtSeparators(data string) []string {
	var (
		docs []string
		cur  strings.Builder
	)

	flush := func() {
		if doc := cur.String(); strings.TrimSpace(doc) != "" {
			docs = append(docs, doc)
		}

		cur.Reset()
	}

	for _, line := range strings.SplitAfter(data, "\n") {
		if strings.TrimRight(line, " \t\r\n") == "---" && !strings.HasPrefix(line, " ") {
			flush()
			continue
		}

		cur.WriteString(line)
	}

	flush()

	return docs
}
