package reports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxChars bounds the extracted text sent to the assistant
const MaxChars = 50000

// ErrNoText is returned when a PDF has no extractable text
var ErrNoText = errors.New("no text in report")

// ExtractText returns the plain text of a management report PDF, truncated
// to maxChars runes (MaxChars when maxChars <= 0).
// Corrupt files can make the reader panic; that is returned as an error.
func ExtractText(path string, maxChars int) (text string, err error) {
	if maxChars <= 0 {
		maxChars = MaxChars
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")

		if sb.Len() > maxChars*utf8.UTFMax {
			break
		}
	}

	text = Truncate(strings.TrimSpace(sb.String()), maxChars)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return text, nil
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Find lists the PDFs of ticker in dir (HGLG11*.pdf), newest name last
func Find(dir, ticker string) ([]string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(name), ticker) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}
