package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// endOfContent terminates multi-line content input.
const endOfContent = "."

// PromptEntry reads an entry interactively: content lines up to a line with a
// single ".", then a mood and comma separated tags. Blank answers keep the
// values in def.
func PromptEntry(in io.Reader, out io.Writer, def EntryInput) (EntryInput, error) {
	scanner := bufio.NewScanner(in)
	res := def

	fmt.Fprintf(out, "Write your entry, finish with a line containing only %q:\n", endOfContent)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == endOfContent {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		res.Content = ToMarkup(strings.Join(lines, "\n"))
	}

	fmt.Fprintf(out, "Mood [%s]: ", def.Mood)
	if scanner.Scan() {
		if mood := strings.TrimSpace(scanner.Text()); mood != "" {
			res.Mood = mood
		}
	}

	fmt.Fprintf(out, "Tags, comma separated [%s]: ", strings.Join(def.Tags, ", "))
	if scanner.Scan() {
		if tags := SplitTags(scanner.Text()); len(tags) > 0 {
			res.Tags = tags
		}
	}
	return res, scanner.Err()
}

// PromptLine prints label and returns the trimmed answer. It reads one byte at
// a time so consecutive prompts can share in.
func PromptLine(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := in.Read(b[:])
		if n > 0 {
			if b[0] == '\n' {
				break
			}
			line = append(line, b[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(string(line)), nil
}

// SplitTags splits a comma separated list, dropping blanks.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ToMarkup wraps plain text paragraphs in the editor's <p> markup.
func ToMarkup(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("<p><br></p>")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(escaper.Replace(line))
		b.WriteString("</p>")
	}
	return b.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
