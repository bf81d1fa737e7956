package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var newlineRun = regexp.MustCompile(`\s*\n\s*`)

// CleanHeredoc collapses heredoc bodies to a placeholder and folds the
// remaining newlines into spaces:
//
//	git commit -m "$(cat <<'EOF'
//	Long message
//	EOF
//	)"
//
// becomes
//
//	git commit -m "$(cat <<'EOF'...[heredoc]...EOF )"
//
// A space between << and the delimiter is not recognised.
func CleanHeredoc(command string) string {
	if command == "" {
		return ""
	}

	var b strings.Builder
	i := 0
	for i < len(command) {
		j := strings.Index(command[i:], "<<")
		if j < 0 {
			break
		}
		start := i + j
		delim, end, ok := matchHeredoc(command, start)
		if !ok {
			b.WriteString(command[i : start+1])
			i = start + 1
			continue
		}
		b.WriteString(command[i:start])
		b.WriteString("<<'" + delim + "'...[heredoc]..." + delim)
		i = end
	}
	b.WriteString(command[i:])

	return newlineRun.ReplaceAllString(b.String(), " ")
}

// matchHeredoc tries to match <<'?WORD'?<space incl. newline>BODY\nWORD at
// start. It returns the delimiter and the index just past the closing
// delimiter.
func matchHeredoc(s string, start int) (string, int, bool) {
	p := start + 2
	if p < len(s) && s[p] == '\'' {
		p++
	}

	wordStart := p
	for p < len(s) {
		r, size := utf8.DecodeRuneInString(s[p:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p += size
	}
	if p == wordStart {
		return "", 0, false
	}
	delim := s[wordStart:p]

	if p < len(s) && s[p] == '\'' {
		p++
	}

	// Collect every newline in the following whitespace run; the body may
	// start after any of them, latest first.
	var newlines []int
	for p < len(s) {
		r, size := utf8.DecodeRuneInString(s[p:])
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\n' {
			newlines = append(newlines, p)
		}
		p += size
	}

	closing := "\n" + delim
	for k := len(newlines) - 1; k >= 0; k-- {
		bodyStart := newlines[k] + 1
		if idx := strings.Index(s[bodyStart:], closing); idx >= 0 {
			return delim, bodyStart + idx + len(closing), true
		}
	}
	return "", 0, false
}
