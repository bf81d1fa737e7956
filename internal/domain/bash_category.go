package domain

import (
	"regexp"
	"strings"
)

// Plain-language bash command categories.
const (
	CategoryVersionControl = "Version Control"
	CategoryRunningCode    = "Running Code"
	CategorySearching      = "Searching & Reading"
	CategoryFileManagement = "File Management"
	CategoryTesting        = "Testing & Monitoring"
	CategoryServerSystem   = "Server & System"
	CategoryOther          = "Other"
)

type bashCategory struct {
	name    string
	pattern *regexp.Regexp
}

// Order matters: the first matching category wins.
var bashCategories = []bashCategory{
	{CategoryVersionControl, regexp.MustCompile(`^(git|gh)\b`)},
	{CategoryRunningCode, regexp.MustCompile(`^(python|python3|pip|pip3|node|npm|npx|yarn|pytest|uvicorn|mypy|ruff|black|isort|flake8|pylint)\b`)},
	{CategorySearching, regexp.MustCompile(`^(grep|rg|find|fd|ag|ack|ls|cat|head|tail|wc|tree|sort|uniq|tee|stat|du|df)\b`)},
	{CategoryFileManagement, regexp.MustCompile(`^(mkdir|rmdir|rm|mv|cp|chmod|chown|ln|touch|tar|zip|unzip|gzip)\b`)},
	{CategoryTesting, regexp.MustCompile(`^(curl|wget|ssh|scp|rsync|ping|nc|netstat|ss|ps|kill|pkill|top|htop|lsof|which|whereis)\b`)},
	{CategoryServerSystem, regexp.MustCompile(`^(systemctl|journalctl|service|docker|docker-compose|nginx|hostname|uname|date|whoami|env|export|echo|printf|sleep|sed|awk|sqlite3)\b`)},
}

var chainSplit = regexp.MustCompile(`\s*&&\s*|\s*;\s*`)

// CategorizeBashCommand maps a shell command to a plain-language category.
// Only the first segment that is not a bare directory change decides the
// result; pipes are ignored after their first command.
func CategorizeBashCommand(command string) string {
	for _, segment := range chainSplit.Split(strings.TrimSpace(command), -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		base := strings.TrimSpace(strings.SplitN(segment, "|", 2)[0])
		if strings.HasPrefix(base, "sudo ") {
			base = strings.TrimSpace(base[len("sudo "):])
		}

		words := strings.Fields(base)
		for len(words) > 0 && strings.Contains(words[0], "=") {
			words = words[1:]
		}
		if len(words) == 0 {
			continue
		}
		if words[0] == "cd" {
			continue
		}
		base = strings.Join(words, " ")

		if strings.HasPrefix(base, "source ") || strings.HasPrefix(base, ". ") {
			if strings.Contains(base, "venv") || strings.Contains(base, "activate") {
				return CategoryRunningCode
			}
			return CategoryServerSystem
		}

		first := words[0]
		if i := strings.LastIndex(first, "/"); i >= 0 {
			first = first[i+1:]
		}

		for _, c := range bashCategories {
			if c.pattern.MatchString(first) {
				return c.name
			}
		}
		return CategoryOther
	}
	return CategoryOther
}
