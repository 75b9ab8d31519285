// Package copyright checks that files carry an up-to-date copyright header
// near their top. The expected year span ends at the file's last git
// modification year; update mode rewrites stale spans in place and inserts
// missing headers using the comment style of the file's extension.
package copyright

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/hookfang/pkg/gitlib"
)

// headerTemplate is the canonical header text, formatted with the year span
// and the owner.
const headerTemplate = "Copyright (c) %s by %s. All rights reserved."

// DefaultHeadBytes bounds how far into a file the header is searched for.
const DefaultHeadBytes = 1024

// Extension families mapped to comment styles.
var (
	hashExtensions = map[string]struct{}{
		"py": {}, "sh": {}, "yaml": {}, "yml": {}, "toml": {},
		"cfg": {}, "ini": {}, "txt": {}, "tf": {}, "hcl": {},
		"conf": {}, "properties": {}, "ps1": {}, "gitignore": {},
		"Dockerfile": {}, "Makefile": {},
	}

	dashExtensions = map[string]struct{}{"lua": {}, "sql": {}}

	starExtensions = map[string]struct{}{
		"java": {}, "js": {}, "ts": {}, "css": {}, "c": {}, "h": {},
		"go": {}, "gradle": {}, "groovy": {},
	}

	markdownExtensions = map[string]struct{}{"md": {}}
)

// encodingPattern is the PEP 263 source-encoding declaration, which must stay
// above any inserted header.
var encodingPattern = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)

// Status classifies the copyright verdict for one file.
type Status int

const (
	// StatusOK means the header exists and is current.
	StatusOK Status = iota

	// StatusMissing means no header was found and none was inserted.
	StatusMissing

	// StatusStale means the header's year span is out of date.
	StatusStale

	// StatusUpdated means a stale year span was rewritten in place.
	StatusUpdated

	// StatusInserted means a missing header was prepended to the file.
	StatusInserted

	// StatusSkipped means the file could not be read or has no recognized
	// comment style; the check neither passes nor fails it.
	StatusSkipped
)

// String returns the status as a stable lowercase label.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusStale:
		return "stale"
	case StatusUpdated:
		return "updated"
	case StatusInserted:
		return "inserted"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Passed reports whether the status counts as a passing verdict for the
// pre-commit exit contract. Updated and inserted files fail the hook run so
// the rewritten content gets staged and re-checked.
func (s Status) Passed() bool {
	return s == StatusOK || s == StatusSkipped
}

// Result is the verdict for one file.
type Result struct {
	Path    string `json:"path"`
	Status  Status `json:"-"`
	Message string `json:"message,omitempty"`

	// Expected is the header the file should carry.
	Expected string `json:"expected,omitempty"`
}

// Checker runs the copyright check for one owner against one repository.
type Checker struct {
	repo      *gitlib.Repository
	owner     string
	update    bool
	headBytes int
	pattern   *regexp.Regexp
	now       func() time.Time
}

// NewChecker builds a checker. Update mode rewrites stale headers and
// inserts missing ones; check mode only reports.
func NewChecker(repo *gitlib.Repository, owner string, update bool) *Checker {
	return &Checker{
		repo:      repo,
		owner:     owner,
		update:    update,
		headBytes: DefaultHeadBytes,
		pattern:   headerPattern(owner),
		now:       time.Now,
	}
}

// WithHeadBytes overrides how far into a file the header is searched for.
// Non-positive values keep the default.
func (c *Checker) WithHeadBytes(n int) *Checker {
	if n > 0 {
		c.headBytes = n
	}

	return c
}

// headerPattern matches an existing header for the owner, capturing the
// first year and the optional second year of the span.
func headerPattern(owner string) *regexp.Regexp {
	return regexp.MustCompile(`Copyright \(c\) ([0-9]{4})(, [0-9]{4})? by ` + regexp.QuoteMeta(owner))
}

// CheckFile checks one worktree-relative file.
func (c *Checker) CheckFile(ctx context.Context, rel string) (Result, error) {
	full := filepath.Join(c.repo.Path(), filepath.FromSlash(rel))

	raw, err := os.ReadFile(full)
	if err != nil {
		return Result{
			Path:    rel,
			Status:  StatusSkipped,
			Message: fmt.Sprintf("cannot read file: %v", err),
		}, nil
	}

	content := string(raw)
	currentYear := c.now().Year()

	match := c.pattern.FindStringSubmatch(head(content, c.headBytes))
	if match == nil {
		return c.handleMissing(rel, full, content, currentYear)
	}

	return c.handleExisting(ctx, rel, full, content, match, currentYear)
}

// handleExisting decides whether a found header is current, and rewrites it
// in update mode when it is not.
func (c *Checker) handleExisting(
	ctx context.Context, rel, full, content string, match []string, currentYear int,
) (Result, error) {
	firstYear, _ := strconv.Atoi(match[1])

	lastYear := firstYear
	if match[2] != "" {
		lastYear, _ = strconv.Atoi(strings.TrimPrefix(match[2], ", "))
	}

	stale, err := c.shouldBeCurrent(ctx, rel)
	if err != nil {
		return Result{}, err
	}

	if !stale || lastYear >= currentYear {
		return Result{Path: rel, Status: StatusOK}, nil
	}

	expected := fmt.Sprintf(headerTemplate, yearSpan(firstYear, currentYear), c.owner)

	if !c.update {
		return Result{
			Path:     rel,
			Status:   StatusStale,
			Message:  fmt.Sprintf("copyright year span ends at %d, expected %d", lastYear, currentYear),
			Expected: expected,
		}, nil
	}

	replacement := strings.Replace(match[0], match[1]+match[2], yearSpan(firstYear, currentYear), 1)
	updated := strings.Replace(content, match[0], replacement, 1)

	if writeErr := os.WriteFile(full, []byte(updated), 0o600); writeErr != nil {
		return Result{}, fmt.Errorf("update header in %s: %w", rel, writeErr)
	}

	return Result{Path: rel, Status: StatusUpdated, Expected: expected}, nil
}

// handleMissing inserts a fresh header in update mode or reports it missing.
func (c *Checker) handleMissing(rel, full, content string, currentYear int) (Result, error) {
	expected := fmt.Sprintf(headerTemplate, strconv.Itoa(currentYear), c.owner)
	wrapped := WrapHeader(rel, expected)

	if wrapped == "" {
		return Result{
			Path:    rel,
			Status:  StatusSkipped,
			Message: "no comment style known for this file type",
		}, nil
	}

	if !c.update {
		return Result{
			Path:     rel,
			Status:   StatusMissing,
			Message:  "no copyright header found",
			Expected: expected,
		}, nil
	}

	inserted := InsertHeader(content, wrapped)
	if writeErr := os.WriteFile(full, []byte(inserted), 0o600); writeErr != nil {
		return Result{}, fmt.Errorf("insert header into %s: %w", rel, writeErr)
	}

	return Result{Path: rel, Status: StatusInserted, Expected: expected}, nil
}

// shouldBeCurrent reports whether the file's span must reach the current
// year: it is untracked, was last modified this year, or is staged.
func (c *Checker) shouldBeCurrent(ctx context.Context, rel string) (bool, error) {
	year, tracked, err := c.repo.LastModifiedYear(ctx, rel)
	if err != nil {
		return false, err
	}

	if !tracked || year == c.now().Year() {
		return true, nil
	}

	staged, err := c.repo.IsStaged(rel)
	if err != nil {
		return false, err
	}

	return staged, nil
}

// yearSpan renders "first" or "first, last".
func yearSpan(first, last int) string {
	if first == last {
		return strconv.Itoa(first)
	}

	return fmt.Sprintf("%d, %d", first, last)
}

// head returns the first n bytes of content, cut at a line boundary.
func head(content string, n int) string {
	if len(content) <= n {
		return content
	}

	cut := content[:n]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}

	return cut
}

// WrapHeader wraps the header text in the comment style of the file's
// extension. An empty string means the file type has no known style.
func WrapHeader(path, header string) string {
	ext := fileEnding(path)

	switch {
	case inSet(hashExtensions, ext):
		return fmt.Sprintf("#\n# %s\n#\n", header)
	case inSet(dashExtensions, ext):
		return fmt.Sprintf("--\n-- %s\n--\n", header)
	case inSet(starExtensions, ext):
		return fmt.Sprintf("/*\n * %s\n */\n", header)
	case inSet(markdownExtensions, ext):
		escaped := strings.NewReplacer("(", `\(`, ")", `\)`).Replace(header)

		return fmt.Sprintf("[//]: # (%s)\n", escaped)
	default:
		return ""
	}
}

// InsertHeader prepends the wrapped header, keeping a shebang line and a
// PEP 263 encoding declaration above it.
func InsertHeader(content, wrapped string) string {
	idx := insertIndex(content)
	if idx > 0 {
		return content[:idx] + wrapped + content[idx:]
	}

	if content == "" {
		return wrapped
	}

	return wrapped + "\n" + content
}

// insertIndex returns the byte offset after any shebang and encoding lines.
func insertIndex(content string) int {
	idx := 0

	first, rest, ok := strings.Cut(content, "\n")
	if !ok {
		return 0
	}

	if !strings.HasPrefix(first, "#!") && !encodingPattern.MatchString(first) {
		return 0
	}

	idx = len(first) + 1

	if strings.HasPrefix(first, "#!") {
		second, _, hasSecond := strings.Cut(rest, "\n")
		if hasSecond && encodingPattern.MatchString(second) {
			idx += len(second) + 1
		}
	}

	return idx
}

func fileEnding(path string) string {
	base := filepath.Base(path)

	if !strings.Contains(base, ".") {
		return base
	}

	parts := strings.Split(base, ".")

	return parts[len(parts)-1]
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]

	return ok
}
