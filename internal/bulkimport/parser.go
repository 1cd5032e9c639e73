// Package bulkimport turns pasted plain text into multiple-choice question
// records and tracks the preview/confirm state of a single paste.
//
// Input format: questions are separated by at least one blank line. In each
// block the first non-empty line is the question text and the second is the
// 1-based number of the correct option (1-5). Further lines are ignored.
//
//	What is the capital of France?
//	2
//
//	2 + 2 = ?
//	4
package bulkimport

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// OptionCount is the fixed number of options every parsed question carries.
const OptionCount = 5

// EmptyResultMessage is shown when a paste produced no questions at all.
const EmptyResultMessage = "No questions found. Please check the format."

var (
	ErrInvalidAnswerNumber = errors.New("invalid answer number")
	ErrEmptyResult         = errors.New("no questions found")
	ErrNothingStaged       = errors.New("no parsed questions to act on")
)

// Separator lines may hold any Unicode blank, including NBSP and BOM.
var blockSeparator = regexp.MustCompile(`\n[\s\v\p{Zs}\x{85}\x{FEFF}\x{2028}\x{2029}]*\n`)

// ParsedQuestion is a question produced by the parser, ready to become an
// editable question form.
type ParsedQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// DefaultOptions returns a fresh copy of the placeholder option labels.
func DefaultOptions() []string {
	return []string{"1", "2", "3", "4", "5"}
}

// InvalidAnswerError reports a block whose answer line is not a number in 1-5.
type InvalidAnswerError struct {
	Raw      string
	Question string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("Invalid answer number \"%s\" for question \"%s\". Must be 1-5.", e.Raw, e.Question)
}

func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswerNumber
}

// ParseResult is either an ordered list of questions or the error that
// aborted the parse. Err and Questions are never both set.
type ParseResult struct {
	Questions []ParsedQuestion
	Err       error
}

// OK reports whether the parse succeeded.
func (r ParseResult) OK() bool {
	return r.Err == nil
}

// Parse converts the whole text. A single bad answer line aborts the parse and
// no partial result is returned. Blocks with fewer than two non-empty lines are
// skipped.
func Parse(text string) ParseResult {
	questions, err := ParseQuestions(text)
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseResult{Questions: questions}
}

// ParseQuestions is Parse in (value, error) form.
func ParseQuestions(text string) ([]ParsedQuestion, error) {
	questions := []ParsedQuestion{}

	for _, block := range blockSeparator.Split(trimBlank(text), -1) {
		lines := nonEmptyLines(block)
		if len(lines) < 2 {
			continue
		}

		questionText := lines[0]
		answerLine := lines[1]

		answer, ok := leadingInt(answerLine)
		if !ok || answer < 1 || answer > OptionCount {
			return nil, &InvalidAnswerError{Raw: answerLine, Question: questionText}
		}

		questions = append(questions, ParsedQuestion{
			Text:          questionText,
			Options:       DefaultOptions(),
			CorrectAnswer: answer - 1,
			Explanation:   "",
		})
	}

	return questions, nil
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if trimmed := trimBlank(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// leadingInt reads an optionally signed integer prefix and ignores whatever
// follows it, so "3)" and "3. Paris" both read as 3. A "0x" prefix switches to
// hexadecimal digits.
func leadingInt(s string) (int, bool) {
	s = trimBlank(s)
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	base := 10
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
		isDigit = func(c byte) bool {
			return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		}
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		// Out of range for int64; certainly not an option number.
		return 0, false
	}
	return sign * int(n), true
}
