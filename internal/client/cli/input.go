package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/saveeat/saveeat-client/internal/client/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered. The collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, _ := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// splitList turns "gluten, lait ,, oeufs" into ["gluten" "lait" "oeufs"].
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseAssignments reads key=value arguments. Values may be quoted words
// rejoined by the caller; a key without "=" is an error.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	var last string
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if last == "" {
				return nil, fmt.Errorf("expected key=value, got %q", arg)
			}
			out[last] += " " + arg
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("empty key in %q", arg)
		}
		out[key] = value
		last = key
	}
	return out, nil
}

// parseDeadline accepts the timestamp layouts understood by the server, a
// bare "15:04" for today, or a duration from now such as "3h".
func parseDeadline(s string, now time.Time) (models.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Timestamp{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return models.NewTimestamp(now.Add(d)), nil
	}
	if t, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		y, m, day := now.Date()
		return models.NewTimestamp(time.Date(y, m, day, t.Hour(), t.Minute(), 0, 0, now.Location())), nil
	}
	if ts, ok := models.ParseTimestamp(s); ok {
		return ts, nil
	}
	return models.Timestamp{}, fmt.Errorf("cannot read deadline %q (try 2026-10-20 18:00, 18:00 or 3h)", s)
}
