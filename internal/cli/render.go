package cli

import (
	"errors"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
)

// Error output formats. html is what the e-reader dialog displays.
const (
	outputText = "text"
	outputHTML = "html"
)

const unexpectedPrefix = "Encountered an unexpected error. Please report this.<br><br>"

// htmlTagPattern matches the tags messages may carry.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// renderError formats err for the chosen output.
func renderError(err error, output string) string {
	msg := errorMessage(err)
	if output == outputHTML {
		return msg
	}
	return htmlToText(msg)
}

// errorMessage builds the HTML message for err. Messages reported by
// Hardcover.app follow the local context, one per line.
func errorMessage(err error) string {
	var coded *syncerrors.Error
	if !errors.As(err, &coded) {
		return unexpectedPrefix + err.Error()
	}

	if messages := hardcover.Messages(err); len(messages) > 0 {
		return coded.Message + "<br>" + strings.Join(messages, "<br>")
	}
	return err.Error()
}

// htmlToText converts an HTML message to Markdown.
// If the input doesn't contain HTML, it's returned unchanged.
func htmlToText(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	text, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(text)
}
