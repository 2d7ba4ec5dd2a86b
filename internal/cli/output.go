package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
)

// printResult writes a text result verbatim and anything else as indented JSON.
func printResult(w io.Writer, res protocol.Result) error {
	if text, ok := res.(string); ok {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// errorMessage renders err as the one-line message shown to the user.
func errorMessage(err error) string {
	if se, ok := protocol.IsHTTPStatus(err); ok {
		return fmt.Sprintf("HTTP %d: %s", se.StatusCode, oneLine(se.Body))
	}
	if protocol.IsTimeout(err) {
		return "request timed out"
	}
	return oneLine(err.Error())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
