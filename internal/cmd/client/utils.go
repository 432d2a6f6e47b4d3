package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// printResponse pretty-prints a JSON API response body to w, falling back
// to the raw body when it is not JSON.
func printResponse(w io.Writer, resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if json.Indent(&buf, body, "", "  ") == nil {
		_, _ = fmt.Fprintln(w, buf.String())
	} else {
		_, _ = fmt.Fprintln(w, string(body))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
