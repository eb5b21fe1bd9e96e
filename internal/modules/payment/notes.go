package payment

import (
	"encoding/json"
	"fmt"
)

const noteChunkSize = 3500

// ResponseNotes serializes a provider response and splits it into order notes of at most
// noteChunkSize characters, each titled "<name> returned - Part i of n - ".
func ResponseNotes(name string, resp any) []string {
	raw, err := json.Marshal(resp)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", resp))
	}
	runes := []rune(string(raw))

	var chunks [][]rune
	for len(runes) > 0 {
		n := noteChunkSize
		if len(runes) < n {
			n = len(runes)
		}
		chunks = append(chunks, runes[:n])
		runes = runes[n:]
	}

	notes := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		notes = append(notes, fmt.Sprintf("%s returned - Part %d of %d - %s", name, i+1, len(chunks), string(chunk)))
	}
	return notes
}
