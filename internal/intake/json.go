package intake

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// ReadJSON reads submissions from a JSON file. A file whose first
// non-whitespace byte is '[' is decoded as one array; anything else is
// treated as line-delimited JSON, one submission per line.
func ReadJSON(path string) ([]model.QuoteSubmission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "intake: open json file")
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := firstByte(br)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "intake: read json file")
	}

	if first == '[' {
		return decodeArray(br)
	}
	return decodeLines(br)
}

func decodeArray(r io.Reader) ([]model.QuoteSubmission, error) {
	var subs []model.QuoteSubmission
	if err := json.NewDecoder(r).Decode(&subs); err != nil {
		return nil, eris.Wrap(err, "intake: decode json array")
	}
	return subs, nil
}

func decodeLines(r io.Reader) ([]model.QuoteSubmission, error) {
	var subs []model.QuoteSubmission

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var sub model.QuoteSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, eris.Wrapf(err, "intake: decode json line %d", line)
		}
		subs = append(subs, sub)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "intake: scan json lines")
	}

	return subs, nil
}

// firstByte peeks past leading whitespace without consuming input.
func firstByte(br *bufio.Reader) (byte, error) {
	for n := 1; ; n++ {
		peeked, err := br.Peek(n)
		if err != nil {
			return 0, err
		}
		switch peeked[n-1] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return peeked[n-1], nil
		}
	}
}
