package schema

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// RowNames maps a paramdef's row ids to their human-readable display names,
// loaded from one Names/*.txt file.
type RowNames map[int64]string

// ParseRowNames parses one Names/*.txt file: UTF-8 text, one entry per line,
// "<integer><space><name>" where integer may be decimal, hex (0x...), or
// octal (§6). Lines with no space are skipped rather than rejected — the
// format tolerates blank lines and stray comments this way.
func ParseRowNames(data []byte) (RowNames, error) {
	names := make(RowNames)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	// Name strings can be arbitrarily long; grow past bufio's default 64KB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		idStr, name := line[:sp], line[sp+1:]
		id, err := strconv.ParseInt(idStr, 0, 64) // base 0: decimal/0x/0 prefixes
		if err != nil {
			continue
		}
		names[id] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
