package importer

import "strings"

// Tolerant CSV tokenizer for shelf imports. Spreadsheet exports from the
// wild are full of oddities the stock reader rejects, so this one never
// errors: a quote opens a quoted section, a doubled quote inside it is a
// literal quote, and a missing closing quote swallows the rest of the
// input into the current field.

// ParseRecords splits a whole CSV document into records. Quoted fields
// may contain the delimiter and literal newlines. A leading UTF-8 BOM is
// stripped, CRLF and lone CR both terminate records.
func ParseRecords(text string, delim rune) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")

	var records [][]string
	var fields []string
	var field strings.Builder
	inQuotes := false

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case delim:
			endField()
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				continue // CRLF; the LF ends the record
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteRune(ch)
		}
	}

	// trailing record without a final newline (or an unterminated quote)
	if field.Len() > 0 || len(fields) > 0 || inQuotes {
		endRecord()
	}

	return records
}

// ParseLine tokenizes a single logical CSV record.
func ParseLine(line string, delim rune) []string {
	records := ParseRecords(line, delim)
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// isBlankRecord reports whether a record carries no data at all
// (empty lines parse as a single empty field).
func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
