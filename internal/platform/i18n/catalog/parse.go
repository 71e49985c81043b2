package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type catalogFile struct {
	Locale    string
	Namespace string
	Messages  map[string]string
}

// parseCatalogFile reads the restricted YAML shape used by the catalogs:
//
//	locale: "en-US"
//	namespace: "errors"
//	messages:
//	  "KEY": "value"
//
// Every scalar is a Go-quoted string.
func parseCatalogFile(data []byte) (catalogFile, error) {
	file := catalogFile{Messages: map[string]string{}}
	inMessages := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "messages:" {
			inMessages = true
			continue
		}
		if !inMessages {
			field, raw, ok := strings.Cut(line, ":")
			if !ok {
				return catalogFile{}, fmt.Errorf("line %d: expected header field", lineNo)
			}
			value, err := strconv.Unquote(strings.TrimSpace(raw))
			if err != nil {
				return catalogFile{}, fmt.Errorf("line %d: %s: %w", lineNo, field, err)
			}
			switch field {
			case "locale":
				file.Locale = strings.TrimSpace(value)
			case "namespace":
				file.Namespace = strings.TrimSpace(value)
			default:
				return catalogFile{}, fmt.Errorf("line %d: unknown field %q", lineNo, field)
			}
			continue
		}
		key, value, err := parseEntry(line)
		if err != nil {
			return catalogFile{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := file.Messages[key]; dup {
			return catalogFile{}, fmt.Errorf("line %d: duplicate key %q", lineNo, key)
		}
		file.Messages[key] = value
	}
	if err := scanner.Err(); err != nil {
		return catalogFile{}, err
	}

	switch {
	case file.Locale == "":
		return catalogFile{}, errors.New("missing locale")
	case file.Namespace == "":
		return catalogFile{}, errors.New("missing namespace")
	case len(file.Messages) == 0:
		return catalogFile{}, errors.New("no messages")
	}
	return file, nil
}

// parseEntry splits `"key": "value"`. The key may contain escaped quotes.
func parseEntry(line string) (string, string, error) {
	quoted, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("message key: %w", err)
	}
	key, _ := strconv.Unquote(quoted)
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errors.New("blank message key")
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(line[len(quoted):]), ":")
	if !ok {
		return "", "", fmt.Errorf("key %q: missing ':'", key)
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return "", "", fmt.Errorf("key %q: %w", key, err)
	}
	return key, value, nil
}
