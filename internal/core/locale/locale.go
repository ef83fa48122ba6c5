// internal/core/locale/locale.go
package locale

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// currencyNoiseRegex remove símbolos de moeda, letras e espaços dos valores
// monetários antes do parse numérico.
var currencyNoiseRegex = regexp.MustCompile(`[^\d.,\-]+`)

// ParseDecimal interpreta um número em formato PT-BR ("1.234,56") ou
// US ("1,234.56"). Se a última vírgula vem depois do último ponto, a vírgula
// é o separador decimal; senão a vírgula é separador de milhar. Entrada vazia
// ou não numérica resulta em zero, nunca em erro.
func ParseDecimal(raw string) decimal.Decimal {
	s := currencyNoiseRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" || s == "-" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		// Convenção PT-BR: ponto agrupa milhares, vírgula é decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseLocalDateTime aceita DD/MM/YYYY com hora opcional. Entrada não
// reconhecida resulta em nil; o chamador deve tratar nil como "desconhecido",
// não como erro.
func ParseLocalDateTime(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// DecodeCharset devolve o texto do arquivo como UTF-8. Exports antigos chegam
// em ISO-8859-1; quando os bytes não são UTF-8 válido o conteúdo é decodificado
// como Latin-1, no mesmo esquema dos conversores de extrato.
func DecodeCharset(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// ParseDelimitedText tokeniza texto delimitado por vírgula, ponto e vírgula ou
// tabulação, com campos entre aspas, aspas duplicadas como escape e finais de
// linha CRLF ou LF. Linhas em branco são descartadas.
func ParseDelimitedText(raw string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, record := range records {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// sniffDelimiter conta os candidatos fora de aspas na primeira linha e escolhe
// o mais frequente. Empate ou ausência cai na vírgula.
func sniffDelimiter(raw string) rune {
	line := raw
	if idx := strings.IndexAny(raw, "\r\n"); idx >= 0 {
		line = raw[:idx]
	}

	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes:
			if _, ok := counts[r]; ok {
				counts[r]++
			}
		}
	}

	best := ','
	for _, candidate := range []rune{';', '\t'} {
		if counts[candidate] > counts[best] {
			best = candidate
		}
	}
	return best
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
