package locale

import (
	"testing"
	"time"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"197", "197"},
		{"197,00", "197"},
		{"-45,90", "-45.9"},
		{"0,00", "0"},
		{"", "0"},
		{"abc", "0"},
		{"  12,5  ", "12.5"},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got := ParseDecimal(c.in)
			if got.String() != c.want {
				t.Errorf("ParseDecimal(%q) = %s, esperava %s", c.in, got.String(), c.want)
			}
		})
	}
}

func TestParseLocalDateTime(t *testing.T) {
	t.Run("Data e hora completas", func(t *testing.T) {
		got := ParseLocalDateTime("05/03/2024 14:30:00")
		if got == nil {
			t.Fatal("esperava timestamp, obteve nil")
		}
		want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("obteve %v, esperava %v", got, want)
		}
	})

	t.Run("Sem segundos", func(t *testing.T) {
		got := ParseLocalDateTime("05/03/2024 14:30")
		if got == nil || got.Hour() != 14 || got.Minute() != 30 {
			t.Errorf("obteve %v", got)
		}
	})

	t.Run("Somente data", func(t *testing.T) {
		got := ParseLocalDateTime("25/12/2023")
		if got == nil || got.Day() != 25 || got.Month() != time.December {
			t.Errorf("obteve %v", got)
		}
	})

	t.Run("Entrada invalida vira nil", func(t *testing.T) {
		if got := ParseLocalDateTime("2024-03-05T14:30:00Z"); got != nil {
			t.Errorf("esperava nil, obteve %v", got)
		}
		if got := ParseLocalDateTime(""); got != nil {
			t.Errorf("esperava nil para vazio, obteve %v", got)
		}
	})
}

func TestParseDelimitedText(t *testing.T) {
	t.Run("Ponto e virgula com aspas", func(t *testing.T) {
		raw := "a;b;c\r\n\"x;1\";\"diz \"\"oi\"\"\";z\r\n\r\n1;2;3\n"
		rows, err := ParseDelimitedText(raw)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("esperava 3 linhas (em branco descartada), obteve %d", len(rows))
		}
		if rows[1][0] != "x;1" {
			t.Errorf("campo entre aspas com delimitador: obteve %q", rows[1][0])
		}
		if rows[1][1] != `diz "oi"` {
			t.Errorf("aspas duplicadas: obteve %q", rows[1][1])
		}
	})

	t.Run("Virgula simples", func(t *testing.T) {
		rows, err := ParseDelimitedText("h1,h2\nv1,v2")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if len(rows) != 2 || rows[1][1] != "v2" {
			t.Errorf("obteve %v", rows)
		}
	})

	t.Run("Tabulacao", func(t *testing.T) {
		rows, err := ParseDelimitedText("h1\th2\nv1\tv2")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if len(rows) != 2 || rows[0][1] != "h2" {
			t.Errorf("obteve %v", rows)
		}
	})
}

func TestDecodeCharset(t *testing.T) {
	t.Run("UTF-8 com BOM", func(t *testing.T) {
		got, err := DecodeCharset([]byte("\xEF\xBB\xBFtransação"))
		if err != nil || got != "transação" {
			t.Errorf("obteve %q, %v", got, err)
		}
	})

	t.Run("Latin-1", func(t *testing.T) {
		// "ção" em ISO-8859-1
		got, err := DecodeCharset([]byte{'\xe7', '\xe3', 'o'})
		if err != nil || got != "ção" {
			t.Errorf("obteve %q, %v", got, err)
		}
	})
}
