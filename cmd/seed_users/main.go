// seed_users da de alta cuentas en bloque a partir de un CSV. Cada fila pasa por el
// orquestador, así que cada cuenta obtiene identidad, claim de rol y registro.
//
// Uso: go run ./cmd/seed_users usuarios.csv
//
// Columnas: name,last_name,document_type,document_number,cell_phone,email,password,role[,image_path]
// "role" admite varios roles separados por '|'. image_path es relativo al CSV.
// El archivo puede venir en UTF-8 o ISO-8859-1 (exportaciones de Excel); se detecta solo.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/usuarios-api/internal/app"
	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/pkg/config"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

var header = []string{"name", "last_name", "document_type", "document_number", "cell_phone", "email", "password", "role"}

type row struct {
	line      int
	in        account.CreateInput
	imagePath string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_users <archivo.csv>")
		os.Exit(2)
	}
	csvPath := os.Args[1]
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRows(decodeCharset(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	accounts, err := app.BuildAccounts(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar cuentas")
	}
	defer accounts.Close()

	created, skipped, failed := 0, 0, 0
	for _, r := range rows {
		if r.imagePath != "" {
			img, err := os.ReadFile(filepath.Join(filepath.Dir(csvPath), r.imagePath))
			if err != nil {
				log.Warn().Err(err).Int("line", r.line).Msg("imagen no legible; se crea sin imagen")
			} else {
				r.in.Image = img
			}
		}
		out, err := accounts.Orchestrator.Create(ctx, r.in)
		switch {
		case err == nil:
			created++
			log.Info().Int("line", r.line).Int64("id", out.ID).Str("email", out.Email).Msg("cuenta creada")
		case errors.Is(err, domain.ErrDuplicateEmail):
			skipped++
			log.Info().Int("line", r.line).Str("email", r.in.Email).Msg("email ya registrado; se omite")
		default:
			failed++
			log.Error().Err(err).Int("line", r.line).Str("code", domain.Code(err)).Msg("alta fallida")
		}
	}

	fmt.Printf("Procesadas %d filas: %d creadas, %d omitidas, %d fallidas\n", len(rows), created, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// decodeCharset devuelve un lector UTF-8; si raw no es UTF-8 válido se asume ISO-8859-1.
func decodeCharset(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

// parseRows valida la cabecera y convierte cada fila en una entrada del orquestador.
func parseRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	if len(head) < len(header) {
		return nil, fmt.Errorf("cabecera: se esperaban al menos %d columnas, hay %d", len(header), len(head))
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(head[i]), want) {
			return nil, fmt.Errorf("cabecera: columna %d debe ser %q, es %q", i+1, want, head[i])
		}
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError ya incluye la línea.
			return nil, err
		}
		// Línea física donde empieza el registro, aunque haya campos entre comillas con saltos.
		line, _ := cr.FieldPos(0)
		if len(rec) < len(header) {
			return nil, fmt.Errorf("línea %d: %d columnas, se esperaban %d", line, len(rec), len(header))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		item := row{
			line: line,
			in: account.CreateInput{
				Name:           rec[0],
				LastName:       rec[1],
				DocumentType:   rec[2],
				DocumentNumber: rec[3],
				CellPhone:      rec[4],
				Email:          rec[5],
				Credential:     rec[6],
				Roles:          splitRoles(rec[7]),
			},
		}
		if len(rec) > len(header) {
			item.imagePath = rec[len(header)]
		}
		rows = append(rows, item)
	}
	return rows, nil
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
