// seed prepara una base PostgreSQL: aplica migraciones, crea el administrador inicial
// (SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD) y opcionalmente importa cuarteles desde un CSV
// exportado de Excel (separador ';', Windows-1252 por defecto).
//
// Uso: go run ./cmd/seed [-fields cuarteles.csv] [-utf8]
//
// Columnas: numero;nombre;ubicacion;hileras;variedad;tipo_planta;anio_plantacion;tipo_riego;estado;superficie_ha;observaciones
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/agrocontrol/agrocontrol-api/internal/application/auth"
	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/postgres"
	"github.com/agrocontrol/agrocontrol-api/pkg/config"
	"github.com/agrocontrol/agrocontrol-api/pkg/logger"
)

func main() {
	fieldsPath := flag.String("fields", "", "CSV de cuarteles a importar")
	utf8 := flag.Bool("utf8", false, "el CSV ya está en UTF-8")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}

	if cfg.Bootstrap.AdminEmail != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), nil)
		_, err := authUC.RegisterUser(ctx, dto.CreateUserRequest{
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
			Name:     "Administrador",
			Role:     entity.RoleAdmin,
		})
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("el administrador ya existe")
		case err != nil:
			log.Fatal().Err(err).Msg("crear administrador")
		default:
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("administrador creado")
		}
	}

	if *fieldsPath == "" {
		return
	}
	f, err := os.Open(*fieldsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV de cuarteles")
	}
	defer f.Close()

	var r io.Reader = f
	if !*utf8 {
		r = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}
	rows, err := readFields(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV de cuarteles")
	}

	fieldUC := usecase.NewFieldUseCase(postgres.NewFieldRepository(pool))
	created, skipped := 0, 0
	for _, in := range rows {
		if _, err := fieldUC.Create(ctx, in); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Int("numero", in.Number).Msg("crear cuartel")
		}
		created++
	}
	log.Info().Int("creados", created).Int("existentes", skipped).Msg("importación de cuarteles terminada")
}

// readFields interpreta el CSV; la primera fila es cabecera.
func readFields(r io.Reader) ([]dto.CreateFieldRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]dto.CreateFieldRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		col := func(n int) string {
			if n < len(rec) {
				return strings.TrimSpace(rec[n])
			}
			return ""
		}
		number, err := strconv.Atoi(col(0))
		if err != nil {
			return nil, fmt.Errorf("línea %d: número de cuartel %q", line, col(0))
		}
		area := decimal.Zero
		if s := col(9); s != "" {
			// Excel es-* exporta la coma como separador decimal.
			area, err = decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("línea %d: superficie %q", line, s)
			}
		}
		out = append(out, dto.CreateFieldRequest{
			Number:         number,
			Name:           col(1),
			Location:       col(2),
			Rows:           atoiOrZero(col(3)),
			Variety:        col(4),
			PlantType:      col(5),
			PlantingYear:   atoiOrZero(col(6)),
			IrrigationType: col(7),
			CropStatus:     col(8),
			AreaHectares:   area,
			Observations:   col(10),
		})
	}
	return out, nil
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
