// migrate aplica o revierte las migraciones embebidas contra la base configurada.
//
// Uso: go run ./cmd/migrate [up|down [pasos]|version]
// Sin argumentos ejecuta up. down sin pasos revierte todo.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	dbURL := cfg.DB.ConnectionString()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := postgres.MigrateUp(dbURL); err != nil {
			fail(err)
		}
		fmt.Println("Migraciones aplicadas")
	case "down":
		steps := 0
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 0 {
				fmt.Fprintf(os.Stderr, "Pasos inválidos: %s\n", os.Args[2])
				os.Exit(2)
			}
		}
		if err := postgres.MigrateDown(dbURL, steps); err != nil {
			fail(err)
		}
		fmt.Println("Migraciones revertidas")
	case "version":
		version, dirty, err := postgres.MigrateVersion(dbURL)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Versión %d (dirty=%t)\n", version, dirty)
	default:
		fmt.Fprintf(os.Stderr, "Comando desconocido %q. Uso: migrate [up|down [pasos]|version]\n", cmd)
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
