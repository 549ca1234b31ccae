// seed crea el primer administrador. El registro público sólo da de alta empleados,
// así que una base nueva necesita este paso antes de poder gestionar usuarios.
//
// Uso: go run ./cmd/seed <email> <password> [nombre]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Uso: seed <email> <password> [nombre]")
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]
	name := "Administrador"
	if len(os.Args) > 3 {
		name = strings.Join(os.Args[3:], " ")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	user, err := auth.NewUser(name, email, "", password, entity.RoleAdmin, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Datos inválidos: %v\n", err)
		os.Exit(2)
	}
	repos := postgres.NewRepositories(pool)
	if err := auth.CreateUser(ctx, repos.Users, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			fmt.Printf("Ya existe un usuario con email %s\n", user.Email)
			return
		}
		fmt.Fprintf(os.Stderr, "Crear administrador: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Administrador %s creado (id %s)\n", user.Email, user.ID)
}
