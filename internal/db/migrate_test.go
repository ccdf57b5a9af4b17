package db

import "testing"

func TestPgx5URL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/inkwell?sslmode=disable", "pgx5://u:p@localhost:5432/inkwell?sslmode=disable"},
		{"postgresql://u:p@db/inkwell", "pgx5://u:p@db/inkwell"},
		{"pgx5://u:p@db/inkwell", "pgx5://u:p@db/inkwell"},
	}

	for _, tt := range tests {
		if got := pgx5URL(tt.in); got != tt.want {
			t.Fatalf("pgx5URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, name := range []string{"migrations/000001_init.up.sql", "migrations/000001_init.down.sql"} {
		b, err := migrationFiles.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(b) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}
