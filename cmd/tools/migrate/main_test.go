package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/importa?sslmode=disable", driverURL("postgres://u:p@db:5432/importa?sslmode=disable"))
	require.Equal(t, "pgx5://db/importa", driverURL("postgresql://db/importa"))
	require.Equal(t, "pgx5://db/importa", driverURL("pgx5://db/importa"))
}
