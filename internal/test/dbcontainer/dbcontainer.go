// README: Throwaway postgres:16 container for integration tests that need a
// real database. Tests are skipped when no Docker daemon is reachable.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"routecost/internal/infra"
)

const dockerSocket = "/var/run/docker.sock"

// DockerAvailable reports whether a Docker (or podman) endpoint is
// configured, either through DOCKER_HOST or the default unix socket.
func DockerAvailable() bool {
	if os.Getenv("DOCKER_HOST") != "" {
		return true
	}
	_, err := os.Stat(dockerSocket)
	return err == nil
}

// New starts a postgres container, connects to it and applies the schema
// files given in migrations, in order. The container and pool are released
// with t.Cleanup. timeout bounds start up only.
func New(ctx context.Context, timeout time.Duration, t *testing.T, migrations ...string) (pool *pgxpool.Pool, dsn string) {
	t.Helper()
	if !DockerAvailable() {
		t.Skip("docker is not available; set DOCKER_HOST to run database tests")
	}

	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(ctx2, "16")
	require.NoError(t, err, "failed to set up a test database")
	t.Cleanup(func() {
		if err := pg.Shutdown(ctx); err != nil {
			t.Logf("shutdown test database: %v", err)
		}
	})

	dsn = pg.ConnectionString()
	for pool == nil {
		pool, err = infra.NewDB(ctx2, dsn)
		if err == nil {
			break
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == "57P03" && ctx2.Err() == nil {
			time.Sleep(100 * time.Millisecond)
			continue // the database system is starting up
		}
		var netErr net.Error
		if ctx2.Err() == nil && errors.As(err, &netErr) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		require.NoError(t, err, "cannot connect to test database")
	}
	t.Cleanup(pool.Close)

	for _, path := range migrations {
		schema, err := os.ReadFile(path)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(schema))
		require.NoError(t, err, "apply %s", path)
	}
	return pool, dsn
}
