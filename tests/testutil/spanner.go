package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/models/m_element"
	"github.com/light-bringer/changeproxy/internal/models/m_entry"
)

// TestSpannerDB is the emulator database integration tests run against
// unless CHANGEPROXY_TEST_SPANNER_DATABASE is set.
const TestSpannerDB = "projects/test-project/instances/test-instance/databases/changeproxy-test"

// SetupSpannerTest creates a client on a clean database and returns a
// cleanup function.
func SetupSpannerTest(t *testing.T) (*spanner.Client, func()) {
	t.Helper()

	client, err := spanner.NewClient(context.Background(), GetTestSpannerDB())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)

	return client, func() {
		CleanDatabase(t, client)
		client.Close()
	}
}

func GetTestSpannerDB() string {
	if db := os.Getenv("CHANGEPROXY_TEST_SPANNER_DATABASE"); db != "" {
		return db
	}
	return TestSpannerDB
}

// CleanDatabase empties the element tables.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	_, err := client.Apply(context.Background(), []*spanner.Mutation{
		spanner.Delete(m_element.TableName, spanner.AllKeys()),
		spanner.Delete(m_entry.TableName, spanner.AllKeys()),
	})
	require.NoError(t, err, "failed to clean database")
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, expected int) {
	t.Helper()

	iter := client.Single().Query(context.Background(), spanner.Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to query row count")

	var count int64
	require.NoError(t, row.Columns(&count), "failed to parse count")
	require.Equal(t, int64(expected), count, "unexpected row count in table %s", table)
}
