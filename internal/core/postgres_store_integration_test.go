package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/core"
)

func setupUserDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database; the users table is truncated.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "connect to test database")

	schema, err := os.ReadFile("../../migrations/001_users.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "apply users schema")

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE users;

		INSERT INTO users (id, name, email, role, position, department, join_date, base_salary, bonus,
		                   annual_leave_days, uploaded_documents, resubmission_requested, extra) VALUES
		('u-hr-1', 'Omar Haddad', 'omar.haddad@example.com', 'hr', 'HR Manager', 'People', '2019-03-01', 90000, 10000,
		 25, NULL, NULL, NULL),
		('u-emp-1', 'Salma Ali', 'salma.ali@example.com', 'employee', 'Backend Engineer', 'Engineering', '2022-06-15', 50000, 5000.50,
		 21, '{"National ID": true, "Bank Letter": true}', '{"Bank Letter": true}', '{"badge": "B-17"}'),
		('u-new-1', 'Karim Nasser', NULL, 'new', NULL, NULL, NULL, NULL, NULL,
		 NULL, NULL, NULL, NULL),
		('u-new-2', 'Dana Yusuf', NULL, 'new', NULL, NULL, NULL, NULL, NULL,
		 NULL, NULL, NULL, NULL);
	`)
	require.NoError(t, err, "seed users")

	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupUserDB(t)
	store := core.NewPostgresStore(pool)
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		rec, err := store.Get(ctx, "u-emp-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Salma Ali", *rec.Name)
		assert.Equal(t, core.RoleEmployee, rec.RoleOrUnknown())
		assert.Equal(t, "50000", rec.BaseSalary.Decimal.String())
		assert.Equal(t, "5000.5", rec.Bonus.Decimal.String())
		assert.Equal(t, map[string]bool{"National ID": true, "Bank Letter": true}, rec.UploadedDocuments)
		assert.Equal(t, map[string]string{"badge": "B-17"}, rec.Extra)
		require.NotNil(t, rec.JoinDate)
		assert.Equal(t, "2022-06-15", rec.JoinDate.Format("2006-01-02"))
	})

	t.Run("Get absent", func(t *testing.T) {
		rec, err := store.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Find nullable columns", func(t *testing.T) {
		rec, err := store.Find(ctx, core.KeyName, "Karim Nasser")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Nil(t, rec.Email)
		assert.False(t, rec.BaseSalary.Valid)
		assert.Nil(t, rec.UploadedDocuments)
	})

	t.Run("Find rejects unknown field", func(t *testing.T) {
		_, err := store.Find(ctx, "base_salary; DROP TABLE users", "1")
		assert.Error(t, err)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := store.Count(ctx, core.KeyRole, string(core.RoleNew))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("salary through formatter", func(t *testing.T) {
		rec, err := core.NewRecords(store).FetchByIdentifier(ctx, "salma ali")
		require.NoError(t, err)
		require.NotNil(t, rec)
		got, err := core.FormatField(rec, "salary")
		require.NoError(t, err)
		assert.Equal(t, "Salma Ali's total compensation is $55,000.50.", got)
	})

	t.Run("SaveRecords upserts seed data", func(t *testing.T) {
		seeded, err := core.LoadSeedFile("testdata/users.yaml")
		require.NoError(t, err)
		require.NoError(t, core.SaveRecords(ctx, pool, seeded.All()))

		rec, err := store.Get(ctx, "u-emp-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "50000", rec.BaseSalary.Decimal.String())
		assert.Equal(t, map[string]bool{"Bank Letter": true}, rec.ResubmissionRequested)

		norole, err := store.Get(ctx, "u-norole")
		require.NoError(t, err)
		require.NotNil(t, norole)
		assert.Equal(t, core.RoleUnknown, norole.RoleOrUnknown())
	})
}
