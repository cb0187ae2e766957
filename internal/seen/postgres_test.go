package seen

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresStoreWithPoolValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresStoreWithPool(nil, "seen_fingerprints", nil)
	assert.Error(t, err)

	_, err = NewPostgresStoreWithPool(mock, "bad;table", nil)
	assert.Error(t, err)

	store, err := NewPostgresStoreWithPool(mock, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "seen_fingerprints", store.table)
}

func TestPostgresStoreLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "seen_fingerprints", nil)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"category", "fingerprint"}).
		AddRow("booked", "Doe|John|01/02/2024|123").
		AddRow("released", "Roe|Jane|01/03/2024")
	mock.ExpectQuery("SELECT category, fingerprint FROM seen_fingerprints").
		WillReturnRows(rows)

	set, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, set.Has(Booked, "Doe|John|01/02/2024|123"))
	assert.True(t, set.Has(Released, "Roe|Jane|01/03/2024"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveInsertsOnlyNewFingerprints(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "seen_fingerprints", nil)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"category", "fingerprint"}).
		AddRow("booked", "already-there")
	mock.ExpectQuery("SELECT category, fingerprint FROM seen_fingerprints").
		WillReturnRows(rows)

	set, err := store.Load(context.Background())
	require.NoError(t, err)

	set.Add(Booked, "fresh")
	mock.ExpectExec("INSERT INTO seen_fingerprints").
		WithArgs("booked", "fresh").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), set))

	// A second save with no additions issues no statements.
	require.NoError(t, store.Save(context.Background(), set))
	require.NoError(t, mock.ExpectationsWereMet())
}
