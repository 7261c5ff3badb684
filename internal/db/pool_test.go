package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "shelters", []string{"a"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"中央区民センター", 34.68, 135.51},
		{"北区民ホール", 34.70, 135.49},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"shelters"}, []string{"name", "lat", "lon"}).WillReturnResult(2)

	n, err := CopyFrom(context.Background(), mock, "shelters", []string{"name", "lat", "lon"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"risk_points"}, []string{"lat", "lon"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "risk_points", []string{"lat", "lon"}, [][]any{{34.7, 135.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO risk_points")
	assert.NoError(t, mock.ExpectationsWereMet())
}
