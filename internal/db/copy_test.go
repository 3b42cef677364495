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
	n, err := CopyFrom(context.Background(), nil, "readings", []string{"sensor_id", "value"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"readings"}, []string{"sensor_id", "value"}).WillReturnResult(3)

	rows := [][]any{{"s1", 21.5}, {"s1", 22.0}, {"s2", 640.0}}
	n, err := CopyFrom(context.Background(), mock, "readings", []string{"sensor_id", "value"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"readings"}, []string{"sensor_id", "value"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"s1", 21.5}}
	_, err = CopyFrom(context.Background(), mock, "readings", []string{"sensor_id", "value"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO readings")
	assert.NoError(t, mock.ExpectationsWereMet())
}
