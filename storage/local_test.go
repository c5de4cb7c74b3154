package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	id := uuid.New()

	path, err := st.Upload(ctx, id, "witness statement.pdf", strings.NewReader("signed statement"))
	require.NoError(t, err)
	assert.Contains(t, path, id.String())
	assert.NotContains(t, path, " ")

	rc, err := st.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "signed statement", string(data))

	require.NoError(t, st.Delete(ctx, path))
	_, err = st.Download(ctx, path)
	assert.Error(t, err)

	// Deleting an already removed file succeeds
	assert.NoError(t, st.Delete(ctx, path))
}

func TestEvidencePathIsUniquePerID(t *testing.T) {
	a := evidencePath(uuid.New(), "photo.jpg")
	b := evidencePath(uuid.New(), "photo.jpg")
	assert.NotEqual(t, a, b)
}
